package model

import (
	"slices"
	"time"
)

// RoomCode is the short code players use to join a room
type RoomCode string

// RoomStatus represents where a room is in its game lifecycle
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"   // Seats filling, no round started
	RoomStatusPlaying  RoomStatus = "playing"   // Round in progress, collecting guesses
	RoomStatusRoundEnd RoomStatus = "round_end" // Round scored, waiting for a player to advance
	RoomStatusGameEnd  RoomStatus = "game_end"  // All rounds played
)

// MaxPlayers is the number of seats in a room
const MaxPlayers = 2

// Room is the state of one game instance. It carries no locking of its own;
// callers serialize access per room.
type Room struct {
	Code            RoomCode
	Players         []*Player // join order, Players[0] is the host
	Status          RoomStatus
	CurrentRound    int
	TotalRounds     int
	CurrentLocation *Location
	RoundStartedAt  *time.Time
	CreatedAt       time.Time

	// LocationPending is set while a location fetch for the next round is in
	// flight, so concurrent advance requests collapse into one.
	LocationPending bool
}

// NewRoom creates a waiting room seated with its host
func NewRoom(code RoomCode, host *Player, totalRounds int, now time.Time) *Room {
	return &Room{
		Code:        code,
		Players:     []*Player{host},
		Status:      RoomStatusWaiting,
		TotalRounds: totalRounds,
		CreatedAt:   now,
	}
}

// Host returns the room's host, or nil if the room is empty
func (r *Room) Host() *Player {
	if len(r.Players) == 0 {
		return nil
	}
	return r.Players[0]
}

// IsHost reports whether the given connection holds the host seat
func (r *Room) IsHost(id ConnectionID) bool {
	host := r.Host()
	return host != nil && host.ID == id
}

// GetPlayer returns the player seated by the given connection, or nil
func (r *Room) GetPlayer(id ConnectionID) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// IsFull reports whether every seat is taken
func (r *Room) IsFull() bool {
	return len(r.Players) >= MaxPlayers
}

// AddPlayer seats a player after the existing ones
func (r *Room) AddPlayer(p *Player) error {
	if r.IsFull() {
		return ErrRoomFull
	}
	if r.GetPlayer(p.ID) != nil {
		return ErrAlreadyInRoom
	}
	r.Players = append(r.Players, p)
	return nil
}

// RemovePlayer unseats the player for the given connection. It returns the
// removed player and whether they were the host; removed is nil when the
// connection was not seated.
func (r *Room) RemovePlayer(id ConnectionID) (removed *Player, wasHost bool) {
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = slices.Delete(r.Players, i, i+1)
			return p, i == 0
		}
	}
	return nil, false
}

// IsEmpty reports whether no players remain
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// RoundsExhausted reports whether the final round has already been played
func (r *Room) RoundsExhausted() bool {
	return r.CurrentRound >= r.TotalRounds
}

// BeginRound moves the room into the next round at the given location
func (r *Room) BeginRound(loc *Location, now time.Time) {
	r.CurrentRound++
	r.CurrentLocation = loc
	for _, p := range r.Players {
		p.Guess = nil
	}
	started := now
	r.RoundStartedAt = &started
	r.Status = RoomStatusPlaying
}

// RecordGuess stores a player's guess for the current round, replacing any
// earlier guess
func (r *Room) RecordGuess(id ConnectionID, guess Coordinate) error {
	p := r.GetPlayer(id)
	if p == nil {
		return ErrInvalidPlayerOrRoom
	}
	if r.Status != RoomStatusPlaying {
		return ErrRoundNotActive
	}
	g := guess
	p.Guess = &g
	return nil
}

// AllGuessed reports whether every seated player has guessed this round
func (r *Room) AllGuessed() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if !p.HasGuessed() {
			return false
		}
	}
	return true
}

// ScoreFunc returns the distance and points for a guess against the target
type ScoreFunc func(guess, target Coordinate) (distanceKM float64, points int)

// ResolveRound scores every guess against the current location, adds the
// points to each player's total and ends the round. Results are in join order.
func (r *Room) ResolveRound(score ScoreFunc) []RoundResult {
	results := make([]RoundResult, 0, len(r.Players))
	for _, p := range r.Players {
		distance, points := score(*p.Guess, r.CurrentLocation.Coordinate)
		p.Score += points
		results = append(results, RoundResult{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			DistanceKM: RoundDistance(distance),
			RoundScore: points,
			TotalScore: p.Score,
			Guess:      *p.Guess,
		})
	}
	r.Status = RoomStatusRoundEnd
	return results
}

// FinishGame ends the game and returns the standings
func (r *Room) FinishGame() []FinalScore {
	r.Status = RoomStatusGameEnd
	return r.Standings()
}

// Standings ranks players by descending score; equal scores keep join order
func (r *Room) Standings() []FinalScore {
	scores := make([]FinalScore, len(r.Players))
	for i, p := range r.Players {
		scores[i] = FinalScore{PlayerName: p.Name, Score: p.Score}
	}
	slices.SortStableFunc(scores, func(a, b FinalScore) int {
		return b.Score - a.Score
	})
	return scores
}

// PlayerViews returns the membership as sent to clients
func (r *Room) PlayerViews() []PlayerView {
	views := make([]PlayerView, len(r.Players))
	for i, p := range r.Players {
		views[i] = PlayerView{
			ID:     p.ID,
			Name:   p.Name,
			Score:  p.Score,
			IsHost: i == 0,
		}
	}
	return views
}

// Members returns the connections seated in the room, in join order
func (r *Room) Members() []ConnectionID {
	ids := make([]ConnectionID, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ID
	}
	return ids
}

// View returns a snapshot safe to show to anyone
func (r *Room) View() RoomView {
	return RoomView{
		Code:         r.Code,
		Status:       r.Status,
		CurrentRound: r.CurrentRound,
		TotalRounds:  r.TotalRounds,
		Players:      r.PlayerViews(),
		CreatedAt:    r.CreatedAt,
	}
}
