package model

import "time"

// ConnectionID identifies a live transport connection. A player's identity
// within a room is the connection that seated them.
type ConnectionID string

// Default display names when a client omits one
const (
	DefaultCreatorName = "Player 1"
	DefaultJoinerName  = "Player 2"
)

// Player represents a seated participant in a room
type Player struct {
	ID       ConnectionID
	Name     string
	Score    int
	Guess    *Coordinate // nil until the player guesses in the current round
	JoinedAt time.Time
}

// HasGuessed reports whether the player has a guess recorded for the current round
func (p *Player) HasGuessed() bool {
	return p.Guess != nil
}
