package room

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/crimeguessr/internal/dependencies/clock"
	"github.com/mcoot/crimeguessr/internal/dependencies/random"
	"github.com/mcoot/crimeguessr/internal/metrics"
	"github.com/mcoot/crimeguessr/internal/model"
	"github.com/mcoot/crimeguessr/internal/services/notify"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6
	// CodeAlphabet is the characters used in room codes
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// DefaultTotalRounds is the number of rounds in a game
	DefaultTotalRounds = 3
)

// Registry owns every live room and the seat held by each connection.
//
// Lock order: a Session lock may be held while taking the registry lock,
// never the other way round. The one exception is Create, which locks a
// session nobody else can see yet.
type Registry struct {
	mu    sync.RWMutex
	rooms map[model.RoomCode]*Session
	seats map[model.ConnectionID]model.RoomCode

	totalRounds int
	notifier    notify.Notifier
	clock       clock.Clock
	random      random.Random
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewRegistry creates an empty Registry. totalRounds <= 0 uses
// DefaultTotalRounds.
func NewRegistry(
	totalRounds int,
	notifier notify.Notifier,
	clock clock.Clock,
	random random.Random,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Registry {
	if totalRounds <= 0 {
		totalRounds = DefaultTotalRounds
	}
	return &Registry{
		rooms:       make(map[model.RoomCode]*Session),
		seats:       make(map[model.ConnectionID]model.RoomCode),
		totalRounds: totalRounds,
		notifier:    notifier,
		clock:       clock,
		random:      random,
		metrics:     metrics,
		logger:      logger.With(slog.String("component", "room_registry")),
	}
}

// NormalizeCode upper-cases and trims a user-supplied room code
func NormalizeCode(code string) model.RoomCode {
	return model.RoomCode(strings.ToUpper(strings.TrimSpace(code)))
}

// Create opens a new room with the connection seated as host
func (r *Registry) Create(playerName string, conn model.ConnectionID) (*Session, *model.Player, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		name = model.DefaultCreatorName
	}
	now := r.clock.Now()
	host := &model.Player{ID: conn, Name: name, JoinedAt: now}

	r.mu.Lock()
	if _, seated := r.seats[conn]; seated {
		r.mu.Unlock()
		return nil, nil, model.ErrAlreadyInRoom
	}

	// Generate a code not held by any live room
	var code model.RoomCode
	for {
		code = model.RoomCode(r.random.String(CodeLength, CodeAlphabet))
		if _, exists := r.rooms[code]; !exists {
			break
		}
	}

	sess := newSession(model.NewRoom(code, host, r.totalRounds, now))
	// Hold the new room until the creator has been told about it so a
	// racing join cannot reach the host first. Nothing else can hold this
	// lock yet, so taking it under r.mu cannot deadlock.
	sess.mu.Lock()
	r.rooms[code] = sess
	r.seats[conn] = code
	r.metrics.ActiveRooms.Set(float64(len(r.rooms)))
	r.mu.Unlock()

	r.logger.Info("room created",
		slog.String("room_code", string(code)),
		slog.String("connection_id", string(conn)))

	r.notifier.Notify(conn, model.Event{
		Type:    model.EventRoomCreated,
		Payload: model.SeatPayload{RoomCode: code, PlayerID: conn},
	})
	notify.Room(r.notifier, sess.room, model.Event{
		Type:    model.EventPlayerJoined,
		Payload: model.PlayersPayload{Players: sess.room.PlayerViews()},
	})
	sess.mu.Unlock()

	return sess, host, nil
}

// Join seats the connection in an existing room
func (r *Registry) Join(code string, playerName string, conn model.ConnectionID) (*Session, *model.Player, error) {
	roomCode := NormalizeCode(code)
	name := strings.TrimSpace(playerName)
	if name == "" {
		name = model.DefaultJoinerName
	}

	r.mu.RLock()
	_, seated := r.seats[conn]
	sess := r.rooms[roomCode]
	r.mu.RUnlock()

	if seated {
		return nil, nil, model.ErrAlreadyInRoom
	}
	if sess == nil {
		return nil, nil, model.ErrRoomNotFound
	}

	player := &model.Player{ID: conn, Name: name, JoinedAt: r.clock.Now()}
	err := sess.Do(func(room *model.Room) error {
		if err := room.AddPlayer(player); err != nil {
			return err
		}

		r.mu.Lock()
		r.seats[conn] = roomCode
		r.mu.Unlock()

		r.notifier.Notify(conn, model.Event{
			Type:    model.EventRoomJoined,
			Payload: model.SeatPayload{RoomCode: roomCode, PlayerID: conn},
		})
		notify.Room(r.notifier, room, model.Event{
			Type:    model.EventPlayerJoined,
			Payload: model.PlayersPayload{Players: room.PlayerViews()},
		})
		if room.IsFull() {
			notify.Room(r.notifier, room, model.Event{
				Type:    model.EventReadyToStart,
				Payload: model.ReadyToStartPayload{},
			})
		}
		return nil
	})
	if err != nil {
		// The room was destroyed between lookup and join
		if errors.Is(err, model.ErrInvalidPlayerOrRoom) {
			return nil, nil, model.ErrRoomNotFound
		}
		return nil, nil, err
	}

	r.logger.Info("player joined room",
		slog.String("room_code", string(roomCode)),
		slog.String("connection_id", string(conn)))

	return sess, player, nil
}

// Get returns the session for a room code
func (r *Registry) Get(code string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.rooms[NormalizeCode(code)]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return sess, nil
}

// SessionOf returns the room the connection is seated in, if any
func (r *Registry) SessionOf(conn model.ConnectionID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.seats[conn]
	if !ok {
		return nil, false
	}
	sess, ok := r.rooms[code]
	return sess, ok
}

// Unseat forgets the connection's seat. Call it from within the room's
// Session.Do after removing the player.
func (r *Registry) Unseat(conn model.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seats, conn)
}

// Destroy closes the session and drops it along with every remaining seat.
// It must be called from within sess.Do.
func (r *Registry) Destroy(sess *Session) {
	sess.closed = true

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[sess.code] == sess {
		delete(r.rooms, sess.code)
	}
	for _, id := range sess.room.Members() {
		if r.seats[id] == sess.code {
			delete(r.seats, id)
		}
	}
	r.metrics.ActiveRooms.Set(float64(len(r.rooms)))

	r.logger.Info("room destroyed", slog.String("room_code", string(sess.code)))
}

// Remove destroys a room by code
func (r *Registry) Remove(code string) error {
	sess, err := r.Get(code)
	if err != nil {
		return err
	}
	return sess.Do(func(*model.Room) error {
		r.Destroy(sess)
		return nil
	})
}

// Count returns the number of live rooms
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// List returns snapshots of every live room ordered by creation time
func (r *Registry) List() []model.RoomView {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.rooms))
	for _, sess := range r.rooms {
		sessions = append(sessions, sess)
	}
	r.mu.RUnlock()

	views := make([]model.RoomView, 0, len(sessions))
	for _, sess := range sessions {
		if v, ok := sess.View(); ok {
			views = append(views, v)
		}
	}
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].Code < views[j].Code
		}
		return views[i].CreatedAt.Before(views[j].CreatedAt)
	})
	return views
}
