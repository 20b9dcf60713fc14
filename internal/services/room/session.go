package room

import (
	"sync"

	"github.com/mcoot/crimeguessr/internal/model"
)

// Session guards one room. Every read-then-write against the room runs
// inside Do, so check-and-act sequences for the same room never interleave.
type Session struct {
	code model.RoomCode

	mu     sync.Mutex
	room   *model.Room
	closed bool
}

func newSession(room *model.Room) *Session {
	return &Session{code: room.Code, room: room}
}

// Code returns the room code
func (s *Session) Code() model.RoomCode {
	return s.code
}

// Do runs fn with exclusive access to the room. It returns
// ErrInvalidPlayerOrRoom without calling fn if the room has been destroyed.
func (s *Session) Do(fn func(room *model.Room) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.ErrInvalidPlayerOrRoom
	}
	return fn(s.room)
}

// View returns a snapshot of the room, or false once it is destroyed
func (s *Session) View() (model.RoomView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.RoomView{}, false
	}
	return s.room.View(), true
}
