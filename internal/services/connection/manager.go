package connection

import (
	"context"
	"log/slog"

	"github.com/mcoot/crimeguessr/internal/model"
	"github.com/mcoot/crimeguessr/internal/services/notify"
	"github.com/mcoot/crimeguessr/internal/services/room"
)

// Messages sent to players left behind by a departure
const (
	HostLeftMessage   = "Host left the game. Room has been closed."
	PlayerLeftMessage = "Other player left the game"
)

// Manager cleans up after connections that go away
type Manager struct {
	registry *room.Registry
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewManager creates a new Manager
func NewManager(registry *room.Registry, notifier notify.Notifier, logger *slog.Logger) *Manager {
	return &Manager{
		registry: registry,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "connection_manager")),
	}
}

// Disconnect removes the connection from its room, if it has one. A room
// whose host leaves is closed for everyone; otherwise the remaining members
// are told who is still seated and play can carry on.
func (m *Manager) Disconnect(ctx context.Context, conn model.ConnectionID) {
	sess, ok := m.registry.SessionOf(conn)
	if !ok {
		return
	}

	err := sess.Do(func(r *model.Room) error {
		removed, wasHost := r.RemovePlayer(conn)
		if removed == nil {
			return nil
		}
		m.registry.Unseat(conn)

		logger := m.logger.With(
			slog.String("room_code", string(r.Code)),
			slog.String("connection_id", string(conn)),
			slog.Bool("was_host", wasHost))

		switch {
		case r.IsEmpty():
			logger.Info("last player left room")
			m.registry.Destroy(sess)

		case wasHost:
			logger.Info("host left room, closing")
			notify.Room(m.notifier, r, model.Event{
				Type:    model.EventRoomClosed,
				Payload: model.RoomClosedPayload{Message: HostLeftMessage},
			})
			m.registry.Destroy(sess)

		default:
			logger.Info("player left room")
			notify.Room(m.notifier, r, model.Event{
				Type: model.EventPlayerLeft,
				Payload: model.PlayerLeftPayload{
					Message: PlayerLeftMessage,
					Players: r.PlayerViews(),
				},
			})
		}
		return nil
	})
	if err != nil {
		// The room was destroyed while we waited for it
		m.logger.Debug("disconnect found room already closed",
			slog.String("connection_id", string(conn)))
	}
}
