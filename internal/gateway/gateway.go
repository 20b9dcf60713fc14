package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/crimeguessr/internal/metrics"
	"github.com/mcoot/crimeguessr/internal/model"
	"github.com/mcoot/crimeguessr/internal/services/connection"
	"github.com/mcoot/crimeguessr/internal/services/location"
	"github.com/mcoot/crimeguessr/internal/services/notify"
	"github.com/mcoot/crimeguessr/internal/services/room"
	"github.com/mcoot/crimeguessr/internal/services/round"
)

// Gateway decodes client events and routes them to the game services. Any
// failure is reported back to the requesting connection as an error event.
type Gateway struct {
	registry    *room.Registry
	coordinator *round.Coordinator
	connections *connection.Manager
	provider    location.Provider
	notifier    notify.Notifier
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// New creates a new Gateway
func New(
	registry *room.Registry,
	coordinator *round.Coordinator,
	connections *connection.Manager,
	provider location.Provider,
	notifier notify.Notifier,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		registry:    registry,
		coordinator: coordinator,
		connections: connections,
		provider:    provider,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger.With(slog.String("component", "gateway")),
	}
}

// Connect greets a newly opened connection
func (g *Gateway) Connect(ctx context.Context, conn model.ConnectionID) {
	g.notifier.Notify(conn, model.Event{
		Type:    model.EventConnected,
		Payload: model.ConnectedPayload{ConnectionID: conn},
	})
}

// Disconnect releases whatever the connection held
func (g *Gateway) Disconnect(ctx context.Context, conn model.ConnectionID) {
	g.connections.Disconnect(ctx, conn)
}

// Dispatch handles one raw inbound message
func (g *Gateway) Dispatch(ctx context.Context, conn model.ConnectionID, message []byte) {
	started := time.Now()

	var in model.InboundEvent
	if err := json.Unmarshal(message, &in); err != nil || in.Type == "" {
		g.fail(conn, "", fmt.Errorf("%w: malformed envelope", model.ErrInvalidEvent))
		return
	}
	defer g.metrics.ObserveEvent(metricLabel(in.Type), started)

	if err := g.handle(ctx, conn, in); err != nil {
		g.fail(conn, in.Type, err)
	}
}

func (g *Gateway) handle(ctx context.Context, conn model.ConnectionID, in model.InboundEvent) error {
	switch in.Type {
	case model.EventCreateRoom:
		var p model.CreateRoomPayload
		if err := decode(in.Data, &p); err != nil {
			return err
		}
		if err := g.provider.Available(ctx); err != nil {
			return err
		}
		_, _, err := g.registry.Create(p.PlayerName, conn)
		return err

	case model.EventJoinRoom:
		var p model.JoinRoomPayload
		if err := decode(in.Data, &p); err != nil {
			return err
		}
		_, _, err := g.registry.Join(p.RoomCode, p.PlayerName, conn)
		return err

	case model.EventStartGame:
		var p model.RoomPayload
		if err := decode(in.Data, &p); err != nil {
			return err
		}
		return g.coordinator.StartGame(ctx, p.RoomCode, conn)

	case model.EventSubmitGuess:
		var p model.SubmitGuessPayload
		if err := decode(in.Data, &p); err != nil {
			return err
		}
		if p.Latitude == nil || p.Longitude == nil {
			return model.ErrInvalidCoordinate
		}
		return g.coordinator.SubmitGuess(ctx, p.RoomCode, conn, model.Coordinate{
			Latitude:  *p.Latitude,
			Longitude: *p.Longitude,
		})

	case model.EventReadyForNextRound:
		var p model.RoomPayload
		if err := decode(in.Data, &p); err != nil {
			return err
		}
		return g.coordinator.Advance(ctx, p.RoomCode, conn)

	default:
		return fmt.Errorf("%w: unknown event %q", model.ErrInvalidEvent, in.Type)
	}
}

// fail reports an error to the requester. A failed location draw has
// already been announced to the whole room.
func (g *Gateway) fail(conn model.ConnectionID, event model.EventType, err error) {
	code := notify.ErrorCode(err)
	g.metrics.ObserveError(code)

	level := slog.LevelInfo
	if code == notify.CodeInternalError {
		level = slog.LevelError
	}
	g.logger.Log(context.Background(), level, "event rejected",
		slog.String("connection_id", string(conn)),
		slog.String("event", string(event)),
		slog.String("code", code),
		slog.String("error", err.Error()))

	if errors.Is(err, model.ErrLocationUnavailable) {
		return
	}
	g.notifier.Notify(conn, notify.ErrorEvent(err))
}

// metricLabel keeps client-chosen event names out of metric labels
func metricLabel(t model.EventType) model.EventType {
	switch t {
	case model.EventCreateRoom, model.EventJoinRoom, model.EventStartGame,
		model.EventSubmitGuess, model.EventReadyForNextRound:
		return t
	default:
		return "unknown"
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", model.ErrInvalidEvent, err)
	}
	return nil
}
