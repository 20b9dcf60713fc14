package round

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/crimeguessr/internal/dependencies/clock"
	"github.com/mcoot/crimeguessr/internal/metrics"
	"github.com/mcoot/crimeguessr/internal/model"
	"github.com/mcoot/crimeguessr/internal/services/location"
	"github.com/mcoot/crimeguessr/internal/services/notify"
	"github.com/mcoot/crimeguessr/internal/services/room"
	"github.com/mcoot/crimeguessr/internal/services/scoring"
	"github.com/mcoot/crimeguessr/internal/storage"
)

// DefaultTimeLimit is the advertised time to guess. It is advisory; rounds
// are never expired by the server.
const DefaultTimeLimit = 30 * time.Second

// Coordinator drives rounds: starting them, collecting guesses and
// advancing to the next round or the end of the game
type Coordinator struct {
	registry  *room.Registry
	provider  location.Provider
	scoring   *scoring.Service
	storage   storage.Storage
	notifier  notify.Notifier
	clock     clock.Clock
	metrics   *metrics.Metrics
	timeLimit time.Duration
	logger    *slog.Logger
}

// NewCoordinator creates a new Coordinator. timeLimit <= 0 uses
// DefaultTimeLimit.
func NewCoordinator(
	registry *room.Registry,
	provider location.Provider,
	scoring *scoring.Service,
	storage storage.Storage,
	notifier notify.Notifier,
	clock clock.Clock,
	metrics *metrics.Metrics,
	timeLimit time.Duration,
	logger *slog.Logger,
) *Coordinator {
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	return &Coordinator{
		registry:  registry,
		provider:  provider,
		scoring:   scoring,
		storage:   storage,
		notifier:  notifier,
		clock:     clock,
		metrics:   metrics,
		timeLimit: timeLimit,
		logger:    logger.With(slog.String("component", "round_coordinator")),
	}
}

// StartGame begins round 1. Only a seated player may start, and only while
// the room is waiting with both seats filled.
func (c *Coordinator) StartGame(ctx context.Context, code string, conn model.ConnectionID) error {
	sess, err := c.registry.Get(code)
	if err != nil {
		return err
	}

	return c.startNextRound(ctx, sess, func(r *model.Room) (bool, error) {
		if r.GetPlayer(conn) == nil {
			return false, model.ErrInvalidPlayerOrRoom
		}
		if r.Status != model.RoomStatusWaiting {
			return false, model.ErrGameInProgress
		}
		if len(r.Players) < model.MaxPlayers {
			return false, model.ErrInsufficientPlayers
		}
		if !r.LocationPending {
			c.logger.Info("game starting",
				slog.String("room_code", string(r.Code)),
				slog.String("connection_id", string(conn)))
		}
		return true, nil
	})
}

// SubmitGuess records a guess and resolves the round once every seated
// player has guessed. Resubmitting before the round resolves overwrites the
// earlier guess.
func (c *Coordinator) SubmitGuess(ctx context.Context, code string, conn model.ConnectionID, guess model.Coordinate) error {
	if !guess.Valid() {
		return model.ErrInvalidCoordinate
	}

	sess, err := c.registry.Get(code)
	if err != nil {
		return model.ErrInvalidPlayerOrRoom
	}

	return sess.Do(func(r *model.Room) error {
		if err := r.RecordGuess(conn, guess); err != nil {
			return err
		}

		c.logger.Debug("guess recorded",
			slog.String("room_code", string(r.Code)),
			slog.String("connection_id", string(conn)),
			slog.Int("round", r.CurrentRound))

		if !r.AllGuessed() {
			return nil
		}

		results := r.ResolveRound(c.scoring.Score)
		notify.Room(c.notifier, r, model.Event{
			Type: model.EventRoundEnd,
			Payload: model.RoundEndPayload{
				ActualLocation: r.CurrentLocation.Reveal(),
				Results:        results,
				CurrentRound:   r.CurrentRound,
			},
		})
		c.metrics.RoundsCompleted.Inc()

		c.logger.Info("round completed",
			slog.String("room_code", string(r.Code)),
			slog.Int("round", r.CurrentRound))
		return nil
	})
}

// Advance moves a room on from a scored round. Any seated player may call
// it; while the next round is already starting or playing further calls are
// no-ops.
func (c *Coordinator) Advance(ctx context.Context, code string, conn model.ConnectionID) error {
	sess, err := c.registry.Get(code)
	if err != nil {
		return model.ErrInvalidPlayerOrRoom
	}

	return c.startNextRound(ctx, sess, func(r *model.Room) (bool, error) {
		if r.GetPlayer(conn) == nil {
			return false, model.ErrInvalidPlayerOrRoom
		}
		switch r.Status {
		case model.RoomStatusWaiting:
			return false, model.ErrRoundNotActive
		case model.RoomStatusRoundEnd:
			return true, nil
		}
		return false, nil
	})
}

// readyFunc reports, with the room locked, whether the caller may move the
// room on. false with a nil error makes the request a no-op.
type readyFunc func(r *model.Room) (bool, error)

// startNextRound ends the game once every round has been played, otherwise
// draws a location and opens the next round. ready is evaluated in the same
// critical section that claims the draw or finishes the game, so a caller
// whose check has gone stale can never act on it. The draw happens outside
// the room's lock; LocationPending makes sure only one caller draws.
func (c *Coordinator) startNextRound(ctx context.Context, sess *room.Session, ready readyFunc) error {
	draw := false
	err := sess.Do(func(r *model.Room) error {
		proceed, err := ready(r)
		if err != nil || !proceed || r.LocationPending {
			return err
		}
		if r.RoundsExhausted() {
			c.finishGame(ctx, r)
			return nil
		}
		r.LocationPending = true
		draw = true
		return nil
	})
	if err != nil || !draw {
		return err
	}

	loc, drawErr := c.provider.NextLocation(ctx)
	if drawErr == nil && loc == nil {
		drawErr = model.ErrLocationUnavailable
	}

	applied := false
	err = sess.Do(func(r *model.Room) error {
		applied = true
		r.LocationPending = false

		if drawErr != nil {
			c.logger.Error("failed to get location",
				slog.String("room_code", string(r.Code)),
				slog.Int("round", r.CurrentRound+1),
				slog.String("error", drawErr.Error()))

			err := drawErr
			if !errors.Is(err, model.ErrLocationUnavailable) {
				err = fmt.Errorf("%w: %w", model.ErrLocationUnavailable, drawErr)
			}
			notify.Room(c.notifier, r, notify.ErrorEvent(err))
			return err
		}

		r.BeginRound(loc, c.clock.Now())
		notify.Room(c.notifier, r, model.Event{
			Type: model.EventRoundStart,
			Payload: model.RoundStartPayload{
				Round:       r.CurrentRound,
				TotalRounds: r.TotalRounds,
				Location:    loc.Public(),
				TimeLimit:   int(c.timeLimit / time.Second),
			},
		})

		c.logger.Info("round started",
			slog.String("room_code", string(r.Code)),
			slog.Int("round", r.CurrentRound),
			slog.Int("total_rounds", r.TotalRounds))
		return nil
	})
	if !applied {
		// The room was closed while drawing; its members were already told
		c.logger.Debug("room closed during location draw",
			slog.String("room_code", string(sess.Code())))
		return nil
	}
	return err
}

// finishGame must be called with the room locked
func (c *Coordinator) finishGame(ctx context.Context, r *model.Room) {
	scores := r.FinishGame()
	winner := ""
	if len(scores) > 0 {
		winner = scores[0].PlayerName
	}

	notify.Room(c.notifier, r, model.Event{
		Type:    model.EventGameEnd,
		Payload: model.GameEndPayload{FinalScores: scores, Winner: winner},
	})
	c.metrics.GamesCompleted.Inc()

	c.logger.Info("game ended",
		slog.String("room_code", string(r.Code)),
		slog.String("winner", winner))

	summary := &model.GameSummary{
		ID:          model.GameID(uuid.NewString()),
		RoomCode:    r.Code,
		FinalScores: scores,
		Winner:      winner,
		Rounds:      r.CurrentRound,
		CompletedAt: c.clock.Now(),
	}
	if err := c.storage.SaveGameSummary(ctx, summary); err != nil {
		c.logger.Error("failed to save game summary",
			slog.String("room_code", string(r.Code)),
			slog.String("error", err.Error()))
	}
}
