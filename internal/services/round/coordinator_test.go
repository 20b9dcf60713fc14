package round

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/crimeguessr/internal/dependencies/mocks"
	"github.com/mcoot/crimeguessr/internal/metrics"
	"github.com/mcoot/crimeguessr/internal/model"
	"github.com/mcoot/crimeguessr/internal/services/room"
	"github.com/mcoot/crimeguessr/internal/services/scoring"
	"github.com/mcoot/crimeguessr/internal/storage/memory"
	logutil "github.com/mcoot/crimeguessr/internal/testutil"
)

const (
	alice model.ConnectionID = "conn-alice"
	bob   model.ConnectionID = "conn-bob"
	code                     = "ABC123"
)

type CoordinatorSuite struct {
	suite.Suite
	ctx         context.Context
	notifier    *mocks.RecordingNotifier
	clock       *mocks.MockClock
	random      *mocks.MockRandom
	provider    *mocks.StubProvider
	storage     *memory.Storage
	metrics     *metrics.Metrics
	registry    *room.Registry
	coordinator *Coordinator
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.ctx = context.Background()
	s.notifier = mocks.NewRecordingNotifier()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.provider = mocks.NewStubProvider()
	s.storage = memory.New(s.random, memory.DefaultHistoryLimit)
	s.metrics = metrics.New()
	logger := logutil.NopLogger()

	s.registry = room.NewRegistry(3, s.notifier, s.clock, s.random, s.metrics, logger)
	s.coordinator = NewCoordinator(
		s.registry,
		s.provider,
		scoring.New(scoring.LinearCurve{}),
		s.storage,
		s.notifier,
		s.clock,
		s.metrics,
		DefaultTimeLimit,
		logger,
	)
}

// seatBoth creates ABC123 with Alice as host and Bob as guest
func (s *CoordinatorSuite) seatBoth() {
	s.random.QueueString(code)
	_, _, err := s.registry.Create("Alice", alice)
	s.Require().NoError(err)
	_, _, err = s.registry.Join(code, "Bob", bob)
	s.Require().NoError(err)
	s.notifier.Reset()
}

func (s *CoordinatorSuite) status() model.RoomStatus {
	sess, err := s.registry.Get(code)
	s.Require().NoError(err)
	v, ok := sess.View()
	s.Require().True(ok)
	return v.Status
}

func (s *CoordinatorSuite) view() model.RoomView {
	sess, err := s.registry.Get(code)
	s.Require().NoError(err)
	v, ok := sess.View()
	s.Require().True(ok)
	return v
}

// playRound starts a round at the given location and has both players guess it
func (s *CoordinatorSuite) playRound(start func() error, lat, lon float64) {
	s.provider.Queue(mocks.Loc(lat, lon))
	s.Require().NoError(start())
	s.Require().NoError(s.coordinator.SubmitGuess(s.ctx, code, alice, model.Coordinate{Latitude: lat, Longitude: lon}))
	s.Require().NoError(s.coordinator.SubmitGuess(s.ctx, code, bob, model.Coordinate{Latitude: lat + 1, Longitude: lon}))
	s.Require().Equal(model.RoomStatusRoundEnd, s.status())
}

// StartGame tests

func (s *CoordinatorSuite) TestStartGameBroadcastsRoundStart() {
	s.seatBoth()
	loc := mocks.Loc(40.70, -74.00)
	loc.Enrichment.Offense = "ROBBERY"
	loc.Enrichment.Category = model.CategoryViolent
	loc.Enrichment.Borough = "MANHATTAN"
	s.provider.Queue(loc)

	s.Require().NoError(s.coordinator.StartGame(s.ctx, code, alice))

	for _, conn := range []model.ConnectionID{alice, bob} {
		ev, ok := s.notifier.Last(conn)
		s.Require().True(ok)
		s.Equal(model.EventRoundStart, ev.Type)
		s.Equal(model.RoundStartPayload{
			Round:       1,
			TotalRounds: 3,
			Location: model.PublicLocation{
				StreetViewURL: "https://example.test/sv",
				Offense:       "ROBBERY",
				Category:      model.CategoryViolent,
			},
			TimeLimit: 30,
		}, ev.Payload)
	}

	v := s.view()
	s.Equal(model.RoomStatusPlaying, v.Status)
	s.Equal(1, v.CurrentRound)
}

func (s *CoordinatorSuite) TestStartGameNeedsTwoPlayers() {
	s.random.QueueString(code)
	_, _, err := s.registry.Create("Alice", alice)
	s.Require().NoError(err)

	err = s.coordinator.StartGame(s.ctx, code, alice)
	s.ErrorIs(err, model.ErrInsufficientPlayers)
	s.Equal(model.RoomStatusWaiting, s.status())
	s.Equal(0, s.provider.Calls())
}

func (s *CoordinatorSuite) TestStartGameUnknownRoom() {
	err := s.coordinator.StartGame(s.ctx, "NOPE00", alice)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *CoordinatorSuite) TestStartGameRequiresMembership() {
	s.seatBoth()
	err := s.coordinator.StartGame(s.ctx, code, "conn-stranger")
	s.ErrorIs(err, model.ErrInvalidPlayerOrRoom)
}

func (s *CoordinatorSuite) TestStartGameTwiceIsRejected() {
	s.seatBoth()
	s.provider.Queue(mocks.Loc(40.7, -74.0))
	s.Require().NoError(s.coordinator.StartGame(s.ctx, code, alice))

	err := s.coordinator.StartGame(s.ctx, code, bob)
	s.ErrorIs(err, model.ErrGameInProgress)
	s.Equal(1, s.view().CurrentRound)
}

func (s *CoordinatorSuite) TestLocationUnavailableLeavesStateUnchanged() {
	s.seatBoth()
	s.provider.QueueError(errors.New("dataset empty"))

	err := s.coordinator.StartGame(s.ctx, code, alice)
	s.ErrorIs(err, model.ErrLocationUnavailable)

	v := s.view()
	s.Equal(model.RoomStatusWaiting, v.Status)
	s.Equal(0, v.CurrentRound)

	for _, conn := range []model.ConnectionID{alice, bob} {
		ev, ok := s.notifier.Last(conn)
		s.Require().True(ok)
		s.Equal(model.EventError, ev.Type)
		s.Equal("Failed to get location", ev.Payload.(model.ErrorPayload).Message)
	}

	// A later attempt can still succeed
	s.provider.Queue(mocks.Loc(40.7, -74.0))
	s.Require().NoError(s.coordinator.StartGame(s.ctx, code, alice))
	s.Equal(1, s.view().CurrentRound)
}

func (s *CoordinatorSuite) TestNilLocationIsUnavailable() {
	s.seatBoth()
	s.provider.Queue(nil)

	err := s.coordinator.StartGame(s.ctx, code, alice)
	s.ErrorIs(err, model.ErrLocationUnavailable)
	s.Equal(model.RoomStatusWaiting, s.status())
}

// SubmitGuess tests

func (s *CoordinatorSuite) TestScoringScenario() {
	s.seatBoth()
	s.provider.Queue(mocks.Loc(40.70, -74.00))
	s.Require().NoError(s.coordinator.StartGame(s.ctx, code, alice))

	s.Require().NoError(s.coordinator.SubmitGuess(s.ctx, code, alice, model.Coordinate{Latitude: 40.70, Longitude: -74.00}))
	s.Empty(s.notifier.OfType(alice, model.EventRoundEnd), "one guess must not end the round")
	s.Equal(model.RoomStatusPlaying, s.status())

	s.Require().NoError(s.coordinator.SubmitGuess(s.ctx, code, bob, model.Coordinate{Latitude: 41.70, Longitude: -74.00}))

	ends := s.notifier.OfType(bob, model.EventRoundEnd)
	s.Require().Len(ends, 1)
	payload := ends[0].Payload.(model.RoundEndPayload)

	s.Equal(1, payload.CurrentRound)
	s.Equal(40.70, payload.ActualLocation.Latitude)
	s.Equal(-74.00, payload.ActualLocation.Longitude)
	s.Require().Len(payload.Results, 2)

	s.Equal("Alice", payload.Results[0].PlayerName)
	s.Equal(0.0, payload.Results[0].DistanceKM)
	s.Equal(1000, payload.Results[0].RoundScore)
	s.Equal(1000, payload.Results[0].TotalScore)

	s.Equal("Bob", payload.Results[1].PlayerName)
	s.Equal(111.19, payload.Results[1].DistanceKM)
	s.Equal(0, payload.Results[1].RoundScore)
	s.Equal(0, payload.Results[1].TotalScore)

	s.Equal(model.RoomStatusRoundEnd, s.status())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.RoundsCompleted))
}

func (s *CoordinatorSuite) TestResubmitOverwritesGuess() {
	s.seatBoth()
	s.provider.Queue(mocks.Loc(40.70, -74.00))
	s.Require().NoError(s.coordinator.StartGame(s.ctx, code, alice))

	s.Require().NoError(s.coordinator.SubmitGuess(s.ctx, code, alice, model.Coordinate{Latitude: 45, Longitude: -74}))
	s.Require().NoError(s.coordinator.SubmitGuess(s.ctx, code, alice, model.Coordinate{Latitude: 40.70, Longitude: -74.00}))
	s.Equal(model.RoomStatusPlaying, s.status())

	s.Require().NoError(s.coordinator.SubmitGuess(s.ctx, code, bob, model.Coordinate{Latitude: 40.70, Longitude: -74.00}))

	payload := s.notifier.OfType(alice, model.EventRoundEnd)[0].Payload.(model.RoundEndPayload)
	s.Equal(1000, payload.Results[0].RoundScore)
}

func (s *CoordinatorSuite) TestSubmitGuessRejections() {
	s.seatBoth()

	s.ErrorIs(s.coordinator.SubmitGuess(s.ctx, code, alice, model.Coordinate{Latitude: 40, Longitude: -74}),
		model.ErrRoundNotActive)
	s.ErrorIs(s.coordinator.SubmitGuess(s.ctx, "NOPE00", alice, model.Coordinate{}),
		model.ErrInvalidPlayerOrRoom)
	s.ErrorIs(s.coordinator.SubmitGuess(s.ctx, code, "conn-stranger", model.Coordinate{}),
		model.ErrInvalidPlayerOrRoom)
	s.ErrorIs(s.coordinator.SubmitGuess(s.ctx, code, alice, model.Coordinate{Latitude: 91}),
		model.ErrInvalidCoordinate)
}

func (s *CoordinatorSuite) TestGuessAfterRoundEndIsRejected() {
	s.seatBoth()
	s.playRound(func() error { return s.coordinator.StartGame(s.ctx, code, alice) }, 40.7, -74.0)

	err := s.coordinator.SubmitGuess(s.ctx, code, alice, model.Coordinate{Latitude: 40.7, Longitude: -74.0})
	s.ErrorIs(err, model.ErrRoundNotActive)
	s.Len(s.notifier.OfType(alice, model.EventRoundEnd), 1)
}

func (s *CoordinatorSuite) TestConcurrentGuessesResolveOnce() {
	for i := 0; i < 50; i++ {
		s.SetupTest()
		s.seatBoth()
		s.provider.Queue(mocks.Loc(40.70, -74.00))
		s.Require().NoError(s.coordinator.StartGame(s.ctx, code, alice))

		var wg sync.WaitGroup
		for _, conn := range []model.ConnectionID{alice, bob} {
			wg.Add(1)
			go func(conn model.ConnectionID) {
				defer wg.Done()
				_ = s.coordinator.SubmitGuess(s.ctx, code, conn, model.Coordinate{Latitude: 40.70, Longitude: -74.00})
			}(conn)
		}
		wg.Wait()

		s.Require().Len(s.notifier.OfType(alice, model.EventRoundEnd), 1)
		for _, p := range s.view().Players {
			s.Equal(1000, p.Score)
		}
	}
}

// Advance tests

func (s *CoordinatorSuite) TestAdvanceStartsNextRound() {
	s.seatBoth()
	s.playRound(func() error { return s.coordinator.StartGame(s.ctx, code, alice) }, 40.7, -74.0)
	s.playRound(func() error { return s.coordinator.Advance(s.ctx, code, bob) }, 40.8, -73.9)

	v := s.view()
	s.Equal(2, v.CurrentRound)
	rounds := s.notifier.OfType(alice, model.EventRoundStart)
	s.Require().Len(rounds, 2)
	s.Equal(2, rounds[1].Payload.(model.RoundStartPayload).Round)
}

func (s *CoordinatorSuite) TestGameEndsAfterFinalRound() {
	s.seatBoth()
	s.playRound(func() error { return s.coordinator.StartGame(s.ctx, code, alice) }, 40.7, -74.0)
	s.playRound(func() error { return s.coordinator.Advance(s.ctx, code, alice) }, 40.7, -74.0)
	s.playRound(func() error { return s.coordinator.Advance(s.ctx, code, alice) }, 40.7, -74.0)

	s.Require().NoError(s.coordinator.Advance(s.ctx, code, bob))

	s.Equal(model.RoomStatusGameEnd, s.status())
	s.Equal(3, s.provider.Calls())

	ends := s.notifier.OfType(bob, model.EventGameEnd)
	s.Require().Len(ends, 1)
	payload := ends[0].Payload.(model.GameEndPayload)
	s.Equal("Alice", payload.Winner)
	s.Equal([]model.FinalScore{
		{PlayerName: "Alice", Score: 3000},
		{PlayerName: "Bob", Score: 0},
	}, payload.FinalScores)

	games, err := s.storage.ListGameSummaries(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Equal(model.RoomCode(code), games[0].RoomCode)
	s.Equal("Alice", games[0].Winner)
	s.Equal(3, games[0].Rounds)
	s.NotEmpty(games[0].ID)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.GamesCompleted))

	// Further advance requests change nothing
	s.Require().NoError(s.coordinator.Advance(s.ctx, code, alice))
	s.Len(s.notifier.OfType(bob, model.EventGameEnd), 1)
}

func (s *CoordinatorSuite) TestFinalStandingsTieKeepsJoinOrder() {
	s.seatBoth()
	for i := 0; i < 3; i++ {
		start := func() error { return s.coordinator.Advance(s.ctx, code, alice) }
		if i == 0 {
			start = func() error { return s.coordinator.StartGame(s.ctx, code, alice) }
		}
		s.provider.Queue(mocks.Loc(40.7, -74.0))
		s.Require().NoError(start())
		for _, conn := range []model.ConnectionID{bob, alice} {
			s.Require().NoError(s.coordinator.SubmitGuess(s.ctx, code, conn, model.Coordinate{Latitude: 40.7, Longitude: -74.0}))
		}
	}
	s.Require().NoError(s.coordinator.Advance(s.ctx, code, bob))

	payload := s.notifier.OfType(alice, model.EventGameEnd)[0].Payload.(model.GameEndPayload)
	s.Equal("Alice", payload.Winner)
	s.Equal("Alice", payload.FinalScores[0].PlayerName)
	s.Equal(payload.FinalScores[0].Score, payload.FinalScores[1].Score)
}

func (s *CoordinatorSuite) TestAdvanceWhilePlayingIsNoop() {
	s.seatBoth()
	s.provider.Queue(mocks.Loc(40.7, -74.0))
	s.Require().NoError(s.coordinator.StartGame(s.ctx, code, alice))

	s.Require().NoError(s.coordinator.Advance(s.ctx, code, bob))
	s.Equal(1, s.view().CurrentRound)
	s.Equal(1, s.provider.Calls())
}

func (s *CoordinatorSuite) TestAdvanceBeforeStartIsRejected() {
	s.seatBoth()
	s.ErrorIs(s.coordinator.Advance(s.ctx, code, alice), model.ErrRoundNotActive)
	s.ErrorIs(s.coordinator.Advance(s.ctx, code, "conn-stranger"), model.ErrInvalidPlayerOrRoom)
	s.ErrorIs(s.coordinator.Advance(s.ctx, "NOPE00", alice), model.ErrInvalidPlayerOrRoom)
}

func (s *CoordinatorSuite) TestConcurrentAdvanceDrawsOnce() {
	s.seatBoth()
	s.playRound(func() error { return s.coordinator.StartGame(s.ctx, code, alice) }, 40.7, -74.0)

	s.provider.Queue(mocks.Loc(40.8, -73.9), mocks.Loc(40.9, -73.8))
	s.provider.Gate = make(chan struct{})
	defer func() { s.provider.Gate = nil }()

	var wg sync.WaitGroup
	for _, conn := range []model.ConnectionID{alice, bob, alice, bob} {
		wg.Add(1)
		go func(conn model.ConnectionID) {
			defer wg.Done()
			_ = s.coordinator.Advance(s.ctx, code, conn)
		}(conn)
	}

	// Release exactly one draw; any other caller must have returned without drawing
	s.provider.Gate <- struct{}{}
	wg.Wait()

	s.Equal(2, s.provider.Calls())
	v := s.view()
	s.Equal(2, v.CurrentRound)
	s.Equal(model.RoomStatusPlaying, v.Status)
	s.Len(s.notifier.OfType(alice, model.EventRoundStart), 2)
}

func (s *CoordinatorSuite) TestRoomClosedDuringDraw() {
	s.seatBoth()
	s.provider.Queue(mocks.Loc(40.7, -74.0))
	s.provider.Entered = make(chan struct{})
	s.provider.Gate = make(chan struct{})
	defer func() {
		s.provider.Entered = nil
		s.provider.Gate = nil
	}()

	done := make(chan error, 1)
	go func() { done <- s.coordinator.StartGame(s.ctx, code, alice) }()

	// The draw is blocked with no room lock held, so removal goes through
	<-s.provider.Entered
	s.Require().NoError(s.registry.Remove(code))
	s.provider.Gate <- struct{}{}

	// Closing the room is reported by whoever closed it; the draw ends quietly
	s.NoError(<-done)
	s.Empty(s.notifier.OfType(alice, model.EventRoundStart))
	s.Empty(s.notifier.OfType(alice, model.EventError))
}

func (s *CoordinatorSuite) TestStartGameDuringDrawIsNoop() {
	s.seatBoth()
	s.provider.Queue(mocks.Loc(40.7, -74.0), mocks.Loc(40.8, -73.9))
	s.provider.Entered = make(chan struct{})
	s.provider.Gate = make(chan struct{})
	defer func() {
		s.provider.Entered = nil
		s.provider.Gate = nil
	}()

	done := make(chan error, 1)
	go func() { done <- s.coordinator.StartGame(s.ctx, code, alice) }()
	<-s.provider.Entered

	s.Require().NoError(s.coordinator.StartGame(s.ctx, code, bob))
	s.provider.Gate <- struct{}{}
	s.Require().NoError(<-done)

	// A start that arrives after round 1 opened is rejected, never a second round
	s.ErrorIs(s.coordinator.StartGame(s.ctx, code, bob), model.ErrGameInProgress)
	s.Equal(1, s.view().CurrentRound)
	s.Equal(1, s.provider.Calls())
	s.Len(s.notifier.OfType(alice, model.EventRoundStart), 1)
}

func (s *CoordinatorSuite) TestConcurrentStartGameOpensOneRound() {
	for i := 0; i < 100; i++ {
		s.SetupTest()
		s.seatBoth()
		s.provider.Queue(mocks.Loc(40.7, -74.0), mocks.Loc(40.8, -73.9), mocks.Loc(40.9, -73.8))

		start := make(chan struct{})
		errs := make(chan error, 4)
		var wg sync.WaitGroup
		for _, conn := range []model.ConnectionID{alice, bob, alice, bob} {
			wg.Add(1)
			go func(conn model.ConnectionID) {
				defer wg.Done()
				<-start
				errs <- s.coordinator.StartGame(s.ctx, code, conn)
			}(conn)
		}
		close(start)
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				s.Require().ErrorIs(err, model.ErrGameInProgress)
			}
		}
		s.Require().Equal(1, s.view().CurrentRound)
		s.Require().Equal(1, s.provider.Calls())
		s.Require().Len(s.notifier.OfType(alice, model.EventRoundStart), 1)
	}
}

func (s *CoordinatorSuite) TestConcurrentAdvanceOpensOneRound() {
	for i := 0; i < 100; i++ {
		s.SetupTest()
		s.seatBoth()
		s.playRound(func() error { return s.coordinator.StartGame(s.ctx, code, alice) }, 40.7, -74.0)
		s.provider.Queue(mocks.Loc(40.8, -73.9), mocks.Loc(40.9, -73.8), mocks.Loc(41.0, -73.7))

		start := make(chan struct{})
		var wg sync.WaitGroup
		for _, conn := range []model.ConnectionID{alice, bob, alice, bob} {
			wg.Add(1)
			go func(conn model.ConnectionID) {
				defer wg.Done()
				<-start
				s.NoError(s.coordinator.Advance(s.ctx, code, conn))
			}(conn)
		}
		close(start)
		wg.Wait()

		v := s.view()
		s.Require().Equal(2, v.CurrentRound)
		s.Require().Equal(model.RoomStatusPlaying, v.Status)
		s.Require().Equal(2, s.provider.Calls())
		s.Require().Len(s.notifier.OfType(bob, model.EventRoundStart), 2)
	}
}

func (s *CoordinatorSuite) TestConcurrentAdvanceEndsGameOnce() {
	for i := 0; i < 100; i++ {
		s.SetupTest()
		s.seatBoth()
		s.playRound(func() error { return s.coordinator.StartGame(s.ctx, code, alice) }, 40.7, -74.0)
		s.playRound(func() error { return s.coordinator.Advance(s.ctx, code, alice) }, 40.7, -74.0)
		s.playRound(func() error { return s.coordinator.Advance(s.ctx, code, alice) }, 40.7, -74.0)

		start := make(chan struct{})
		var wg sync.WaitGroup
		for _, conn := range []model.ConnectionID{alice, bob, alice, bob} {
			wg.Add(1)
			go func(conn model.ConnectionID) {
				defer wg.Done()
				<-start
				s.NoError(s.coordinator.Advance(s.ctx, code, conn))
			}(conn)
		}
		close(start)
		wg.Wait()

		s.Require().Equal(model.RoomStatusGameEnd, s.status())
		s.Require().Len(s.notifier.OfType(alice, model.EventGameEnd), 1)
		s.Require().Len(s.notifier.OfType(bob, model.EventGameEnd), 1)
		s.Require().Equal(3, s.provider.Calls())
		s.Require().Equal(1.0, testutil.ToFloat64(s.metrics.GamesCompleted))

		games, err := s.storage.ListGameSummaries(s.ctx, 10)
		s.Require().NoError(err)
		s.Require().Len(games, 1)
	}
}
