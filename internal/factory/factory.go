package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/crimeguessr/internal/dependencies/clock"
	"github.com/mcoot/crimeguessr/internal/dependencies/random"
	"github.com/mcoot/crimeguessr/internal/gateway"
	"github.com/mcoot/crimeguessr/internal/metrics"
	"github.com/mcoot/crimeguessr/internal/services/connection"
	"github.com/mcoot/crimeguessr/internal/services/location"
	"github.com/mcoot/crimeguessr/internal/services/notify"
	"github.com/mcoot/crimeguessr/internal/services/room"
	"github.com/mcoot/crimeguessr/internal/services/round"
	"github.com/mcoot/crimeguessr/internal/services/scoring"
	"github.com/mcoot/crimeguessr/internal/storage"
	"github.com/mcoot/crimeguessr/internal/storage/memory"
	redisstorage "github.com/mcoot/crimeguessr/internal/storage/redis"
	"github.com/mcoot/crimeguessr/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock   clock.Clock
	Random  random.Random
	Metrics *metrics.Metrics

	// Services
	LocationService *location.Service
	ScoringService  *scoring.Service
	Registry        *room.Registry
	Coordinator     *round.Coordinator
	Connections     *connection.Manager
	Hub             *ws.Hub
	Gateway         *gateway.Gateway
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// HistoryLimit caps the in-memory game history; zero uses the storage default
	HistoryLimit int

	// StreetViewAPIKey enables imagery URLs on served locations (optional)
	StreetViewAPIKey string
	// TotalRounds is the number of rounds per game; zero uses the default
	TotalRounds int
	// RoundTimeLimit is the advertised time to guess; zero uses the default
	RoundTimeLimit time.Duration
	// ScoringCurve names the scoring curve; empty uses the linear curve
	ScoringCurve string
}

// settings are the game options shared by production and test wiring
type settings struct {
	streetViewAPIKey string
	totalRounds      int
	roundTimeLimit   time.Duration
	curve            scoring.Curve
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	curve, err := scoring.CurveByName(cfg.ScoringCurve)
	if err != nil {
		return nil, err
	}

	rnd := random.New()

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New(rnd, cfg.HistoryLimit)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig, rnd)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	opts := settings{
		streetViewAPIKey: cfg.StreetViewAPIKey,
		totalRounds:      cfg.TotalRounds,
		roundTimeLimit:   cfg.RoundTimeLimit,
		curve:            curve,
	}
	return newWithDependencies(store, clock.New(), rnd, nil, opts, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for
// testing). A nil notifier delivers events through the websocket hub.
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	notifier notify.Notifier,
	opts settings,
	logger *slog.Logger,
) *App {
	m := metrics.New()
	hub := ws.NewHub(m, logger)
	if notifier == nil {
		notifier = hub
	}

	// Create services
	locationService := location.New(store, location.Config{StreetViewAPIKey: opts.streetViewAPIKey}, logger)
	scoringService := scoring.New(opts.curve)
	registry := room.NewRegistry(opts.totalRounds, notifier, clk, rnd, m, logger)
	coordinator := round.NewCoordinator(
		registry, locationService, scoringService, store, notifier, clk, m, opts.roundTimeLimit, logger,
	)
	connections := connection.NewManager(registry, notifier, logger)
	gw := gateway.New(registry, coordinator, connections, locationService, notifier, m, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Metrics:         m,
		LocationService: locationService,
		ScoringService:  scoringService,
		Registry:        registry,
		Coordinator:     coordinator,
		Connections:     connections,
		Hub:             hub,
		Gateway:         gw,
	}
}

// Close releases storage connections
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
