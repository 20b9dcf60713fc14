package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/crimeguessr/internal/api"
	"github.com/mcoot/crimeguessr/internal/config"
	"github.com/mcoot/crimeguessr/internal/factory"
	redisstorage "github.com/mcoot/crimeguessr/internal/storage/redis"
	"github.com/mcoot/crimeguessr/internal/ws"
)

func main() {
	// A missing .env file is fine; the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", slog.String("error", err.Error()))
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.Config) *slog.Logger {
	// Load has already validated the level
	level, _ := cfg.SlogLevel()
	if cfg.LogFormat == config.LogFormatText {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func run(cfg config.Config, logger *slog.Logger) error {
	factoryCfg := factory.Config{
		Logger:           logger,
		StorageType:      cfg.StorageType,
		HistoryLimit:     cfg.GameHistoryLimit,
		StreetViewAPIKey: cfg.GoogleMapsAPIKey,
		TotalRounds:      cfg.MaxRounds,
		RoundTimeLimit:   cfg.RoundTimeLimit,
		ScoringCurve:     cfg.ScoringCurve,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == config.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.HistoryLimit = cfg.GameHistoryLimit
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("could not close storage", slog.String("error", err.Error()))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The server still runs without a dataset; room creation reports the
	// data source as unavailable until one is imported
	if cfg.LocationsCSV != "" {
		stats, err := app.LocationService.LoadFromFile(ctx, cfg.LocationsCSV)
		if err != nil {
			logger.Warn("could not load crime dataset",
				slog.String("path", cfg.LocationsCSV),
				slog.String("error", err.Error()))
		} else {
			logger.Info("crime dataset loaded",
				slog.String("path", cfg.LocationsCSV),
				slog.Int("loaded", stats.Loaded),
				slog.Int("skipped", stats.Skipped))
		}
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		Registry:        app.Registry,
		LocationService: app.LocationService,
		Storage:         app.Storage,
		Metrics:         app.Metrics,
		WebSocket:       ws.NewHandler(app.Hub, app.Gateway, cfg.AllowedOrigins, logger),
		AllowedOrigins:  cfg.AllowedOrigins,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.Addr()
	server := api.NewServer(router, serverConfig, logger)
	server.OnShutdown(app.Hub.Close)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	return g.Wait()
}
