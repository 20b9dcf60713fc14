package location

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mcoot/crimeguessr/internal/model"
	"github.com/mcoot/crimeguessr/internal/storage"
)

// Provider supplies round targets to the game
type Provider interface {
	// Available returns ErrDataSourceUnavailable when no location can be served
	Available(ctx context.Context) error
	// NextLocation draws a target; any error means the round cannot start
	NextLocation(ctx context.Context) (*model.Location, error)
}

// Config holds location enrichment settings
type Config struct {
	// StreetViewAPIKey enables imagery URLs; empty leaves them blank
	StreetViewAPIKey string
}

// ImportStats summarizes a dataset import
type ImportStats struct {
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
}

// Service draws enriched locations from the pool held in storage
type Service struct {
	storage storage.Storage
	cfg     Config
	logger  *slog.Logger
}

// New creates a location Service
func New(storage storage.Storage, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "location")),
	}
}

// Ensure Service implements Provider
var _ Provider = (*Service)(nil)

// LoadFromFile imports a CSV dataset from disk
func (s *Service) LoadFromFile(ctx context.Context, path string) (ImportStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportStats{}, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	return s.Import(ctx, f)
}

// Import replaces the location pool with the rows of a CSV dataset. A
// dataset with no usable rows leaves the pool untouched.
func (s *Service) Import(ctx context.Context, r io.Reader) (ImportStats, error) {
	records, skipped, err := ParseCSV(r)
	if err != nil {
		return ImportStats{}, err
	}
	// Keep the current pool rather than replace it with nothing
	if len(records) == 0 {
		return ImportStats{Skipped: skipped}, ErrEmptyDataset
	}

	if err := s.storage.SaveLocations(ctx, records); err != nil {
		return ImportStats{}, fmt.Errorf("save locations: %w", err)
	}

	stats := ImportStats{Loaded: len(records), Skipped: skipped}
	s.logger.Info("location dataset imported",
		slog.Int("loaded", stats.Loaded),
		slog.Int("skipped", stats.Skipped))
	return stats, nil
}

// Count returns the size of the location pool
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.storage.LocationCount(ctx)
}

// Available reports whether the pool has anything to serve
func (s *Service) Available(ctx context.Context) error {
	n, err := s.storage.LocationCount(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrDataSourceUnavailable, err)
	}
	if n == 0 {
		return model.ErrDataSourceUnavailable
	}
	return nil
}

// NextLocation draws a random location and attaches its imagery URL
func (s *Service) NextLocation(ctx context.Context) (*model.Location, error) {
	rec, err := s.storage.RandomLocation(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrNoLocations) {
			s.logger.Error("location draw failed", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("%w: %v", model.ErrLocationUnavailable, err)
	}

	return &model.Location{
		Coordinate: model.Coordinate{Latitude: rec.Latitude, Longitude: rec.Longitude},
		Enrichment: model.Enrichment{
			StreetViewURL: StreetViewURL(s.cfg.StreetViewAPIKey, rec.Latitude, rec.Longitude),
			Offense:       rec.Offense,
			Category:      rec.Category,
			Borough:       rec.Borough,
		},
	}, nil
}
