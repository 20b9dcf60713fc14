package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/crimeguessr/internal/dependencies/random"
	"github.com/mcoot/crimeguessr/internal/model"
	"github.com/mcoot/crimeguessr/internal/storage"
)

// DefaultHistoryLimit is how many completed games are retained
const DefaultHistoryLimit = 50

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu     sync.RWMutex
	random random.Random

	locations    []model.LocationRecord
	history      []model.GameSummary // newest first
	historyLimit int
}

// New creates a new in-memory storage instance. historyLimit <= 0 uses
// DefaultHistoryLimit.
func New(rnd random.Random, historyLimit int) *Storage {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Storage{
		random:       rnd,
		historyLimit: historyLimit,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Location pool operations

func (s *Storage) SaveLocations(ctx context.Context, locations []model.LocationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = slices.Clone(locations)
	return nil
}

func (s *Storage) RandomLocation(ctx context.Context) (*model.LocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.locations) == 0 {
		return nil, model.ErrNoLocations
	}
	rec := s.locations[s.random.Intn(len(s.locations))]
	return &rec, nil
}

func (s *Storage) LocationCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.locations), nil
}

// Game history operations

func (s *Storage) SaveGameSummary(ctx context.Context, summary *model.GameSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = slices.Insert(s.history, 0, *summary)
	if len(s.history) > s.historyLimit {
		s.history = s.history[:s.historyLimit]
	}
	return nil
}

func (s *Storage) ListGameSummaries(ctx context.Context, limit int) ([]model.GameSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.GameSummary, n)
	copy(out, s.history)
	return out, nil
}
