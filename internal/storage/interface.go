package storage

import (
	"context"

	"github.com/mcoot/crimeguessr/internal/model"
)

// Storage holds the location pool and the history of completed games. Live
// rooms are kept in memory by the room registry and are never stored here.
type Storage interface {
	// Location pool operations
	SaveLocations(ctx context.Context, locations []model.LocationRecord) error
	RandomLocation(ctx context.Context) (*model.LocationRecord, error)
	LocationCount(ctx context.Context) (int, error)

	// Game history operations
	SaveGameSummary(ctx context.Context, summary *model.GameSummary) error
	ListGameSummaries(ctx context.Context, limit int) ([]model.GameSummary, error)
}
