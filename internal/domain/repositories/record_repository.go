package repositories

import (
	"context"

	"github.com/cityexplorer/backend/internal/domain/entities"
)

// RecordRepository persists batches of one resource kind keyed by location ID
type RecordRepository[R entities.Record] interface {
	// ListByLocation returns every stored record of the location. An empty
	// slice means nothing is cached.
	ListByLocation(ctx context.Context, locationID int64) ([]R, error)

	// ReplaceBatch deletes the location's rows and inserts records in a
	// single transaction. Records must already be stamped.
	ReplaceBatch(ctx context.Context, locationID int64, records []R) error

	// DeleteByLocation removes every stored record of the location
	DeleteByLocation(ctx context.Context, locationID int64) error
}
