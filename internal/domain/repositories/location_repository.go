package repositories

import (
	"context"

	"github.com/cityexplorer/backend/internal/domain/entities"
)

// LocationRepository persists geocoded searches keyed by their search text
type LocationRepository interface {
	// GetBySearchQuery returns the stored location for the search text.
	// A NOT_FOUND AppError is returned when there is none.
	GetBySearchQuery(ctx context.Context, searchQuery string) (*entities.Location, error)

	// GetByID retrieves a location by its store-assigned ID
	GetByID(ctx context.Context, id int64) (*entities.Location, error)

	// CreateIfAbsent inserts the location unless a row with the same search
	// query exists, and returns whichever row is stored afterwards.
	CreateIfAbsent(ctx context.Context, location *entities.Location) (*entities.Location, error)
}
