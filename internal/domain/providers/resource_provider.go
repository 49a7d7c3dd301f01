package providers

import (
	"context"

	"github.com/cityexplorer/backend/internal/domain/entities"
)

// Query carries the location-derived parameters a provider may need.
// Text-driven providers read SearchQuery, coordinate-driven ones read
// Latitude and Longitude.
type Query struct {
	LocationID     int64
	SearchQuery    string
	FormattedQuery string
	Latitude       float64
	Longitude      float64
}

// QueryFor derives the provider query of a stored location
func QueryFor(location *entities.Location) Query {
	return Query{
		LocationID:     location.ID,
		SearchQuery:    location.SearchQuery,
		FormattedQuery: location.FormattedQuery,
		Latitude:       location.Latitude,
		Longitude:      location.Longitude,
	}
}

// ResourceProvider fetches and normalizes one resource kind from an external
// source. Zero records is a valid result.
type ResourceProvider[R entities.Record] interface {
	Fetch(ctx context.Context, query Query) ([]R, error)
}

// ResourceProviderFunc adapts a function to ResourceProvider
type ResourceProviderFunc[R entities.Record] func(ctx context.Context, query Query) ([]R, error)

// Fetch calls f
func (f ResourceProviderFunc[R]) Fetch(ctx context.Context, query Query) ([]R, error) {
	return f(ctx, query)
}
