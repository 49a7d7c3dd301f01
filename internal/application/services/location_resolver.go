package services

import (
	"context"
	"time"

	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/domain/providers"
	"github.com/cityexplorer/backend/internal/domain/repositories"
	"github.com/cityexplorer/backend/internal/infrastructure/observability"
	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

// LocationResolver maps search text to a stored location, geocoding it the
// first time the text is seen. Locations never go stale.
type LocationResolver struct {
	repo     repositories.LocationRepository
	geocoder providers.GeocodingProvider
	lease    providers.LeaseProvider
	clock    Clock
}

// NewLocationResolver creates a new location resolver. lease may be nil.
func NewLocationResolver(repo repositories.LocationRepository, geocoder providers.GeocodingProvider, lease providers.LeaseProvider) *LocationResolver {
	return &LocationResolver{
		repo:     repo,
		geocoder: geocoder,
		lease:    lease,
		clock:    time.Now,
	}
}

// WithClock replaces time.Now
func (r *LocationResolver) WithClock(clock Clock) *LocationResolver {
	r.clock = clock
	return r
}

// Resolve returns the location stored for text, creating it on first use
func (r *LocationResolver) Resolve(ctx context.Context, text string) (*entities.Location, error) {
	searchQuery := entities.NormalizeSearchQuery(text)
	if searchQuery == "" {
		return nil, apperrors.NewValidationError("search text is required")
	}

	logger := observability.LoggerFromContext(ctx).With().Str("search_query", searchQuery).Logger()

	location, err := r.repo.GetBySearchQuery(ctx, searchQuery)
	if err == nil {
		logger.Debug().Int64("location_id", location.ID).Msg("location served from store")
		return location, nil
	}
	if !apperrors.Is(err, apperrors.ErrorTypeNotFound) {
		return nil, err
	}

	if r.lease != nil {
		release, err := r.lease.Acquire(ctx, string(entities.KindLocation)+":"+searchQuery)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to acquire location lease", err)
		}
		defer release()

		location, err = r.repo.GetBySearchQuery(ctx, searchQuery)
		if err == nil {
			return location, nil
		}
		if !apperrors.Is(err, apperrors.ErrorTypeNotFound) {
			return nil, err
		}
	}

	geocoded, err := r.geocoder.Geocode(ctx, searchQuery)
	if err != nil {
		logger.Error().Err(err).Msg("geocoding failed")
		return nil, err
	}
	geocoded.SearchQuery = searchQuery
	geocoded.CreatedAt = r.clock().UTC().Truncate(time.Microsecond)

	location, err = r.repo.CreateIfAbsent(ctx, geocoded)
	if err != nil {
		logger.Error().Err(err).Msg("failed to store location")
		return nil, err
	}

	logger.Info().Int64("location_id", location.ID).Msg("location geocoded")
	return location, nil
}

// Get returns a stored location by ID
func (r *LocationResolver) Get(ctx context.Context, id int64) (*entities.Location, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("location_id must be a positive integer")
	}
	return r.repo.GetByID(ctx, id)
}
