package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cityexplorer/backend/internal/adapters/cache"
	"github.com/cityexplorer/backend/internal/application/services"
	"github.com/cityexplorer/backend/internal/domain/entities"
	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

func TestLocationResolver_Resolve(t *testing.T) {
	t.Run("stored location is returned without geocoding", func(t *testing.T) {
		repo := new(MockLocationRepository)
		geocoder := new(MockGeocodingProvider)
		resolver := services.NewLocationResolver(repo, geocoder, cache.NewLocalLease())

		stored := &entities.Location{ID: 1, SearchQuery: "Seattle, WA"}
		repo.On("GetBySearchQuery", mock.Anything, "Seattle, WA").Return(stored, nil).Once()

		location, err := resolver.Resolve(context.Background(), "  Seattle,   WA ")

		require.NoError(t, err)
		assert.Same(t, stored, location)
		geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("unknown text is geocoded and stored", func(t *testing.T) {
		repo := new(MockLocationRepository)
		geocoder := new(MockGeocodingProvider)
		now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		resolver := services.NewLocationResolver(repo, geocoder, cache.NewLocalLease()).
			WithClock(func() time.Time { return now })

		repo.On("GetBySearchQuery", mock.Anything, "Seattle, WA").
			Return(nil, apperrors.NewNotFoundError("location not found")).Twice()
		geocoder.On("Geocode", mock.Anything, "Seattle, WA").Return(&entities.Location{
			SearchQuery:    "Seattle, WA",
			FormattedQuery: "Seattle, WA, USA",
			Latitude:       47.6062095,
			Longitude:      -122.3320708,
		}, nil).Once()
		repo.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(l *entities.Location) bool {
			return l.SearchQuery == "Seattle, WA" && l.FormattedQuery == "Seattle, WA, USA" && l.CreatedAt.Equal(now)
		})).Return(&entities.Location{ID: 1, SearchQuery: "Seattle, WA", FormattedQuery: "Seattle, WA, USA"}, nil).Once()

		location, err := resolver.Resolve(context.Background(), "Seattle, WA")

		require.NoError(t, err)
		assert.Equal(t, int64(1), location.ID)
		repo.AssertExpectations(t)
		geocoder.AssertExpectations(t)
	})

	t.Run("blank text is a validation error", func(t *testing.T) {
		resolver := services.NewLocationResolver(new(MockLocationRepository), new(MockGeocodingProvider), nil)

		_, err := resolver.Resolve(context.Background(), "   ")

		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
	})

	t.Run("geocoding failure stores nothing", func(t *testing.T) {
		repo := new(MockLocationRepository)
		geocoder := new(MockGeocodingProvider)
		resolver := services.NewLocationResolver(repo, geocoder, nil)

		repo.On("GetBySearchQuery", mock.Anything, "Atlantis").
			Return(nil, apperrors.NewNotFoundError("location not found")).Once()
		geocoder.On("Geocode", mock.Anything, "Atlantis").
			Return(nil, apperrors.NewUpstreamError("google geocode request failed", nil)).Once()

		_, err := resolver.Resolve(context.Background(), "Atlantis")

		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeUpstream))
		repo.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
	})

	t.Run("store failure is propagated", func(t *testing.T) {
		repo := new(MockLocationRepository)
		resolver := services.NewLocationResolver(repo, new(MockGeocodingProvider), nil)

		repo.On("GetBySearchQuery", mock.Anything, "Seattle").
			Return(nil, apperrors.NewPersistenceError("failed to get location", assert.AnError)).Once()

		_, err := resolver.Resolve(context.Background(), "Seattle")

		assert.True(t, apperrors.Is(err, apperrors.ErrorTypePersistence))
	})
}

func TestLocationResolver_Get(t *testing.T) {
	repo := new(MockLocationRepository)
	resolver := services.NewLocationResolver(repo, new(MockGeocodingProvider), nil)

	_, err := resolver.Get(context.Background(), 0)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))

	repo.On("GetByID", mock.Anything, int64(99)).Return(nil, apperrors.NewNotFoundError("location 99 not found")).Once()
	_, err = resolver.Get(context.Background(), 99)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
}
