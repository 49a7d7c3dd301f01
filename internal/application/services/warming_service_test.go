package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityexplorer/backend/internal/adapters/cache"
	"github.com/cityexplorer/backend/internal/adapters/database"
	"github.com/cityexplorer/backend/internal/adapters/providers/geolocation"
	"github.com/cityexplorer/backend/internal/application/services"
	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/domain/providers"
)

func TestWarmingService_WarmAll(t *testing.T) {
	ctx := context.Background()
	client := newSQLiteClient(t)
	clock := newFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	lease := cache.NewLocalLease()
	resolver := services.NewLocationResolver(database.NewLocationAdapter(client), geolocation.NewMockGeolocationProvider(), lease).
		WithClock(clock.Now)

	var fetches int32
	weather := services.NewResourceService(resolver, services.NewCacheOrchestrator(services.ResourceDescriptor[*entities.Weather]{
		Kind:  entities.KindWeather,
		Store: database.NewWeatherAdapter(client),
		Provider: providers.ResourceProviderFunc[*entities.Weather](func(ctx context.Context, q providers.Query) ([]*entities.Weather, error) {
			atomic.AddInt32(&fetches, 1)
			return forecast("Fri Mar 01 2024"), nil
		}),
	}, services.WithClock(clock.Now), services.WithLease(lease)))

	trails := services.NewResourceService(resolver, services.NewCacheOrchestrator(services.ResourceDescriptor[*entities.Trail]{
		Kind:  entities.KindTrail,
		Store: database.NewTrailAdapter(client),
		Provider: providers.ResourceProviderFunc[*entities.Trail](func(ctx context.Context, q providers.Query) ([]*entities.Trail, error) {
			return nil, errors.New("trail api down")
		}),
	}, services.WithClock(clock.Now), services.WithLease(lease)))

	warming := services.NewWarmingService(resolver, 2, weather, trails)
	texts := []string{"Seattle", "Portland", "Atlantis"}

	summary, err := warming.WarmAll(ctx, texts)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Locations)
	assert.Equal(t, 2, summary.Refreshed)
	assert.Equal(t, 0, summary.Hits)
	// one unknown location plus a trail failure per known one
	assert.Equal(t, 3, summary.Failures)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetches))

	clock.Advance(10 * time.Minute)
	summary, err = warming.WarmAll(ctx, texts)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Hits)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetches))
}

func TestWarmingService_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := services.NewLocationResolver(new(MockLocationRepository), new(MockGeocodingProvider), nil)
	warming := services.NewWarmingService(resolver, 0)

	summary, err := warming.WarmAll(ctx, []string{"Seattle"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Locations)
}
