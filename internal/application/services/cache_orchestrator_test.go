package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cityexplorer/backend/internal/adapters/cache"
	"github.com/cityexplorer/backend/internal/application/services"
	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/domain/providers"
	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newWeatherOrchestrator(store *memStore[*entities.Weather], provider providers.ResourceProvider[*entities.Weather], clock *fakeClock, opts ...services.OrchestratorOption) *services.CacheOrchestrator[*entities.Weather] {
	opts = append([]services.OrchestratorOption{
		services.WithClock(clock.Now),
		services.WithLease(cache.NewLocalLease()),
	}, opts...)
	return services.NewCacheOrchestrator(services.ResourceDescriptor[*entities.Weather]{
		Kind:      entities.KindWeather,
		Store:     store,
		Provider:  provider,
		Threshold: 30 * time.Minute,
	}, opts...)
}

func TestCacheOrchestrator_Miss(t *testing.T) {
	ctx := context.Background()
	store := newMemStore[*entities.Weather]()
	provider := new(MockWeatherProvider)
	clock := newFakeClock(epoch)
	orchestrator := newWeatherOrchestrator(store, provider, clock)

	query := providers.Query{SearchQuery: "seattle", Latitude: 47.6, Longitude: -122.3}
	provider.On("Fetch", mock.Anything, mock.MatchedBy(func(q providers.Query) bool {
		return q.LocationID == 1 && q.Latitude == 47.6
	})).Return(forecast("Fri Mar 01 2024", "Sat Mar 02 2024", "Sun Mar 03 2024"), nil).Once()

	batch, err := orchestrator.Resolve(ctx, 1, query)
	require.NoError(t, err)

	assert.Equal(t, services.OutcomeMiss, batch.Outcome)
	assert.Equal(t, epoch, batch.FetchedAt)
	require.Len(t, batch.Records, 3)
	for _, r := range batch.Records {
		assert.Equal(t, int64(1), r.LocationID)
		assert.Equal(t, epoch, r.CreatedAt)
	}

	stored, _ := store.ListByLocation(ctx, 1)
	assert.Equal(t, batch.Records, stored)
	assert.Equal(t, entities.KindWeather, orchestrator.Kind())
	provider.AssertExpectations(t)
}

func TestCacheOrchestrator_FreshBatchIsServedWithoutFetching(t *testing.T) {
	ctx := context.Background()
	store := newMemStore[*entities.Weather]()
	provider := new(MockWeatherProvider)
	clock := newFakeClock(epoch)
	orchestrator := newWeatherOrchestrator(store, provider, clock)

	seeded := forecast("Fri Mar 01 2024")
	store.seed(1, epoch.Add(-10*time.Minute), seeded...)

	batch, err := orchestrator.Resolve(ctx, 1, providers.Query{})
	require.NoError(t, err)

	assert.Equal(t, services.OutcomeHit, batch.Outcome)
	assert.Equal(t, seeded, batch.Records)
	assert.Equal(t, epoch.Add(-10*time.Minute), batch.FetchedAt)
	provider.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	assert.Zero(t, store.replaces)
}

func TestCacheOrchestrator_ThresholdBoundary(t *testing.T) {
	ctx := context.Background()

	t.Run("thirty minutes old is a hit", func(t *testing.T) {
		store := newMemStore[*entities.Weather]()
		provider := new(MockWeatherProvider)
		orchestrator := newWeatherOrchestrator(store, provider, newFakeClock(epoch))
		store.seed(1, epoch.Add(-30*time.Minute), forecast("Fri Mar 01 2024")...)

		batch, err := orchestrator.Resolve(ctx, 1, providers.Query{})
		require.NoError(t, err)

		assert.Equal(t, services.OutcomeHit, batch.Outcome)
		provider.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	})

	t.Run("thirty one minutes old is refetched", func(t *testing.T) {
		store := newMemStore[*entities.Weather]()
		provider := new(MockWeatherProvider)
		orchestrator := newWeatherOrchestrator(store, provider, newFakeClock(epoch))
		store.seed(1, epoch.Add(-31*time.Minute), forecast("Thu Feb 29 2024")...)
		provider.On("Fetch", mock.Anything, mock.Anything).Return(forecast("Fri Mar 01 2024"), nil).Once()

		batch, err := orchestrator.Resolve(ctx, 1, providers.Query{})
		require.NoError(t, err)

		assert.Equal(t, services.OutcomeStale, batch.Outcome)
		provider.AssertExpectations(t)
	})
}

func TestCacheOrchestrator_OldestRecordDecidesFreshness(t *testing.T) {
	ctx := context.Background()
	store := newMemStore[*entities.Weather]()
	provider := new(MockWeatherProvider)
	orchestrator := newWeatherOrchestrator(store, provider, newFakeClock(epoch))

	records := forecast("a", "b")
	records[0].Stamp(1, epoch.Add(-5*time.Minute))
	records[1].Stamp(1, epoch.Add(-40*time.Minute))
	store.mu.Lock()
	store.rows[1] = records
	store.mu.Unlock()

	provider.On("Fetch", mock.Anything, mock.Anything).Return(forecast("c"), nil).Once()

	batch, err := orchestrator.Resolve(ctx, 1, providers.Query{})
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeStale, batch.Outcome)
}

func TestCacheOrchestrator_StaleBatchIsReplaced(t *testing.T) {
	ctx := context.Background()
	store := newMemStore[*entities.Weather]()
	provider := new(MockWeatherProvider)
	clock := newFakeClock(epoch)
	orchestrator := newWeatherOrchestrator(store, provider, clock)

	store.seed(1, epoch.Add(-45*time.Minute), forecast("Thu Feb 29 2024", "Fri Mar 01 2024")...)
	provider.On("Fetch", mock.Anything, mock.Anything).Return(forecast("Fri Mar 01 2024"), nil).Once()

	batch, err := orchestrator.Resolve(ctx, 1, providers.Query{})
	require.NoError(t, err)

	assert.Equal(t, services.OutcomeStale, batch.Outcome)
	assert.Equal(t, epoch, batch.FetchedAt)

	stored, _ := store.ListByLocation(ctx, 1)
	require.Len(t, stored, 1)
	assert.Equal(t, epoch, stored[0].CreatedAt)
	provider.AssertExpectations(t)
}

func TestCacheOrchestrator_FetchFailureKeepsStaleRows(t *testing.T) {
	ctx := context.Background()
	store := newMemStore[*entities.Weather]()
	provider := new(MockWeatherProvider)
	orchestrator := newWeatherOrchestrator(store, provider, newFakeClock(epoch))

	stale := forecast("Thu Feb 29 2024")
	store.seed(1, epoch.Add(-2*time.Hour), stale...)
	provider.On("Fetch", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewUpstreamError("darksky returned status 503", nil)).Once()

	batch, err := orchestrator.Resolve(ctx, 1, providers.Query{})

	require.Error(t, err)
	assert.Nil(t, batch)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeUpstream))

	stored, _ := store.ListByLocation(ctx, 1)
	assert.Equal(t, stale, stored)
	assert.Zero(t, store.replaces)
}

func TestCacheOrchestrator_PlainProviderErrorBecomesUpstream(t *testing.T) {
	store := newMemStore[*entities.Weather]()
	provider := new(MockWeatherProvider)
	orchestrator := newWeatherOrchestrator(store, provider, newFakeClock(epoch))
	provider.On("Fetch", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Once()

	_, err := orchestrator.Resolve(context.Background(), 1, providers.Query{})

	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeUpstream))
	assert.ErrorContains(t, err, "connection reset")
}

func TestCacheOrchestrator_FetchTimeout(t *testing.T) {
	store := newMemStore[*entities.Weather]()
	slow := providers.ResourceProviderFunc[*entities.Weather](func(ctx context.Context, q providers.Query) ([]*entities.Weather, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	orchestrator := newWeatherOrchestrator(store, slow, newFakeClock(epoch), services.WithFetchTimeout(20*time.Millisecond))

	_, err := orchestrator.Resolve(context.Background(), 1, providers.Query{})

	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeUpstream))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCacheOrchestrator_EmptyFetchIsServedAndRetriedNextTime(t *testing.T) {
	ctx := context.Background()
	store := newMemStore[*entities.Weather]()
	provider := new(MockWeatherProvider)
	orchestrator := newWeatherOrchestrator(store, provider, newFakeClock(epoch))
	provider.On("Fetch", mock.Anything, mock.Anything).Return(nil, nil).Twice()

	first, err := orchestrator.Resolve(ctx, 1, providers.Query{})
	require.NoError(t, err)
	assert.NotNil(t, first.Records)
	assert.Empty(t, first.Records)
	assert.Equal(t, services.OutcomeMiss, first.Outcome)

	second, err := orchestrator.Resolve(ctx, 1, providers.Query{})
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeMiss, second.Outcome)
	provider.AssertExpectations(t)
}

func TestCacheOrchestrator_PersistFailure(t *testing.T) {
	store := newMemStore[*entities.Weather]()
	store.replaceErr = apperrors.NewPersistenceError("failed to insert weathers", errors.New("disk full"))
	provider := new(MockWeatherProvider)
	orchestrator := newWeatherOrchestrator(store, provider, newFakeClock(epoch))
	provider.On("Fetch", mock.Anything, mock.Anything).Return(forecast("x"), nil).Once()

	_, err := orchestrator.Resolve(context.Background(), 1, providers.Query{})

	assert.True(t, apperrors.Is(err, apperrors.ErrorTypePersistence))
}

func TestCacheOrchestrator_ConcurrentMissesFetchOnce(t *testing.T) {
	store := newMemStore[*entities.Weather]()
	var fetches int32
	provider := providers.ResourceProviderFunc[*entities.Weather](func(ctx context.Context, q providers.Query) ([]*entities.Weather, error) {
		atomic.AddInt32(&fetches, 1)
		time.Sleep(20 * time.Millisecond)
		return forecast("Fri Mar 01 2024"), nil
	})
	orchestrator := newWeatherOrchestrator(store, provider, newFakeClock(epoch))

	const callers = 10
	outcomes := make([]services.Outcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			batch, err := orchestrator.Resolve(context.Background(), 1, providers.Query{})
			if assert.NoError(t, err) {
				outcomes[i] = batch.Outcome
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
	misses := 0
	for _, o := range outcomes {
		if o == services.OutcomeMiss {
			misses++
		}
	}
	assert.Equal(t, 1, misses)
}

func TestCacheOrchestrator_LocationsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore[*entities.Weather]()
	provider := new(MockWeatherProvider)
	orchestrator := newWeatherOrchestrator(store, provider, newFakeClock(epoch))

	store.seed(1, epoch, forecast("fresh")...)
	provider.On("Fetch", mock.Anything, mock.MatchedBy(func(q providers.Query) bool { return q.LocationID == 2 })).
		Return(forecast("other"), nil).Once()

	hit, err := orchestrator.Resolve(ctx, 1, providers.Query{})
	require.NoError(t, err)
	miss, err := orchestrator.Resolve(ctx, 2, providers.Query{})
	require.NoError(t, err)

	assert.Equal(t, services.OutcomeHit, hit.Outcome)
	assert.Equal(t, services.OutcomeMiss, miss.Outcome)
	assert.Equal(t, "other", miss.Records[0].Time)
	provider.AssertExpectations(t)
}
