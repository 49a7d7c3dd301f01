package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/domain/providers"
	"github.com/cityexplorer/backend/internal/domain/repositories"
	"github.com/cityexplorer/backend/internal/infrastructure/observability"
	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

// Outcome reports how a batch was produced
type Outcome string

const (
	OutcomeHit   Outcome = "hit"
	OutcomeMiss  Outcome = "miss"
	OutcomeStale Outcome = "stale"
)

// Batch is the record set served for one (kind, location) pair
type Batch[R entities.Record] struct {
	Records   []R
	Outcome   Outcome
	FetchedAt time.Time
}

// ResourceDescriptor is everything that varies between resource kinds
type ResourceDescriptor[R entities.Record] struct {
	Kind      entities.ResourceKind
	Store     repositories.RecordRepository[R]
	Provider  providers.ResourceProvider[R]
	Threshold time.Duration
}

type orchestratorOptions struct {
	clock        Clock
	lease        providers.LeaseProvider
	fetchTimeout time.Duration
	metrics      *observability.Metrics
}

// OrchestratorOption configures a CacheOrchestrator
type OrchestratorOption func(*orchestratorOptions)

// WithClock replaces time.Now
func WithClock(clock Clock) OrchestratorOption {
	return func(o *orchestratorOptions) { o.clock = clock }
}

// WithLease serializes refreshes of the same (kind, location) pair
func WithLease(lease providers.LeaseProvider) OrchestratorOption {
	return func(o *orchestratorOptions) { o.lease = lease }
}

// WithFetchTimeout bounds every provider call
func WithFetchTimeout(d time.Duration) OrchestratorOption {
	return func(o *orchestratorOptions) { o.fetchTimeout = d }
}

// WithMetrics records cache outcomes and provider latency
func WithMetrics(metrics *observability.Metrics) OrchestratorOption {
	return func(o *orchestratorOptions) { o.metrics = metrics }
}

// CacheOrchestrator serves one resource kind from the store while it is
// fresh and refetches it from the provider otherwise. The store is the only
// state; the orchestrator itself holds none between calls.
type CacheOrchestrator[R entities.Record] struct {
	desc ResourceDescriptor[R]
	orchestratorOptions
}

// NewCacheOrchestrator creates an orchestrator for desc
func NewCacheOrchestrator[R entities.Record](desc ResourceDescriptor[R], opts ...OrchestratorOption) *CacheOrchestrator[R] {
	if desc.Threshold <= 0 {
		desc.Threshold = DefaultFreshnessThreshold
	}
	o := &CacheOrchestrator[R]{
		desc: desc,
		orchestratorOptions: orchestratorOptions{
			clock: time.Now,
		},
	}
	for _, opt := range opts {
		opt(&o.orchestratorOptions)
	}
	return o
}

// Kind returns the resource kind served
func (o *CacheOrchestrator[R]) Kind() entities.ResourceKind {
	return o.desc.Kind
}

// Resolve returns the location's records of this kind, fetching and
// persisting a new batch when nothing is stored or the stored batch is stale.
// A failed fetch leaves stored rows untouched.
func (o *CacheOrchestrator[R]) Resolve(ctx context.Context, locationID int64, query providers.Query) (*Batch[R], error) {
	ctx, span := observability.StartSpan(ctx, "CacheOrchestrator.Resolve",
		attribute.String("resource.kind", o.desc.Kind.String()),
		attribute.Int64("location.id", locationID),
	)
	defer span.End()

	logger := observability.LoggerFromContext(ctx).With().
		Str("kind", o.desc.Kind.String()).
		Int64("location_id", locationID).
		Logger()

	stored, err := o.desc.Store.ListByLocation(ctx, locationID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if batch, ok := o.freshBatch(stored); ok {
		o.served(ctx, batch)
		logger.Debug().Str("outcome", string(batch.Outcome)).Int("count", len(batch.Records)).Msg("served from store")
		return batch, nil
	}

	if o.lease != nil {
		release, err := o.lease.Acquire(ctx, fmt.Sprintf("%s:%d", o.desc.Kind, locationID))
		if err != nil {
			observability.RecordError(span, err)
			return nil, apperrors.NewInternalError("failed to acquire refresh lease", err)
		}
		defer release()

		// Another holder may have refreshed while we waited.
		stored, err = o.desc.Store.ListByLocation(ctx, locationID)
		if err != nil {
			observability.RecordError(span, err)
			return nil, err
		}
		if batch, ok := o.freshBatch(stored); ok {
			o.served(ctx, batch)
			logger.Debug().Str("outcome", string(batch.Outcome)).Msg("refreshed by concurrent request")
			return batch, nil
		}
	}

	outcome := OutcomeMiss
	if len(stored) > 0 {
		outcome = OutcomeStale
	}

	query.LocationID = locationID
	records, err := o.fetch(ctx, query)
	if err != nil {
		observability.RecordError(span, err)
		logger.Error().Err(err).Str("outcome", string(outcome)).Msg("provider fetch failed")
		return nil, err
	}

	fetchedAt := o.clock().UTC().Truncate(time.Microsecond)
	for _, record := range records {
		record.Stamp(locationID, fetchedAt)
	}

	if err := o.desc.Store.ReplaceBatch(ctx, locationID, records); err != nil {
		observability.RecordError(span, err)
		logger.Error().Err(err).Msg("failed to persist batch")
		return nil, err
	}

	batch := &Batch[R]{Records: records, Outcome: outcome, FetchedAt: fetchedAt}
	o.served(ctx, batch)
	logger.Debug().Str("outcome", string(outcome)).Int("count", len(records)).Msg("fetched from provider")
	return batch, nil
}

func (o *CacheOrchestrator[R]) freshBatch(stored []R) (*Batch[R], bool) {
	oldest, ok := entities.OldestFetch(stored)
	if !ok || IsStale(oldest, o.clock(), o.desc.Threshold) {
		return nil, false
	}
	return &Batch[R]{Records: stored, Outcome: OutcomeHit, FetchedAt: oldest}, true
}

func (o *CacheOrchestrator[R]) fetch(ctx context.Context, query providers.Query) ([]R, error) {
	if o.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	records, err := o.desc.Provider.Fetch(ctx, query)
	o.metrics.RecordProviderFetch(ctx, o.desc.Kind.String(), time.Since(start), err)
	if err != nil {
		if apperrors.TypeOf(err) == apperrors.ErrorTypeInternal {
			err = apperrors.NewUpstreamError(fmt.Sprintf("%s provider failed", o.desc.Kind), err)
		}
		return nil, err
	}
	if records == nil {
		records = make([]R, 0)
	}
	return records, nil
}

func (o *CacheOrchestrator[R]) served(ctx context.Context, batch *Batch[R]) {
	o.metrics.RecordCacheOutcome(ctx, o.desc.Kind.String(), string(batch.Outcome))
}
