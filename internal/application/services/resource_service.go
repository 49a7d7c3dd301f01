package services

import (
	"context"

	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/domain/providers"
)

// ResourceService serves one resource kind for stored locations
type ResourceService[R entities.Record] struct {
	locations    *LocationResolver
	orchestrator *CacheOrchestrator[R]
}

// NewResourceService creates a new resource service
func NewResourceService[R entities.Record](locations *LocationResolver, orchestrator *CacheOrchestrator[R]) *ResourceService[R] {
	return &ResourceService[R]{
		locations:    locations,
		orchestrator: orchestrator,
	}
}

// Kind returns the resource kind served
func (s *ResourceService[R]) Kind() entities.ResourceKind {
	return s.orchestrator.Kind()
}

// GetForLocation looks up the location and resolves its records
func (s *ResourceService[R]) GetForLocation(ctx context.Context, locationID int64) (*Batch[R], error) {
	location, err := s.locations.Get(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return s.orchestrator.Resolve(ctx, location.ID, providers.QueryFor(location))
}

// Warm resolves the location's records and reports how they were served
func (s *ResourceService[R]) Warm(ctx context.Context, locationID int64) (Outcome, error) {
	batch, err := s.GetForLocation(ctx, locationID)
	if err != nil {
		return "", err
	}
	return batch.Outcome, nil
}
