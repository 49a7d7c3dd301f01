package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cityexplorer/backend/internal/domain/entities"
)

// Warmer refreshes one resource kind for a stored location
type Warmer interface {
	Kind() entities.ResourceKind
	Warm(ctx context.Context, locationID int64) (Outcome, error)
}

// WarmSummary counts the outcomes of one warming run
type WarmSummary struct {
	Locations int
	Hits      int
	Refreshed int
	Failures  int
}

// WarmingService keeps a fixed list of locations populated so their first
// request is a store hit.
type WarmingService struct {
	resolver    *LocationResolver
	warmers     []Warmer
	workerCount int
}

// NewWarmingService creates a new warming service
func NewWarmingService(resolver *LocationResolver, workers int, warmers ...Warmer) *WarmingService {
	if workers <= 0 {
		workers = 1
	}
	return &WarmingService{
		resolver:    resolver,
		warmers:     warmers,
		workerCount: workers,
	}
}

// WarmAll resolves every search text and then every resource kind under it.
// Per-location failures are counted and logged, not returned.
func (s *WarmingService) WarmAll(ctx context.Context, texts []string) (*WarmSummary, error) {
	var locations, hits, refreshed, failures int64

	textChan := make(chan string)
	var wg sync.WaitGroup

	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for text := range textChan {
				location, err := s.resolver.Resolve(ctx, text)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					log.Warn().Err(err).Str("search_query", text).Msg("failed to warm location")
					continue
				}
				atomic.AddInt64(&locations, 1)

				for _, w := range s.warmers {
					outcome, err := w.Warm(ctx, location.ID)
					switch {
					case err != nil:
						atomic.AddInt64(&failures, 1)
						log.Warn().Err(err).
							Str("kind", w.Kind().String()).
							Int64("location_id", location.ID).
							Msg("failed to warm resource")
					case outcome == OutcomeHit:
						atomic.AddInt64(&hits, 1)
					default:
						atomic.AddInt64(&refreshed, 1)
					}
				}
			}
		}()
	}

	var err error
produce:
	for _, text := range texts {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case textChan <- text:
		case <-ctx.Done():
			err = ctx.Err()
			break produce
		}
	}
	close(textChan)
	wg.Wait()

	return &WarmSummary{
		Locations: int(locations),
		Hits:      int(hits),
		Refreshed: int(refreshed),
		Failures:  int(failures),
	}, err
}

// StartPeriodicWarming warms texts now and then every interval until ctx is done
func (s *WarmingService) StartPeriodicWarming(ctx context.Context, texts []string, interval time.Duration) {
	run := func() {
		summary, err := s.WarmAll(ctx, texts)
		if err != nil {
			log.Warn().Err(err).Msg("cache warming interrupted")
		}
		log.Info().
			Int("locations", summary.Locations).
			Int("hits", summary.Hits).
			Int("refreshed", summary.Refreshed).
			Int("failures", summary.Failures).
			Msg("cache warming completed")
	}

	run()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				run()
			case <-ctx.Done():
				return
			}
		}
	}()
}
