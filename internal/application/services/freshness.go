package services

import (
	"time"

	"github.com/cityexplorer/backend/internal/domain/entities"
)

// DefaultFreshnessThreshold is how long a stored batch is served before a refetch
const DefaultFreshnessThreshold = 30 * time.Minute

// Clock returns the current time
type Clock func() time.Time

// IsStale reports whether a batch fetched at oldest has outlived threshold.
// An age equal to the threshold is still fresh.
func IsStale(oldest, now time.Time, threshold time.Duration) bool {
	return now.Sub(oldest) > threshold
}

// FreshnessPolicy holds the default threshold and per-kind overrides
type FreshnessPolicy struct {
	Default   time.Duration
	Overrides map[entities.ResourceKind]time.Duration
}

// ThresholdFor returns the threshold of kind
func (p FreshnessPolicy) ThresholdFor(kind entities.ResourceKind) time.Duration {
	if d, ok := p.Overrides[kind]; ok && d > 0 {
		return d
	}
	if p.Default > 0 {
		return p.Default
	}
	return DefaultFreshnessThreshold
}
