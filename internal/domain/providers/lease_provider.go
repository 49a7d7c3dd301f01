package providers

import (
	"context"
)

// LeaseProvider grants mutual exclusion per key. A refresh of one
// (kind, location) pair holds the lease across fetch and persist so
// concurrent requests wait instead of fetching again.
type LeaseProvider interface {
	// Acquire blocks until the lease for key is held or ctx is done.
	// The returned release function is safe to call more than once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}
