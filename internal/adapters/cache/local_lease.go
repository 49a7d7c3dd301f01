package cache

import (
	"context"
	"sync"

	"github.com/cityexplorer/backend/internal/domain/providers"
)

// LocalLease implements LeaseProvider within one process
type LocalLease struct {
	mu    sync.Mutex
	slots map[string]*leaseSlot
}

type leaseSlot struct {
	held    chan struct{}
	waiters int
}

// NewLocalLease creates an in-process keyed lease
func NewLocalLease() providers.LeaseProvider {
	return &LocalLease{slots: make(map[string]*leaseSlot)}
}

// Acquire blocks until key is free or ctx is done
func (l *LocalLease) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &leaseSlot{held: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.waiters++
	l.mu.Unlock()

	select {
	case slot.held <- struct{}{}:
	case <-ctx.Done():
		l.leave(key, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			<-slot.held
			l.leave(key, slot)
		})
	}
	return release, nil
}

// leave drops the slot once nobody holds or waits on it
func (l *LocalLease) leave(key string, slot *leaseSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.waiters--
	if slot.waiters == 0 {
		delete(l.slots, key)
	}
}
