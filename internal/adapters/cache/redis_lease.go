package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cityexplorer/backend/internal/domain/providers"
	redisclient "github.com/cityexplorer/backend/internal/infrastructure/clients/redis"
	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

const (
	defaultLeaseTTL  = 30 * time.Second
	defaultLeasePoll = 50 * time.Millisecond
	leaseKeyPrefix   = "city-explorer:lease:"
)

// releaseScript deletes the lease only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease implements LeaseProvider across processes with SET NX PX.
// A holder that dies loses the lease after ttl.
type RedisLease struct {
	client *redisclient.Client
	ttl    time.Duration
	poll   time.Duration
}

// NewRedisLease creates a new Redis lease adapter
func NewRedisLease(client *redisclient.Client, ttl time.Duration) providers.LeaseProvider {
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &RedisLease{
		client: client,
		ttl:    ttl,
		poll:   defaultLeasePoll,
	}
}

// Acquire polls until the key is free or ctx is done
func (l *RedisLease) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := leaseKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		ok, err := l.client.Client().SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, apperrors.NewInternalError("failed to acquire lease", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, l.client.Client(), []string{redisKey}, token).Err()
		})
	}
	return release, nil
}
