package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/oroshi/backoffice/internal/application/closing"
	"github.com/oroshi/backoffice/internal/domain/shared"
)

// RedisLocker serializes closing runs across processes using Redis locks.
// The TTL is a crash backstop only; a healthy run releases its lock on exit.
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker creates a RedisLocker on top of an existing Redis connection.
func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

// Acquire obtains the lock for key or reports that a run is already in flight.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (closing.RunLock, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.ErrRunInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("obtain redis lock %s: %w", key, err)
	}
	return &redisLock{lock: lock}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

// Release frees the lock. A lock that already expired is not an error.
func (l *redisLock) Release(ctx context.Context) error {
	err := l.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}

// Ensure RedisLocker implements closing.RunLocker
var _ closing.RunLocker = (*RedisLocker)(nil)
