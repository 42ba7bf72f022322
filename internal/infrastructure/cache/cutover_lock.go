package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/hms/backend/internal/domain/dayend"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const cutoverLockKey = "dayend:close:lock"

// RedisLocker serializes day-end closes across instances using a
// Redis-held distributed lock
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker creates a distributed cutover locker
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(client)}
}

// Acquire obtains the cutover lock, failing when another close holds it
func (l *RedisLocker) Acquire(ctx context.Context, ttl time.Duration) (dayend.Lock, error) {
	lock, err := l.client.Obtain(ctx, cutoverLockKey, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.NewDomainError("LOCK_HELD", "Day-end close already in progress")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain cutover lock: %w", err)
	}
	return &redisLock{lock: lock}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

// Release frees the cutover lock. Releasing a lock that already expired
// is not an error; the close it protected has finished either way.
func (l *redisLock) Release(ctx context.Context) error {
	err := l.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}
