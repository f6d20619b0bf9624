package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunLock serializes batch runs across process replicas using a Redis SETNX
// key. The TTL bounds lock lifetime if a holder dies without releasing.
type RunLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRunLock builds a RunLock with the given maximum hold time.
func NewRunLock(client *redis.Client, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RunLock{client: client, ttl: ttl}
}

// Acquire attempts to take the named lock. It returns false when another
// holder already owns it.
func (l *RunLock) Acquire(ctx context.Context, name string) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey(name), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return ok, nil
}

// Release drops the named lock.
func (l *RunLock) Release(ctx context.Context, name string) error {
	if err := l.client.Del(ctx, lockKey(name)).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

func lockKey(name string) string {
	return "lock:" + name
}
