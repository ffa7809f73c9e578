package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	redsyncredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	// lockExpiry bounds how long a crashed holder can wedge the cache
	// before the lock auto-releases. It must comfortably exceed the
	// longest expected critical section.
	lockExpiry = 10 * time.Minute

	// lockRetryDelay is the interval between acquisition attempts while
	// waiting for a contended lock.
	lockRetryDelay = 250 * time.Millisecond
)

// RedisKV implements KV over a Redis-compatible server using go-redis.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV creates a RedisKV backed by the given client.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

// Get returns the value stored under key, or ErrNotFound if the key is
// absent or expired.
func (s *RedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("%w: GET %s: %v", ErrStorage, key, err)
	}
	return value, nil
}

// Set stores value under key with no expiry.
func (s *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: SET %s: %v", ErrStorage, key, err)
	}
	return nil
}

// SetEx stores value under key with the given TTL, resetting any previous
// TTL on the key.
func (s *RedisKV) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.SetEx(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: SETEX %s: %v", ErrStorage, key, err)
	}
	return nil
}

// Keys returns the keys matching a glob-style pattern.
func (s *RedisKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: KEYS %s: %v", ErrStorage, pattern, err)
	}
	return keys, nil
}

// Ping verifies the Redis server is reachable.
func (s *RedisKV) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: PING: %v", ErrStorage, err)
	}
	return nil
}

// RedisLocker implements Locker using redsync distributed mutexes.
type RedisLocker struct {
	rs *redsync.Redsync
}

// NewRedisLocker creates a RedisLocker sharing the given client.
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{rs: redsync.New(redsyncredis.NewPool(client))}
}

// Acquire blocks up to timeout waiting for the named lock. It fails closed
// with ErrLockTimeout once the bound elapses rather than waiting
// indefinitely, which prevents unbounded pile-up of blocked workers.
func (l *RedisLocker) Acquire(ctx context.Context, name string, timeout time.Duration) (Lock, error) {
	tries := int(timeout/lockRetryDelay) + 1

	mutex := l.rs.NewMutex(name,
		redsync.WithExpiry(lockExpiry),
		redsync.WithTries(tries),
		redsync.WithRetryDelay(lockRetryDelay),
	)

	acquireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := mutex.LockContext(acquireCtx); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: lock %s: %v", ErrStorage, name, ctx.Err())
		}
		return nil, fmt.Errorf("%w: lock %s after %s: %v", ErrLockTimeout, name, timeout, err)
	}

	return &redisLock{mutex: mutex}, nil
}

// redisLock wraps a held redsync mutex.
type redisLock struct {
	mutex *redsync.Mutex
}

// Release relinquishes the lock. An already-expired lock is not an error
// for the caller; the critical section is over either way.
func (l *redisLock) Release(ctx context.Context) error {
	ok, err := l.mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: unlock %s: %v", ErrStorage, l.mutex.Name(), err)
	}
	if !ok {
		return fmt.Errorf("%w: unlock %s: lock no longer held", ErrStorage, l.mutex.Name())
	}
	return nil
}
