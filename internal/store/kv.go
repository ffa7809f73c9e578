// Package store defines the persistence interfaces for the application and
// their Redis-backed and in-memory implementations. All durable state lives
// in a Redis-compatible key-value store: one key per task record and two
// keys for the shared prime cache.
package store

import (
	"context"
	"time"
)

// KV is the key-value store consumed by the task record store and the prime
// cache store. Implementations must return ErrNotFound for absent or expired
// keys and wrap infrastructure failures with ErrStorage.
type KV interface {
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key with no expiry.
	Set(ctx context.Context, key, value string) error

	// SetEx stores value under key with the given time-to-live. Writing an
	// existing key resets its TTL.
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error

	// Keys returns the keys matching a glob-style pattern. Used only by
	// read-side observability, never by the core computation path.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Ping verifies the store is reachable. Used by the readiness probe.
	Ping(ctx context.Context) error
}

// Lock is a held mutual-exclusion lock. Release must be called on all exit
// paths of the critical section.
type Lock interface {
	// Release relinquishes the lock so another holder can acquire it.
	Release(ctx context.Context) error
}

// Locker provides named mutual-exclusion locks with bounded acquisition.
// Acquire blocks up to timeout waiting for the named lock and returns
// ErrLockTimeout when the bound elapses without acquisition.
type Locker interface {
	Acquire(ctx context.Context, name string, timeout time.Duration) (Lock, error)
}
