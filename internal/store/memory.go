package store

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"
)

// MemoryKV is an in-memory KV implementation with TTL support. It exists so
// the full dispatcher -> worker -> cache path can run hermetically in tests
// without a Redis server.
type MemoryKV struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string]memoryEntry)}
}

// Get returns the value stored under key, honoring TTL expiry.
func (s *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || s.expired(entry) {
		delete(s.entries, key)
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return entry.value, nil
}

// Set stores value under key with no expiry.
func (s *MemoryKV) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{value: value}
	return nil
}

// SetEx stores value under key with the given TTL, resetting any previous
// TTL on the key.
func (s *MemoryKV) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Keys returns the live keys matching a glob-style pattern.
func (s *MemoryKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for key, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, key)
			continue
		}
		if ok, err := path.Match(pattern, key); err == nil && ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryKV) Ping(ctx context.Context) error {
	return nil
}

// expired reports whether the entry's TTL has elapsed. Callers hold s.mu.
func (s *MemoryKV) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)
}

// MemoryLocker implements Locker with per-name channel semaphores. Like the
// Redis-backed locker it bounds acquisition and fails closed on timeout.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewMemoryLocker creates an empty in-memory locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]chan struct{})}
}

// Acquire blocks up to timeout waiting for the named lock and returns
// ErrLockTimeout when the bound elapses.
func (l *MemoryLocker) Acquire(ctx context.Context, name string, timeout time.Duration) (Lock, error) {
	sem := l.semaphore(name)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		return &memoryLock{sem: sem}, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: lock %s after %s", ErrLockTimeout, name, timeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: lock %s: %v", ErrStorage, name, ctx.Err())
	}
}

// semaphore returns the capacity-one channel for the named lock, creating
// it on first use.
func (l *MemoryLocker) semaphore(name string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.locks[name]
	if !ok {
		sem = make(chan struct{}, 1)
		l.locks[name] = sem
	}
	return sem
}

// memoryLock wraps a held semaphore slot.
type memoryLock struct {
	sem  chan struct{}
	once sync.Once
}

// Release relinquishes the lock. Releasing twice is a no-op.
func (l *memoryLock) Release(ctx context.Context) error {
	l.once.Do(func() { <-l.sem })
	return nil
}
