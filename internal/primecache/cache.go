// Package primecache owns the shared, progressively extended prefix of the
// prime sequence. Concurrent requests for overlapping prefixes collapse into
// a single forward-moving extension: every extension runs under one named
// mutual-exclusion lock, and whoever acquires the lock after a completed
// extension observes the advanced watermark and skips the work already done.
package primecache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/prime-api/internal/metrics"
	"github.com/phrazzld/prime-api/internal/primegen"
	"github.com/phrazzld/prime-api/internal/store"
)

// Store is the persistence consumed by the cache: the item list plus the
// watermark, with no locking of its own. Mutation happens only inside the
// cache's critical section.
type Store interface {
	// Load returns the cached items and the watermark. Corrupt stored data
	// decodes to an empty cache, never an error. The returned watermark
	// never exceeds len(items).
	Load(ctx context.Context) (items []int64, watermark int, err error)

	// SaveItems persists the full item list.
	SaveItems(ctx context.Context, items []int64) error

	// AdvanceWatermark raises the watermark to n if larger than the current
	// value, never lowering it.
	AdvanceWatermark(ctx context.Context, n int) error
}

// Config holds the cache's tunables.
type Config struct {
	// LockName is the named lock guarding all cache mutation.
	LockName string

	// LockTimeout bounds lock acquisition. Exceeding it fails the current
	// call with store.ErrLockTimeout rather than waiting indefinitely.
	LockTimeout time.Duration

	// PersistBatch is how many new primes are generated between periodic
	// persists, bounding lost work on crash to one batch.
	PersistBatch int

	// ComputeDelay is an artificial delay applied once per cache miss
	// before generation starts, emulating a long-running job. It runs
	// inside the critical section, matching the reference behavior: other
	// extenders of the cache queue behind it. Zero disables it.
	ComputeDelay time.Duration
}

// DefaultConfig returns a Config with the standard lock name and bounds.
func DefaultConfig() Config {
	return Config{
		LockName:     "primes:lock",
		LockTimeout:  30 * time.Second,
		PersistBatch: 100,
	}
}

// Cache provides Ensure over the shared prime prefix.
type Cache struct {
	store   Store
	locker  store.Locker
	config  Config
	logger  *slog.Logger
	metrics metrics.Recorder
}

// New creates a Cache. Zero config fields fall back to DefaultConfig values.
func New(
	st Store,
	locker store.Locker,
	config Config,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *Cache {
	defaults := DefaultConfig()
	if config.LockName == "" {
		config.LockName = defaults.LockName
	}
	if config.LockTimeout <= 0 {
		config.LockTimeout = defaults.LockTimeout
	}
	if config.PersistBatch <= 0 {
		config.PersistBatch = defaults.PersistBatch
	}
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}

	return &Cache{
		store:   st,
		locker:  locker,
		config:  config,
		logger:  logger,
		metrics: recorder,
	}
}

// Ensure returns the first n primes, extending the shared cache if it does
// not cover n yet. The whole call runs inside the cache's named lock; among
// concurrent callers, lock-acquisition order determines who does the
// necessary generation work and who gets a cache hit off the advanced
// watermark.
//
// Failure modes: store.ErrLockTimeout when the lock bound elapses,
// store.ErrStorage when the key-value store fails. Both fail this call only,
// never the process, and neither moves the watermark backwards.
func (c *Cache) Ensure(ctx context.Context, n int) ([]int64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("requested count must be positive, got %d", n)
	}

	started := time.Now()
	defer func() {
		c.metrics.ObserveEnsureDuration(time.Since(started).Seconds())
	}()

	lock, err := c.locker.Acquire(ctx, c.config.LockName, c.config.LockTimeout)
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	defer func() {
		if releaseErr := lock.Release(ctx); releaseErr != nil {
			c.logger.Warn("failed to release cache lock", "error", releaseErr)
		}
	}()

	items, watermark, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}

	if watermark >= n {
		c.metrics.IncCacheHit()
		c.logger.Info("cache hit",
			"requested", n,
			"watermark", watermark)
		return prefix(items, n), nil
	}

	c.metrics.IncCacheMiss()
	items, err = c.extend(ctx, items, n)
	if err != nil {
		return nil, err
	}

	if err := c.store.AdvanceWatermark(ctx, n); err != nil {
		return nil, fmt.Errorf("advance watermark: %w", err)
	}
	c.metrics.SetCacheWatermark(float64(n))

	return prefix(items, n), nil
}

// extend resumes generation from the last cached item until the prefix
// covers n, persisting after every PersistBatch new primes and once more at
// the end. Called with the lock held.
func (c *Cache) extend(ctx context.Context, items []int64, n int) ([]int64, error) {
	c.logger.Info("cache miss, extending",
		"requested", n,
		"cached", len(items))

	if c.config.ComputeDelay > 0 {
		c.logger.Info("applying compute delay", "delay", c.config.ComputeDelay)
		select {
		case <-time.After(c.config.ComputeDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("cache extension canceled: %w", ctx.Err())
		}
	}

	gen := primegen.Resume(items)
	sinceLastPersist := 0

	for gen.Count() < n {
		gen.Next()

		sinceLastPersist++
		if sinceLastPersist == c.config.PersistBatch {
			if err := c.store.SaveItems(ctx, gen.Items()); err != nil {
				return nil, fmt.Errorf("persist progress: %w", err)
			}
			sinceLastPersist = 0
			c.logger.Debug("persisted progress", "count", gen.Count())
		}
	}

	if err := c.store.SaveItems(ctx, gen.Items()); err != nil {
		return nil, fmt.Errorf("persist final items: %w", err)
	}

	c.logger.Info("cache extension finished", "count", gen.Count())
	return gen.Items(), nil
}

// prefix returns a copy of the first n items so callers never alias the
// cached slice.
func prefix(items []int64, n int) []int64 {
	return append([]int64(nil), items[:n]...)
}
