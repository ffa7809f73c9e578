package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
)

const (
	// primeItemsKey holds the JSON-encoded ordered list of cached primes.
	primeItemsKey = "primes:current"

	// primeWatermarkKey holds the string-encoded count of primes guaranteed
	// fully computed.
	primeWatermarkKey = "primes:watermark"
)

// PrimeCacheStore persists the shared prime cache: the growing item list and
// the watermark. It performs no locking of its own; callers mutate it only
// inside the critical section guarded by the cache's named lock.
type PrimeCacheStore struct {
	kv     KV
	logger *slog.Logger
}

// NewPrimeCacheStore creates a PrimeCacheStore backed by the given KV store.
func NewPrimeCacheStore(kv KV, logger *slog.Logger) *PrimeCacheStore {
	return &PrimeCacheStore{kv: kv, logger: logger}
}

// Load returns the cached items and the watermark. Corrupt or missing data
// decodes to an empty cache rather than failing: the cache is always
// recomputable, so repair-by-reset beats propagating a decode error. A
// watermark larger than the item list is clamped, since items beyond the
// list cannot be served.
func (s *PrimeCacheStore) Load(ctx context.Context) ([]int64, int, error) {
	items, err := s.loadItems(ctx)
	if err != nil {
		return nil, 0, err
	}

	watermark, err := s.loadWatermark(ctx)
	if err != nil {
		return nil, 0, err
	}

	if watermark > len(items) {
		s.logger.Warn("watermark exceeds cached item count, clamping",
			"watermark", watermark,
			"item_count", len(items))
		watermark = len(items)
	}

	return items, watermark, nil
}

// SaveItems persists the full item list. Called periodically during
// generation so a crash loses at most one batch of work.
func (s *PrimeCacheStore) SaveItems(ctx context.Context, items []int64) error {
	data, err := json.Marshal(items)
	if err != nil {
		return NewStoreError("prime cache", "save", "encode items", err)
	}

	if err := s.kv.Set(ctx, primeItemsKey, string(data)); err != nil {
		return NewStoreError("prime cache", "save", "write items", err)
	}
	return nil
}

// AdvanceWatermark raises the stored watermark to n if n is larger than the
// current value. The max semantics keep the watermark monotonically
// non-decreasing even if a lock-implementation bug ever let two writers
// race here.
func (s *PrimeCacheStore) AdvanceWatermark(ctx context.Context, n int) error {
	current, err := s.loadWatermark(ctx)
	if err != nil {
		return err
	}

	if n <= current {
		return nil
	}

	if err := s.kv.Set(ctx, primeWatermarkKey, strconv.Itoa(n)); err != nil {
		return NewStoreError("prime cache", "advance", "write watermark", err)
	}
	return nil
}

func (s *PrimeCacheStore) loadItems(ctx context.Context) ([]int64, error) {
	value, err := s.kv.Get(ctx, primeItemsKey)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, nil
		}
		return nil, NewStoreError("prime cache", "load", "read items", err)
	}

	var items []int64
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		s.logger.Warn("corrupt prime cache data, treating as empty", "error", err)
		return nil, nil
	}
	return items, nil
}

func (s *PrimeCacheStore) loadWatermark(ctx context.Context) (int, error) {
	value, err := s.kv.Get(ctx, primeWatermarkKey)
	if err != nil {
		if IsNotFoundError(err) {
			return 0, nil
		}
		return 0, NewStoreError("prime cache", "load", "read watermark", err)
	}

	watermark, err := strconv.Atoi(value)
	if err != nil || watermark < 0 {
		s.logger.Warn("corrupt watermark value, treating as zero", "value", value)
		return 0, nil
	}
	return watermark, nil
}
