package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/prime-api/internal/domain"
)

const (
	// taskKeyPrefix namespaces task record keys in the shared store.
	taskKeyPrefix = "request:"

	// recordTTL is the fixed time-to-live of a task record. Every status
	// write resets it. The TTL is deliberately not refreshed while a task is
	// in the processing phase, so a computation that outlives the TTL can be
	// observed as not-found by pollers before its terminal write lands. That
	// staleness window is accepted, bounded behavior.
	recordTTL = 600 * time.Second
)

// TaskRecordStore persists per-request task records keyed by request id.
// Different request ids never contend; the only cross-request shared state
// in the system is the prime cache.
type TaskRecordStore interface {
	// Create writes a fresh pending record for a request of the first n
	// primes.
	Create(ctx context.Context, id string, n int) error

	// SetStatus advances the record to the given status with the given
	// result and error message, resetting the TTL. The task lifecycle is
	// enforced against the stored record: a write that is not a valid
	// transition fails with domain.ErrInvalidTaskTransition and leaves the
	// record untouched. A record that expired mid-flight is recreated at
	// the given status so the outcome stays observable for a fresh TTL.
	SetStatus(ctx context.Context, id string, n int, status domain.TaskStatus, result []int64, errMsg string) error

	// Get returns the record stored under id, or ErrTaskNotFound if the id
	// is unknown or the record has expired.
	Get(ctx context.Context, id string) (*domain.TaskRecord, error)

	// ListIDs returns the ids of all live task records. Read-side
	// observability only.
	ListIDs(ctx context.Context) ([]string, error)
}

// kvTaskStore implements TaskRecordStore over a KV store with one
// JSON-encoded value per request id.
type kvTaskStore struct {
	kv KV
}

// NewTaskRecordStore creates a TaskRecordStore backed by the given KV store.
func NewTaskRecordStore(kv KV) TaskRecordStore {
	return &kvTaskStore{kv: kv}
}

func (s *kvTaskStore) Create(ctx context.Context, id string, n int) error {
	record, err := domain.NewTaskRecord(id, n)
	if err != nil {
		return fmt.Errorf("create task record: %w", err)
	}
	return s.write(ctx, record)
}

func (s *kvTaskStore) SetStatus(
	ctx context.Context,
	id string,
	n int,
	status domain.TaskStatus,
	result []int64,
	errMsg string,
) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrTaskNotFound) {
			return err
		}

		// The record expired between writes. Recreate it at the requested
		// status so the outcome remains observable for a fresh TTL.
		record = &domain.TaskRecord{
			ID:     id,
			N:      n,
			Status: status,
			Result: result,
			Error:  errMsg,
		}
		if err := record.Validate(); err != nil {
			return fmt.Errorf("set task status: %w", err)
		}
		return s.write(ctx, record)
	}

	from := record.Status
	if err := record.UpdateStatus(status); err != nil {
		return fmt.Errorf("set task status %s -> %s: %w", from, status, err)
	}
	record.N = n
	record.Result = result
	record.Error = errMsg

	return s.write(ctx, record)
}

func (s *kvTaskStore) Get(ctx context.Context, id string) (*domain.TaskRecord, error) {
	value, err := s.kv.Get(ctx, taskKeyPrefix+id)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return nil, NewStoreError("task record", "get", id, err)
	}

	var record domain.TaskRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, NewStoreError("task record", "get", "corrupt record data", err)
	}
	record.ID = id

	return &record, nil
}

func (s *kvTaskStore) ListIDs(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx, taskKeyPrefix+"*")
	if err != nil {
		return nil, NewStoreError("task record", "list", "keys scan", err)
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, taskKeyPrefix))
	}
	return ids, nil
}

// write JSON-encodes the record and stores it with a fresh TTL.
func (s *kvTaskStore) write(ctx context.Context, record *domain.TaskRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return NewStoreError("task record", "write", record.ID, err)
	}

	if err := s.kv.SetEx(ctx, taskKeyPrefix+record.ID, string(data), recordTTL); err != nil {
		return NewStoreError("task record", "write", record.ID, err)
	}
	return nil
}
