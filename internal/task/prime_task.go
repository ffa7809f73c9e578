package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/prime-api/internal/domain"
	"github.com/phrazzld/prime-api/internal/store"
)

// Common errors
var (
	ErrNilRecordStore = errors.New("task record store cannot be nil")
	ErrNilEnsurer     = errors.New("sequence ensurer cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
	ErrEmptyRequestID = errors.New("request ID cannot be empty")
)

// SequenceEnsurer is the prime cache capability the task consumes.
type SequenceEnsurer interface {
	// Ensure returns the first n primes, extending the shared cache if
	// needed.
	Ensure(ctx context.Context, n int) ([]int64, error)
}

// PrimeComputationTask implements the Task interface for one submitted
// computation request. Execute drives the record through its lifecycle:
// processing, then exactly one terminal status. A failure is written to the
// record AND returned, so the worker pool's failure accounting sees it too.
type PrimeComputationTask struct {
	requestID string
	n         int
	records   store.TaskRecordStore
	cache     SequenceEnsurer
	logger    *slog.Logger
}

// NewPrimeComputationTask creates a new prime computation task for the given
// request.
func NewPrimeComputationTask(
	requestID string,
	n int,
	records store.TaskRecordStore,
	cache SequenceEnsurer,
	logger *slog.Logger,
) (*PrimeComputationTask, error) {
	if records == nil {
		return nil, ErrNilRecordStore
	}
	if cache == nil {
		return nil, ErrNilEnsurer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if requestID == "" {
		return nil, ErrEmptyRequestID
	}
	if n <= 0 {
		return nil, domain.ErrInvalidRequestCount
	}

	return &PrimeComputationTask{
		requestID: requestID,
		n:         n,
		records:   records,
		cache:     cache,
		logger:    logger.With("task_type", TaskTypePrimeComputation, "request_id", requestID),
	}, nil
}

// ID returns the request id this task was created for.
func (t *PrimeComputationTask) ID() string {
	return t.requestID
}

// Type returns the task type identifier.
func (t *PrimeComputationTask) Type() string {
	return TaskTypePrimeComputation
}

// Execute runs the computation: mark the record processing, ensure the first
// n primes, then write exactly one terminal status. No intermediate state is
// visible to readers between processing and the terminal write.
func (t *PrimeComputationTask) Execute(ctx context.Context) error {
	if err := t.records.SetStatus(ctx, t.requestID, t.n, domain.TaskStatusProcessing, nil, ""); err != nil {
		return fmt.Errorf("mark task processing: %w", err)
	}

	primes, err := t.cache.Ensure(ctx, t.n)
	if err != nil {
		t.logger.Error("prime computation failed", "n", t.n, "error", err)

		failMsg := err.Error()
		if writeErr := t.records.SetStatus(ctx, t.requestID, t.n, domain.TaskStatusFailed, nil, failMsg); writeErr != nil {
			t.logger.Error("failed to record task failure", "error", writeErr)
		}

		// The failure is recorded; returning it keeps the worker pool's
		// failure accounting accurate as well.
		return fmt.Errorf("compute first %d primes: %w", t.n, err)
	}

	if err := t.records.SetStatus(ctx, t.requestID, t.n, domain.TaskStatusDone, primes, ""); err != nil {
		return fmt.Errorf("record task result: %w", err)
	}

	t.logger.Info("task done", "n", t.n)
	return nil
}

// failureReason buckets an execution error for failure metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, store.ErrLockTimeout):
		return "lock_timeout"
	case errors.Is(err, store.ErrStorage):
		return "storage"
	default:
		return "compute"
	}
}
