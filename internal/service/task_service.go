// Package service contains the application services that sit between the
// HTTP handlers and the stores.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/prime-api/internal/domain"
	"github.com/phrazzld/prime-api/internal/metrics"
	"github.com/phrazzld/prime-api/internal/store"
	"github.com/phrazzld/prime-api/internal/task"
)

// TaskService is the dispatcher for prime computation requests: it creates
// the task record and hands the work to the queue, returning before any
// computation happens. It also serves status queries.
type TaskService struct {
	records store.TaskRecordStore
	queue   task.QueueWriter
	cache   task.SequenceEnsurer
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewTaskService creates a TaskService.
func NewTaskService(
	records store.TaskRecordStore,
	queue task.QueueWriter,
	cache task.SequenceEnsurer,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *TaskService {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &TaskService{
		records: records,
		queue:   queue,
		cache:   cache,
		logger:  logger,
		metrics: recorder,
	}
}

// Submit accepts a request for the first n primes. It durably creates a
// pending task record, enqueues the computation, and returns the request id
// without waiting for completion.
//
// If enqueueing fails after the record was created, the record stays pending
// until its TTL expires. That ghost record is an accepted consequence of the
// non-atomic create-then-enqueue sequence; the error is still returned so
// the caller does not poll a task that will never run.
func (s *TaskService) Submit(ctx context.Context, n int) (string, error) {
	if n <= 0 {
		return "", domain.ErrInvalidRequestCount
	}

	requestID := newRequestID()

	if err := s.records.Create(ctx, requestID, n); err != nil {
		return "", fmt.Errorf("create task record: %w", err)
	}

	t, err := task.NewPrimeComputationTask(requestID, n, s.records, s.cache, s.logger)
	if err != nil {
		return "", fmt.Errorf("build computation task: %w", err)
	}

	if err := s.queue.Enqueue(t); err != nil {
		s.logger.Error("failed to enqueue task, pending record will expire",
			"request_id", requestID,
			"n", n,
			"error", err)
		return "", fmt.Errorf("enqueue task: %w", err)
	}

	s.metrics.IncTasksSubmitted()
	s.logger.Info("task submitted", "request_id", requestID, "n", n)

	return requestID, nil
}

// GetTask returns the task record for a request id, or store.ErrTaskNotFound
// if the id is unknown or the record's TTL has elapsed.
func (s *TaskService) GetTask(ctx context.Context, requestID string) (*domain.TaskRecord, error) {
	return s.records.Get(ctx, requestID)
}

// ListTaskIDs returns the ids of all live task records. Read-side
// observability only; nothing in the computation path depends on it.
func (s *TaskService) ListTaskIDs(ctx context.Context) ([]string, error) {
	return s.records.ListIDs(ctx)
}

// newRequestID generates an opaque 32-character hex request id.
func newRequestID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
