package domain

import "errors"

// TaskStatus represents the processing state of a submitted computation
// request.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusFailed     TaskStatus = "failed"
)

// Common validation errors for TaskRecord
var (
	ErrEmptyTaskID           = errors.New("task record ID cannot be empty")
	ErrInvalidRequestCount   = errors.New("requested count must be a positive integer")
	ErrInvalidTaskStatus     = errors.New("invalid task status")
	ErrInvalidTaskTransition = errors.New("invalid task status transition")
)

// TaskRecord is the asynchronous status/result envelope for one submitted
// computation request. It is created in pending state by the dispatcher,
// advanced to processing and then to exactly one terminal state by the
// worker, and expires out of the store after a fixed TTL.
//
// The JSON shape matches the persisted layout: the record ID lives in the
// store key, not the value.
type TaskRecord struct {
	ID     string     `json:"-"`
	N      int        `json:"n"`
	Status TaskStatus `json:"status"`
	Result []int64    `json:"result"`
	Error  string     `json:"error,omitempty"`
}

// NewTaskRecord creates a new pending TaskRecord for a request of the first
// n primes. Returns an error if validation fails.
func NewTaskRecord(id string, n int) (*TaskRecord, error) {
	record := &TaskRecord{
		ID:     id,
		N:      n,
		Status: TaskStatusPending,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the TaskRecord has valid data.
// Returns an error if any field fails validation.
func (r *TaskRecord) Validate() error {
	if r.ID == "" {
		return ErrEmptyTaskID
	}

	if r.N <= 0 {
		return ErrInvalidRequestCount
	}

	if !isValidTaskStatus(r.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

// UpdateStatus advances the record's status, enforcing the task lifecycle:
// pending -> processing -> {done|failed}. Terminal states are never left,
// and no edge re-enters pending.
func (r *TaskRecord) UpdateStatus(status TaskStatus) error {
	if !isValidTaskStatus(status) {
		return ErrInvalidTaskStatus
	}

	if !canTransition(r.Status, status) {
		return ErrInvalidTaskTransition
	}

	r.Status = status

	// Entering processing clears any stale result or error.
	if status == TaskStatusProcessing {
		r.Result = nil
		r.Error = ""
	}

	return nil
}

// IsTerminal reports whether the record has reached a final state.
func (r *TaskRecord) IsTerminal() bool {
	return r.Status == TaskStatusDone || r.Status == TaskStatusFailed
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusDone, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// canTransition reports whether the task lifecycle allows moving from one
// status to another.
func canTransition(from, to TaskStatus) bool {
	switch from {
	case TaskStatusPending:
		return to == TaskStatusProcessing
	case TaskStatusProcessing:
		return to == TaskStatusDone || to == TaskStatusFailed
	default:
		return false
	}
}
