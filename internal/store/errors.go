package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store, including keys whose TTL has elapsed.
	ErrNotFound = errors.New("entity not found")

	// ErrStorage is returned when the underlying key-value store is
	// unreachable or an operation against it fails. It is non-fatal to the
	// process, fatal to the current operation.
	ErrStorage = errors.New("storage error")

	// ErrLockTimeout is returned when a mutual-exclusion lock could not be
	// acquired within the configured bound. Callers should retry or fail the
	// surrounding task rather than wait indefinitely.
	ErrLockTimeout = errors.New("lock acquisition timed out")

	// ErrTaskNotFound indicates that the requested task record does not
	// exist in the store or has expired.
	ErrTaskNotFound = fmt.Errorf("%w: task record", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with
// additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "task record", "prime cache")
	Operation string // The operation that failed (e.g., "create", "load")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation,
// message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
