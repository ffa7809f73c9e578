package task

import "context"

// Task type constants
const (
	// TaskTypePrimeComputation represents the task type for computing the
	// first n primes.
	TaskTypePrimeComputation = "prime_computation"
)

// Task represents a unit of background work to be processed.
type Task interface {
	// ID returns the request id this task was created for.
	ID() string

	// Type returns the task type identifier.
	Type() string

	// Execute runs the task logic. A returned error means the task reached
	// a failed terminal state; the worker pool counts it in its own failure
	// accounting even though the task has already recorded the failure.
	Execute(ctx context.Context) error
}

// QueueReader provides read-only access to the task channel, allowing
// workers to consume tasks without the ability to enqueue.
type QueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks.
	GetChannel() <-chan Task
}

// QueueWriter provides write access to the task queue, allowing services to
// enqueue tasks for processing.
type QueueWriter interface {
	// Enqueue adds a task to the queue for processing.
	// Returns an error if the queue is full or closed.
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission.
	Close()
}
