package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/prime-api/internal/metrics"
)

// WorkerPool manages a pool of worker goroutines that process tasks from a
// task queue. It handles graceful shutdown and worker lifecycle. Task-level
// failures are already recorded by the task itself; the pool additionally
// routes them through its error handler and failure metrics so operational
// accounting observes every failure.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue QueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is used for cancellation and shutdown signaling
	ctx context.Context

	// cancel is the function to call to cancel the context
	cancel context.CancelFunc

	logger  *slog.Logger
	metrics metrics.Recorder

	// errorHandler is called when a task execution fails.
	// If nil, errors are only logged and counted.
	errorHandler func(task Task, err error)
}

// WorkerPoolConfig holds configuration options for the worker pool.
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start.
	// If zero or negative, defaults to 1.
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration.
func NewWorkerPool(
	taskQueue QueueReader,
	config WorkerPoolConfig,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
		metrics:     recorder,
	}
}

// SetErrorHandler allows setting a custom error handler for task execution
// failures.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines.
func (p *WorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.logger.Info("worker pool started", "worker_count", p.workerCount)
}

// Stop signals all workers to stop and waits for them to finish their
// current task.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// worker consumes tasks from the queue until shutdown or queue close.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case t, ok := <-p.taskQueue.GetChannel():
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			p.processTask(t, id)
		}
	}
}

// processTask executes a single task and routes the outcome into logging,
// metrics, and the optional error handler.
func (p *WorkerPool) processTask(t Task, workerID int) {
	logger := p.logger.With(
		"task_id", t.ID(),
		"task_type", t.Type(),
		"worker_id", workerID,
	)

	p.metrics.IncTasksActive()
	defer p.metrics.DecTasksActive()

	logger.Info("processing task")

	if err := t.Execute(p.ctx); err != nil {
		logger.Error("task execution failed", "error", err)
		p.metrics.IncTasksFailed(failureReason(err))

		if p.errorHandler != nil {
			p.errorHandler(t, err)
		}
		return
	}

	logger.Info("task completed")
	p.metrics.IncTasksCompleted()
}
