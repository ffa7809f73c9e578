package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolProcessesTasks(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 3}, setupTestLogger(), nil)

	var executed atomic.Int32
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		task := newMockTask("task")
		task.execFn = func(ctx context.Context) error {
			if executed.Add(1) == 5 {
				close(done)
			}
			return nil
		}
		require.NoError(t, queue.Enqueue(task))
	}

	pool.Start()
	defer pool.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tasks to execute")
	}

	assert.Equal(t, int32(5), executed.Load())
}

func TestWorkerPoolInvokesErrorHandler(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger(), nil)

	execErr := errors.New("boom")
	failing := newMockTask("failing")
	failing.execFn = func(ctx context.Context) error { return execErr }

	handled := make(chan error, 1)
	pool.SetErrorHandler(func(task Task, err error) {
		handled <- err
	})

	require.NoError(t, queue.Enqueue(failing))
	pool.Start()
	defer pool.Stop()

	select {
	case err := <-handled:
		assert.ErrorIs(t, err, execErr)
	case <-time.After(2 * time.Second):
		t.Fatal("error handler was never invoked")
	}
}

func TestWorkerPoolStopWaitsForWorkers(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 2}, setupTestLogger(), nil)

	started := make(chan struct{})
	var finished atomic.Bool
	slow := newMockTask("slow")
	slow.execFn = func(ctx context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	}

	require.NoError(t, queue.Enqueue(slow))
	pool.Start()

	<-started
	pool.Stop()

	assert.True(t, finished.Load(), "Stop must wait for the in-flight task")
}

func TestWorkerPoolDrainsAfterQueueClose(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 2}, setupTestLogger(), nil)

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	wg.Add(3)
	for _, id := range []string{"a", "b", "c"} {
		task := newMockTask(id)
		taskID := id
		task.execFn = func(ctx context.Context) error {
			mu.Lock()
			seen[taskID] = true
			mu.Unlock()
			wg.Done()
			return nil
		}
		require.NoError(t, queue.Enqueue(task))
	}

	queue.Close()
	pool.Start()
	defer pool.Stop()

	waitDone := make(chan struct{})
	go func() { wg.Wait(); close(waitDone) }()

	select {
	case <-waitDone:
	case <-time.After(2 * time.Second):
		t.Fatal("buffered tasks were not drained after close")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 3)
}

func TestWorkerPoolDefaultsInvalidWorkerCount(t *testing.T) {
	queue := NewTaskQueue(1, setupTestLogger())
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: -1}, setupTestLogger(), nil)

	assert.Equal(t, 1, pool.workerCount)
}
