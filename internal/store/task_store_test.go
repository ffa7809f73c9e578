package store

import (
	"context"
	"testing"

	"github.com/phrazzld/prime-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRecordStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	tasks := NewTaskRecordStore(kv)

	require.NoError(t, tasks.Create(ctx, "abc123", 5))

	record, err := tasks.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", record.ID)
	assert.Equal(t, 5, record.N)
	assert.Equal(t, domain.TaskStatusPending, record.Status)
	assert.Nil(t, record.Result)
}

func TestTaskRecordStoreCreateValidates(t *testing.T) {
	ctx := context.Background()
	tasks := NewTaskRecordStore(NewMemoryKV())

	err := tasks.Create(ctx, "abc123", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRequestCount)

	err = tasks.Create(ctx, "", 5)
	assert.ErrorIs(t, err, domain.ErrEmptyTaskID)
}

func TestTaskRecordStoreGetUnknown(t *testing.T) {
	ctx := context.Background()
	tasks := NewTaskRecordStore(NewMemoryKV())

	_, err := tasks.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRecordStoreStatusTransitions(t *testing.T) {
	ctx := context.Background()
	tasks := NewTaskRecordStore(NewMemoryKV())

	require.NoError(t, tasks.Create(ctx, "abc123", 5))

	require.NoError(t, tasks.SetStatus(ctx, "abc123", 5, domain.TaskStatusProcessing, nil, ""))
	record, err := tasks.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusProcessing, record.Status)

	primes := []int64{2, 3, 5, 7, 11}
	require.NoError(t, tasks.SetStatus(ctx, "abc123", 5, domain.TaskStatusDone, primes, ""))
	record, err = tasks.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, record.Status)
	assert.Equal(t, primes, record.Result)
	assert.Empty(t, record.Error)
}

func TestTaskRecordStoreFailureStatus(t *testing.T) {
	ctx := context.Background()
	tasks := NewTaskRecordStore(NewMemoryKV())

	require.NoError(t, tasks.Create(ctx, "abc123", 5))
	require.NoError(t, tasks.SetStatus(ctx, "abc123", 5, domain.TaskStatusProcessing, nil, ""))
	require.NoError(t,
		tasks.SetStatus(ctx, "abc123", 5, domain.TaskStatusFailed, nil, "lock acquisition timed out"))

	record, err := tasks.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, record.Status)
	assert.Nil(t, record.Result)
	assert.Contains(t, record.Error, "lock")
}

func TestTaskRecordStoreRejectsInvalidTransitions(t *testing.T) {
	ctx := context.Background()
	tasks := NewTaskRecordStore(NewMemoryKV())

	require.NoError(t, tasks.Create(ctx, "abc123", 5))

	// Skipping processing is not a valid edge.
	err := tasks.SetStatus(ctx, "abc123", 5, domain.TaskStatusDone, []int64{2, 3, 5, 7, 11}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTaskTransition)

	require.NoError(t, tasks.SetStatus(ctx, "abc123", 5, domain.TaskStatusProcessing, nil, ""))
	primes := []int64{2, 3, 5, 7, 11}
	require.NoError(t, tasks.SetStatus(ctx, "abc123", 5, domain.TaskStatusDone, primes, ""))

	// Terminal records never move, and never re-enter pending.
	err = tasks.SetStatus(ctx, "abc123", 5, domain.TaskStatusPending, nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTaskTransition)
	err = tasks.SetStatus(ctx, "abc123", 5, domain.TaskStatusProcessing, nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTaskTransition)

	// The rejected writes left the stored record untouched.
	record, err := tasks.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, record.Status)
	assert.Equal(t, primes, record.Result)
}

func TestTaskRecordStoreRecreatesExpiredRecord(t *testing.T) {
	ctx := context.Background()
	tasks := NewTaskRecordStore(NewMemoryKV())

	// No Create: the record has expired out of the store mid-computation.
	primes := []int64{2, 3, 5}
	require.NoError(t, tasks.SetStatus(ctx, "expired1", 3, domain.TaskStatusDone, primes, ""))

	record, err := tasks.Get(ctx, "expired1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, record.Status)
	assert.Equal(t, primes, record.Result)
}

func TestTaskRecordStoreCorruptData(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	tasks := NewTaskRecordStore(kv)

	require.NoError(t, kv.Set(ctx, "request:bad", "{not json"))

	_, err := tasks.Get(ctx, "bad")
	require.Error(t, err)
	assert.False(t, IsNotFoundError(err), "corrupt data is not a not-found outcome")
}

func TestTaskRecordStoreListIDs(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	tasks := NewTaskRecordStore(kv)

	require.NoError(t, tasks.Create(ctx, "a", 1))
	require.NoError(t, tasks.Create(ctx, "b", 2))

	// Unrelated keys must not show up as task ids.
	require.NoError(t, kv.Set(ctx, "primes:current", "[2,3]"))

	ids, err := tasks.ListIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}
