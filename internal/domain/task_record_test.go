package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskRecord(t *testing.T) {
	record, err := NewTaskRecord("abc123", 5)
	require.NoError(t, err)

	assert.Equal(t, "abc123", record.ID)
	assert.Equal(t, 5, record.N)
	assert.Equal(t, TaskStatusPending, record.Status)
	assert.Nil(t, record.Result)
	assert.Empty(t, record.Error)
}

func TestNewTaskRecordValidation(t *testing.T) {
	_, err := NewTaskRecord("", 5)
	assert.ErrorIs(t, err, ErrEmptyTaskID)

	_, err = NewTaskRecord("abc123", 0)
	assert.ErrorIs(t, err, ErrInvalidRequestCount)

	_, err = NewTaskRecord("abc123", -3)
	assert.ErrorIs(t, err, ErrInvalidRequestCount)
}

func TestTaskLifecycleTransitions(t *testing.T) {
	record, err := NewTaskRecord("abc123", 5)
	require.NoError(t, err)

	// pending -> done is not a legal edge
	assert.ErrorIs(t, record.UpdateStatus(TaskStatusDone), ErrInvalidTaskTransition)

	require.NoError(t, record.UpdateStatus(TaskStatusProcessing))
	assert.Equal(t, TaskStatusProcessing, record.Status)

	require.NoError(t, record.UpdateStatus(TaskStatusDone))
	assert.True(t, record.IsTerminal())

	// Terminal states are never left.
	assert.ErrorIs(t, record.UpdateStatus(TaskStatusPending), ErrInvalidTaskTransition)
	assert.ErrorIs(t, record.UpdateStatus(TaskStatusProcessing), ErrInvalidTaskTransition)
	assert.ErrorIs(t, record.UpdateStatus(TaskStatusFailed), ErrInvalidTaskTransition)
}

func TestTaskFailurePath(t *testing.T) {
	record, err := NewTaskRecord("abc123", 5)
	require.NoError(t, err)

	require.NoError(t, record.UpdateStatus(TaskStatusProcessing))
	require.NoError(t, record.UpdateStatus(TaskStatusFailed))
	assert.True(t, record.IsTerminal())
}

func TestProcessingClearsResultAndError(t *testing.T) {
	record, err := NewTaskRecord("abc123", 3)
	require.NoError(t, err)
	record.Result = []int64{2, 3, 5}
	record.Error = "leftover"

	require.NoError(t, record.UpdateStatus(TaskStatusProcessing))
	assert.Nil(t, record.Result)
	assert.Empty(t, record.Error)
}

func TestTaskRecordJSONShape(t *testing.T) {
	record := &TaskRecord{ID: "abc123", N: 3, Status: TaskStatusDone, Result: []int64{2, 3, 5}}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	// The ID lives in the store key, never in the value; error is omitted
	// when the task did not fail.
	assert.JSONEq(t, `{"n":3,"status":"done","result":[2,3,5]}`, string(data))

	pending := &TaskRecord{ID: "abc123", N: 3, Status: TaskStatusPending}
	data, err = json.Marshal(pending)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":3,"status":"pending","result":null}`, string(data))
}
