package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gtasks "google.golang.org/api/tasks/v1"
)

func TestGoogleTaskRoundTrip(t *testing.T) {
	task := Task{
		ID:          "msg-9:task",
		MessageID:   "msg-9",
		Subject:     "Budget approval",
		Description: "Approve the Q2 budget",
		From:        "cfo@example.com",
		Priority:    PriorityHigh,
		DueDate:     "2025-04-01",
		Status:      StatusPending,
		Notes:       []string{"from the budget thread", "ping finance"},
		CreatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	gt := toGoogleTask(task)
	assert.Equal(t, "Approve the Q2 budget", gt.Title)
	assert.Equal(t, "needsAction", gt.Status)
	assert.NotEmpty(t, gt.Due)

	back, ok := fromGoogleTask(gt)
	require.True(t, ok)
	assert.Equal(t, task, back)
}

func TestGoogleTaskCompletedStatusMapping(t *testing.T) {
	task := newTask("done")
	task.Status = StatusCompleted

	gt := toGoogleTask(task)
	assert.Equal(t, "completed", gt.Status)

	back, ok := fromGoogleTask(gt)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, back.Status)
}

func TestFromGoogleTaskSkipsForeignTasks(t *testing.T) {
	// A task created by hand in the same list has no envelope payload.
	_, ok := fromGoogleTask(&gtasks.Task{Title: "buy milk", Notes: "from the store"})
	assert.False(t, ok)

	_, ok = fromGoogleTask(&gtasks.Task{Title: "empty notes"})
	assert.False(t, ok)
}
