package tasks

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(id string) Task {
	return Task{
		ID:          id,
		MessageID:   "msg-" + id,
		Subject:     "subject " + id,
		Description: "do something",
		Priority:    PriorityMedium,
		Status:      StatusPending,
		Notes:       []string{""},
		CreatedAt:   time.Now(),
	}
}

func TestMemoryStoreInsertAndGet(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Insert(newTask("a")))

	got, ok := store.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, StatusPending, got.Status)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestMemoryStoreInsertIsUpsert(t *testing.T) {
	store := NewMemoryStore()

	first := newTask("a")
	first.Description = "first"
	require.NoError(t, store.Insert(first))

	second := newTask("a")
	second.Description = "second"
	require.NoError(t, store.Insert(second))

	got, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, "second", got.Description)

	all, err := store.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryStoreMarkComplete(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Insert(newTask("a")))

	ok, err := store.MarkComplete("a")
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ := store.Get("a")
	assert.Equal(t, StatusCompleted, got.Status)

	// Completing an already-completed task is idempotent, not an error.
	ok, err = store.MarkComplete("a")
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ = store.Get("a")
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestMemoryStoreUnknownIDSafety(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Insert(newTask("a")))

	ok, err := store.MarkComplete("nope")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.AddNote("nope", "text")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := store.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, StatusPending, all[0].Status)
	assert.Equal(t, []string{""}, all[0].Notes)
}

func TestMemoryStoreNotesAppendOnly(t *testing.T) {
	store := NewMemoryStore()
	task := newTask("a")
	task.Notes = []string{"seed"}
	require.NoError(t, store.Insert(task))

	for i := 1; i <= 3; i++ {
		ok, err := store.AddNote("a", fmt.Sprintf("note %d", i))
		require.NoError(t, err)
		assert.True(t, ok)
	}

	got, _ := store.Get("a")
	assert.Equal(t, []string{"seed", "note 1", "note 2", "note 3"}, got.Notes)
}

func TestMemoryStoreListAllInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.Insert(newTask(id)))
	}

	all, err := store.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[1].ID)
	assert.Equal(t, "b", all[2].ID)
}

func TestMemoryStoreReturnedTasksAreCopies(t *testing.T) {
	store := NewMemoryStore()
	task := newTask("a")
	task.Notes = []string{"seed"}
	require.NoError(t, store.Insert(task))

	got, _ := store.Get("a")
	got.Notes[0] = "mutated"

	fresh, _ := store.Get("a")
	assert.Equal(t, []string{"seed"}, fresh.Notes)
}

func TestMemoryStoreConcurrentInserts(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Insert(newTask(fmt.Sprintf("task-%d", i)))
		}(i)
	}
	wg.Wait()

	all, err := store.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 50)
}
