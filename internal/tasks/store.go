package tasks

import "sync"

// Store is the keyed collection of task records. Insert is an upsert by task
// ID. Operations on a missing ID report absence through their return values
// rather than failing; absence is an ordinary outcome for this surface.
type Store interface {
	// Insert adds or replaces the record at its identifier.
	Insert(task Task) error

	// Get returns the task and whether it exists.
	Get(id string) (Task, bool)

	// MarkComplete transitions the task to completed. It reports false if the
	// ID does not exist. Completing an already-completed task succeeds.
	MarkComplete(id string) (bool, error)

	// AddNote appends a note to the task's notes sequence. It reports false
	// if the ID does not exist.
	AddNote(id, text string) (bool, error)

	// ListAll enumerates every task. Order is insertion order.
	ListAll() ([]Task, error)
}

// MemoryStore is an in-memory Store safe for concurrent use. Runs that
// overlap share it without interleaving destructively: every write holds the
// lock and inserts are keyed upserts.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]Task
	order []string
}

// NewMemoryStore creates an empty in-memory task store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]Task),
	}
}

// Insert adds or replaces the record at its identifier.
func (s *MemoryStore) Insert(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[task.ID]; !exists {
		s.order = append(s.order, task.ID)
	}
	s.byID[task.ID] = cloneTask(task)
	return nil
}

// Get returns the task and whether it exists.
func (s *MemoryStore) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.byID[id]
	if !ok {
		return Task{}, false
	}
	return cloneTask(task), true
}

// MarkComplete transitions the task to completed if the ID exists.
func (s *MemoryStore) MarkComplete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	task.Status = StatusCompleted
	s.byID[id] = task
	return true, nil
}

// AddNote appends to the task's notes sequence if the ID exists.
func (s *MemoryStore) AddNote(id, text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	task.Notes = append(task.Notes, text)
	s.byID[id] = task
	return true, nil
}

// ListAll enumerates every task in insertion order.
func (s *MemoryStore) ListAll() ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Task, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, cloneTask(s.byID[id]))
	}
	return all, nil
}

// cloneTask copies a task so callers cannot alias the stored notes slice.
func cloneTask(t Task) Task {
	t.Notes = append([]string(nil), t.Notes...)
	return t
}
