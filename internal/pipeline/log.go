package pipeline

import (
	"sync"
	"time"
)

// Outcome values for execution log entries.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// ExecutionLogEntry records the outcome of one refresh run.
type ExecutionLogEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	EmailsChecked  int       `json:"emails_checked"`
	TasksExtracted int       `json:"tasks_extracted"`
	Outcome        string    `json:"outcome"`
	Error          string    `json:"error,omitempty"`
}

// ExecutionLog is an append-only record of refresh runs. Every run appends
// exactly one entry, so failures remain visible after the fact.
type ExecutionLog interface {
	// Append adds an entry at the end of the log.
	Append(entry ExecutionLogEntry)

	// Entries returns all entries in append order, oldest first.
	Entries() []ExecutionLogEntry
}

// MemoryLog is an in-memory ExecutionLog. It is safe for concurrent use.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []ExecutionLogEntry
}

// NewMemoryLog creates an empty in-memory execution log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append adds an entry at the end of the log.
func (l *MemoryLog) Append(entry ExecutionLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
}

// Entries returns a copy of all entries in append order.
func (l *MemoryLog) Entries() []ExecutionLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]ExecutionLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
