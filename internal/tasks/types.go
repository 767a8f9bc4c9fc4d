package tasks

import "time"

// Task priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Task statuses. A task only ever moves pending → completed.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Task is an actionable item extracted from an email message.
type Task struct {
	ID          string    `json:"id"`
	MessageID   string    `json:"messageId"` // source message, immutable after creation
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	From        string    `json:"from"`
	Priority    string    `json:"priority"` // high, medium or low
	DueDate     string    `json:"dueDate,omitempty"`
	Status      string    `json:"status"`
	Notes       []string  `json:"notes"` // append-only
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}
