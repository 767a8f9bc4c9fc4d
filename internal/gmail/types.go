package gmail

import "time"

const (
	// MaxBodyLength bounds the decoded body carried into extraction so
	// prompts stay within downstream size limits.
	MaxBodyLength = 2000

	// DefaultMaxResults is the default number of unread messages fetched
	// per refresh run.
	DefaultMaxResults = 20
)

// Message holds the decoded fields of one unread email for the duration of a
// single pipeline run. It is never persisted.
type Message struct {
	ID      string
	Subject string
	From    string
	Date    time.Time
	Body    string
}
