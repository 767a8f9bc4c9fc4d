package pipeline

// State identifies the stage a refresh run is in. A run moves through
// fetching_messages, extracting_tasks, and persisting before settling on
// succeeded or failed.
type State string

const (
	StateIdle             State = "idle"
	StateFetchingMessages State = "fetching_messages"
	StateExtractingTasks  State = "extracting_tasks"
	StatePersisting       State = "persisting"
	StateSucceeded        State = "succeeded"
	StateFailed           State = "failed"
)

// RunResult summarizes a single refresh run.
type RunResult struct {
	// State is the terminal state of the run, succeeded or failed.
	State State

	// EmailsChecked is the number of unread messages examined, including
	// messages the promotional filter skipped.
	EmailsChecked int

	// TasksExtracted is the number of tasks produced by this run.
	TasksExtracted int

	// TotalTasks is the store size after persisting, including tasks from
	// earlier runs.
	TotalTasks int

	// Err holds the failure that ended the run, nil on success.
	Err error
}

// Succeeded reports whether the run completed without error.
func (r RunResult) Succeeded() bool {
	return r.State == StateSucceeded
}
