// Package pipeline implements the inbox refresh run.
//
// A run moves through a fixed sequence of states: it fetches unread
// messages from the inbox, filters out promotional mail, asks the LLM to
// extract a task from each remaining message, and finally reads back the
// task store to report totals. Every run, successful or not, appends
// exactly one entry to the execution log.
//
// Runs are single-flight. A refresh requested while another run is in
// flight returns ErrAlreadyRunning instead of queueing, so an hourly
// schedule and manual triggers cannot pile up.
//
// A failed extraction for one message is logged and skipped; only a
// failure to reach the inbox or the task store fails the whole run.
package pipeline
