// Package tasks_tools provides MCP tools for working with tasks extracted
// from the inbox.
//
// # Available Tools
//
// Task Management:
//   - tasks_list: List all tasks, optionally filtered by status
//   - tasks_get: Get details of a single task
//   - tasks_complete: Mark a task as completed
//   - tasks_add_note: Append a note to a task
//
// Refresh:
//   - tasks_refresh: Fetch unread emails and extract tasks now
//   - tasks_execution_logs: Show the outcomes of past refresh runs
//
// # Multi-Account Support
//
// The refresh tool supports an optional 'account' parameter to specify which
// Google account to use. If not provided, the 'default' account is used.
//
// # Authentication
//
// Refreshing requires a Gmail token for the chosen account (see the 'auth'
// command) and an OPENAI_API_KEY for task extraction. The task management
// tools operate on the shared store and need neither.
//
// In read-only mode the tasks_complete and tasks_add_note tools are not
// registered.
package tasks_tools
