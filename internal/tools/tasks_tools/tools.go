package tasks_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxtasks/internal/google"
	"github.com/teemow/inboxtasks/internal/instrumentation"
	"github.com/teemow/inboxtasks/internal/pipeline"
	"github.com/teemow/inboxtasks/internal/server"
	"github.com/teemow/inboxtasks/internal/tasks"
)

// getAccountFromArgs extracts the account name from request arguments, defaulting to "default"
func getAccountFromArgs(args map[string]interface{}) string {
	account := google.DefaultAccount
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		account = accountVal
	}
	return account
}

// getLimitFromArgs extracts a positive limit from request arguments.
// Returns 0 when absent or invalid, meaning no limit.
func getLimitFromArgs(args map[string]interface{}) int {
	if limitVal, ok := args["limit"].(float64); ok && limitVal > 0 {
		return int(limitVal)
	}
	return 0
}

// lastEntries returns the newest n entries, or all of them when n is 0 or
// exceeds the log length.
func lastEntries(entries []pipeline.ExecutionLogEntry, n int) []pipeline.ExecutionLogEntry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}

// filterByStatus returns the tasks matching the given status, or all tasks
// when status is empty.
func filterByStatus(all []tasks.Task, status string) []tasks.Task {
	if status == "" {
		return all
	}
	filtered := make([]tasks.Task, 0, len(all))
	for _, t := range all {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// withInstrumentation wraps a tool handler with a span and an invocation
// metric.
func withInstrumentation(sc *server.ServerContext, name string, handler mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		ctx, span := instrumentation.StartToolSpan(ctx, name)
		defer span.End()

		result, err := handler(ctx, request)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		sc.Metrics().RecordToolInvocation(ctx, name, status, time.Since(start))

		return result, err
	}
}

// RegisterTaskTools registers all task management and refresh tools with
// the MCP server.
// If readOnly is true, tools that modify tasks are not registered.
func RegisterTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerTaskManagementTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register task management tools: %w", err)
	}

	if err := registerRefreshTools(s, sc); err != nil {
		return fmt.Errorf("failed to register refresh tools: %w", err)
	}

	return nil
}

// registerTaskManagementTools registers the tools operating on stored tasks
func registerTaskManagementTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List tasks tool
	listTasksTool := mcp.NewTool("tasks_list",
		mcp.WithDescription("List all tasks extracted from the inbox, including completed ones"),
		mcp.WithString("status",
			mcp.Description("Filter by status: 'pending' or 'completed'. Omit to list all tasks."),
		),
	)

	s.AddTool(listTasksTool, withInstrumentation(sc, "tasks_list", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		status, _ := args["status"].(string)
		if status != "" && status != tasks.StatusPending && status != tasks.StatusCompleted {
			return mcp.NewToolResultError(fmt.Sprintf("invalid status %q: must be 'pending' or 'completed'", status)), nil
		}

		all, err := sc.Store().ListAll()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasks: %v", err)), nil
		}

		result, _ := json.MarshalIndent(filterByStatus(all, status), "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	// Get task tool
	getTaskTool := mcp.NewTool("tasks_get",
		mcp.WithDescription("Get details of a single task by its ID"),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to retrieve"),
		),
	)

	s.AddTool(getTaskTool, withInstrumentation(sc, "tasks_get", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		taskID, ok := args["taskId"].(string)
		if !ok || taskID == "" {
			return mcp.NewToolResultError("taskId is required"), nil
		}

		task, ok := sc.Store().Get(taskID)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("task not found: %s", taskID)), nil
		}

		result, _ := json.MarshalIndent(task, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	// Write operations are only registered when not in read-only mode
	if readOnly {
		return nil
	}

	// Complete task tool
	completeTaskTool := mcp.NewTool("tasks_complete",
		mcp.WithDescription("Mark a task as completed"),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to complete"),
		),
	)

	s.AddTool(completeTaskTool, withInstrumentation(sc, "tasks_complete", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		taskID, ok := args["taskId"].(string)
		if !ok || taskID == "" {
			return mcp.NewToolResultError("taskId is required"), nil
		}

		found, err := sc.Store().MarkComplete(taskID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to complete task: %v", err)), nil
		}
		if !found {
			return mcp.NewToolResultError(fmt.Sprintf("task not found: %s", taskID)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Task %s marked as completed", taskID)), nil
	}))

	// Add note tool
	addNoteTool := mcp.NewTool("tasks_add_note",
		mcp.WithDescription("Append a note to a task"),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to annotate"),
		),
		mcp.WithString("note",
			mcp.Required(),
			mcp.Description("The note text to append"),
		),
	)

	s.AddTool(addNoteTool, withInstrumentation(sc, "tasks_add_note", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		taskID, ok := args["taskId"].(string)
		if !ok || taskID == "" {
			return mcp.NewToolResultError("taskId is required"), nil
		}

		note, ok := args["note"].(string)
		if !ok || strings.TrimSpace(note) == "" {
			return mcp.NewToolResultError("note is required"), nil
		}

		found, err := sc.Store().AddNote(taskID, note)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to add note: %v", err)), nil
		}
		if !found {
			return mcp.NewToolResultError(fmt.Sprintf("task not found: %s", taskID)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Note added to task %s", taskID)), nil
	}))

	return nil
}

// registerRefreshTools registers the manual refresh trigger and the
// execution log reader
func registerRefreshTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Refresh tool
	refreshTool := mcp.NewTool("tasks_refresh",
		mcp.WithDescription("Run an inbox refresh now: fetch unread emails and extract tasks"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(refreshTool, withInstrumentation(sc, "tasks_refresh", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		account := getAccountFromArgs(args)

		p, err := sc.PipelineForAccount(account)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res := p.Run(ctx, instrumentation.TriggerManual)
		if errors.Is(res.Err, pipeline.ErrAlreadyRunning) {
			return mcp.NewToolResultError("A refresh is already running. Check tasks_execution_logs for its outcome."), nil
		}
		if res.Err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Refresh failed: %v", res.Err)), nil
		}

		summary := map[string]interface{}{
			"state":           res.State,
			"emails_checked":  res.EmailsChecked,
			"tasks_extracted": res.TasksExtracted,
			"total_tasks":     res.TotalTasks,
		}
		result, _ := json.MarshalIndent(summary, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	// Execution log tool
	logsTool := mcp.NewTool("tasks_execution_logs",
		mcp.WithDescription("Show the outcomes of past refresh runs, oldest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return, newest kept (default: all)"),
		),
	)

	s.AddTool(logsTool, withInstrumentation(sc, "tasks_execution_logs", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		limit := getLimitFromArgs(args)

		entries := lastEntries(sc.ExecutionLog().Entries(), limit)

		result, _ := json.MarshalIndent(entries, "", "  ")
		return mcp.NewToolResultText(string(result)), nil
	}))

	return nil
}
