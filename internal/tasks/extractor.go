package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/inboxtasks/internal/gmail"
	"github.com/teemow/inboxtasks/internal/llm"
	"github.com/teemow/inboxtasks/internal/logging"
)

// taskIDSuffix distinguishes task identifiers from their source message IDs.
// Because the suffix is fixed, re-extracting a still-unread message upserts
// the existing task row instead of creating a duplicate.
const taskIDSuffix = ":task"

// TaskID derives the store identifier for a task from its source message ID.
func TaskID(messageID string) string {
	return messageID + taskIDSuffix
}

// extractionResult is the structured reply expected from the model.
type extractionResult struct {
	NoTask      bool   `json:"no_task"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	Context     string `json:"context"`
}

// Extractor turns eligible messages into stored task records.
type Extractor struct {
	completer llm.Completer
	store     Store
	logger    *slog.Logger
	now       func() time.Time
}

// NewExtractor creates a task extractor writing into store.
func NewExtractor(completer llm.Completer, store Store, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		completer: completer,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Extract invokes the language model for one eligible message and, when the
// reply describes an actionable item, inserts the resulting task into the
// store and returns it. A nil task with a nil error means the model reported
// no actionable content. Errors are local to the message; the caller logs
// and skips rather than aborting the batch.
func (e *Extractor) Extract(ctx context.Context, m gmail.Message) (*Task, error) {
	reply, err := e.completer.Complete(ctx, BuildExtractionPrompt(m))
	if err != nil {
		return nil, fmt.Errorf("completion failed for message %s: %w", m.ID, err)
	}

	result, ok := parseExtractionReply(reply)
	if !ok {
		e.logger.Warn("unparseable extraction reply, treating as no task",
			logging.Operation("extract"),
			slog.String(logging.KeyMessageID, m.ID))
		return nil, nil
	}

	if result.NoTask || result.Description == "" {
		return nil, nil
	}

	priority := result.Priority
	if !ValidPriority(priority) {
		priority = PriorityMedium
	}

	task := Task{
		ID:          TaskID(m.ID),
		MessageID:   m.ID,
		Subject:     m.Subject,
		Description: result.Description,
		From:        m.From,
		Priority:    priority,
		DueDate:     result.DueDate,
		Status:      StatusPending,
		Notes:       []string{result.Context},
		CreatedAt:   e.now(),
	}

	if err := e.store.Insert(task); err != nil {
		return nil, fmt.Errorf("failed to insert task for message %s: %w", m.ID, err)
	}

	return &task, nil
}

// parseExtractionReply decodes the model reply defensively. Models often wrap
// JSON in markdown code fences; anything that still fails to decode is
// treated as "no task", not as a pipeline failure.
func parseExtractionReply(reply string) (extractionResult, bool) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result extractionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return extractionResult{}, false
	}
	return result, true
}
