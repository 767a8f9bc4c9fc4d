package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/api/option"
	gtasks "google.golang.org/api/tasks/v1"

	"github.com/teemow/inboxtasks/internal/google"
)

// DefaultTaskListTitle is the Google Tasks list inboxtasks writes into.
const DefaultTaskListTitle = "inboxtasks"

// GoogleStore is a Store persisted in Google Tasks. Task metadata that has no
// native Google Tasks field (source message ID, priority, the notes sequence)
// travels in the task's Notes payload as JSON.
type GoogleStore struct {
	svc     *gtasks.Service
	ctx     context.Context
	listID  string
	account string
}

// envelope is the JSON payload stored in a Google task's Notes field.
type envelope struct {
	ID        string    `json:"id"`
	MessageID string    `json:"messageId"`
	Subject   string    `json:"subject"`
	From      string    `json:"from"`
	Priority  string    `json:"priority"`
	Notes     []string  `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewGoogleStore creates a Store backed by the Google Tasks API for the given
// account. The backing task list is created on first use.
func NewGoogleStore(ctx context.Context, account string) (*GoogleStore, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	svc, err := gtasks.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}

	s := &GoogleStore{
		svc:     svc,
		ctx:     ctx,
		account: account,
	}

	if err := s.ensureTaskList(); err != nil {
		return nil, err
	}

	return s, nil
}

// Account returns the account name this store is associated with
func (s *GoogleStore) Account() string {
	return s.account
}

// ensureTaskList finds or creates the backing task list.
func (s *GoogleStore) ensureTaskList() error {
	lists, err := s.svc.Tasklists.List().Context(s.ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to list task lists: %w", err)
	}

	for _, tl := range lists.Items {
		if tl.Title == DefaultTaskListTitle {
			s.listID = tl.Id
			return nil
		}
	}

	created, err := s.svc.Tasklists.Insert(&gtasks.TaskList{Title: DefaultTaskListTitle}).Context(s.ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to create task list: %w", err)
	}
	s.listID = created.Id
	return nil
}

// Insert adds or replaces the record at its identifier.
func (s *GoogleStore) Insert(task Task) error {
	existing, err := s.findByID(task.ID)
	if err != nil {
		return err
	}

	gt := toGoogleTask(task)
	if existing != nil {
		gt.Id = existing.Id
		if _, err := s.svc.Tasks.Update(s.listID, existing.Id, gt).Context(s.ctx).Do(); err != nil {
			return fmt.Errorf("failed to update task %s: %w", task.ID, err)
		}
		return nil
	}

	if _, err := s.svc.Tasks.Insert(s.listID, gt).Context(s.ctx).Do(); err != nil {
		return fmt.Errorf("failed to insert task %s: %w", task.ID, err)
	}
	return nil
}

// Get returns the task and whether it exists.
func (s *GoogleStore) Get(id string) (Task, bool) {
	gt, err := s.findByID(id)
	if err != nil || gt == nil {
		return Task{}, false
	}
	task, ok := fromGoogleTask(gt)
	return task, ok
}

// MarkComplete transitions the task to completed if the ID exists.
func (s *GoogleStore) MarkComplete(id string) (bool, error) {
	gt, err := s.findByID(id)
	if err != nil {
		return false, err
	}
	if gt == nil {
		return false, nil
	}

	gt.Status = "completed"
	completed := time.Now().Format(time.RFC3339)
	gt.Completed = &completed

	if _, err := s.svc.Tasks.Update(s.listID, gt.Id, gt).Context(s.ctx).Do(); err != nil {
		return false, fmt.Errorf("failed to complete task %s: %w", id, err)
	}
	return true, nil
}

// AddNote appends to the task's notes sequence if the ID exists.
func (s *GoogleStore) AddNote(id, text string) (bool, error) {
	gt, err := s.findByID(id)
	if err != nil {
		return false, err
	}
	if gt == nil {
		return false, nil
	}

	task, ok := fromGoogleTask(gt)
	if !ok {
		return false, fmt.Errorf("task %s has an unreadable payload", id)
	}
	task.Notes = append(task.Notes, text)

	updated := toGoogleTask(task)
	updated.Id = gt.Id
	updated.Status = gt.Status

	if _, err := s.svc.Tasks.Update(s.listID, gt.Id, updated).Context(s.ctx).Do(); err != nil {
		return false, fmt.Errorf("failed to annotate task %s: %w", id, err)
	}
	return true, nil
}

// ListAll enumerates every task, completed ones included.
func (s *GoogleStore) ListAll() ([]Task, error) {
	raw, err := s.listRaw()
	if err != nil {
		return nil, err
	}

	all := make([]Task, 0, len(raw))
	for _, gt := range raw {
		if task, ok := fromGoogleTask(gt); ok {
			all = append(all, task)
		}
	}
	return all, nil
}

func (s *GoogleStore) listRaw() ([]*gtasks.Task, error) {
	var items []*gtasks.Task
	pageToken := ""

	for {
		call := s.svc.Tasks.List(s.listID).ShowCompleted(true).ShowHidden(true).MaxResults(100)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Context(s.ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}

		items = append(items, res.Items...)

		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}

	return items, nil
}

func (s *GoogleStore) findByID(id string) (*gtasks.Task, error) {
	raw, err := s.listRaw()
	if err != nil {
		return nil, err
	}

	for _, gt := range raw {
		var env envelope
		if err := json.Unmarshal([]byte(gt.Notes), &env); err != nil {
			continue
		}
		if env.ID == id {
			return gt, nil
		}
	}
	return nil, nil
}

// toGoogleTask converts a Task into its Google Tasks representation.
func toGoogleTask(task Task) *gtasks.Task {
	payload, _ := json.Marshal(envelope{
		ID:        task.ID,
		MessageID: task.MessageID,
		Subject:   task.Subject,
		From:      task.From,
		Priority:  task.Priority,
		Notes:     task.Notes,
		CreatedAt: task.CreatedAt,
	})

	gt := &gtasks.Task{
		Title: task.Description,
		Notes: string(payload),
	}

	if task.Status == StatusCompleted {
		gt.Status = "completed"
	} else {
		gt.Status = "needsAction"
	}

	if task.DueDate != "" {
		if due, err := time.Parse("2006-01-02", task.DueDate); err == nil {
			gt.Due = due.Format(time.RFC3339)
		}
	}

	return gt
}

// fromGoogleTask converts a Google task back into a Task. Tasks without a
// decodable envelope (e.g. created by hand in the same list) are skipped.
func fromGoogleTask(gt *gtasks.Task) (Task, bool) {
	var env envelope
	if err := json.Unmarshal([]byte(gt.Notes), &env); err != nil || env.ID == "" {
		return Task{}, false
	}

	task := Task{
		ID:          env.ID,
		MessageID:   env.MessageID,
		Subject:     env.Subject,
		Description: gt.Title,
		From:        env.From,
		Priority:    env.Priority,
		Notes:       env.Notes,
		CreatedAt:   env.CreatedAt,
	}

	if gt.Status == "completed" {
		task.Status = StatusCompleted
	} else {
		task.Status = StatusPending
	}

	if gt.Due != "" {
		if due, err := time.Parse(time.RFC3339, gt.Due); err == nil {
			task.DueDate = due.Format("2006-01-02")
		}
	}

	return task, true
}
