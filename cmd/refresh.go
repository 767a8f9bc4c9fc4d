package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxtasks/internal/gmail"
	"github.com/teemow/inboxtasks/internal/instrumentation"
	"github.com/teemow/inboxtasks/internal/llm"
	"github.com/teemow/inboxtasks/internal/pipeline"
	"github.com/teemow/inboxtasks/internal/tasks"
)

func newRefreshCmd() *cobra.Command {
	var (
		account      string
		maxMessages  int64
		storeBackend string
		debugMode    bool
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch unread Gmail messages and extract tasks",
		Long: `Scan the unread messages in your Gmail inbox, ask the configured LLM
whether each one contains something actionable, and store the resulting tasks.
Promotional messages are skipped.

Requires a Google OAuth token (see the 'auth' command) and an OPENAI_API_KEY
environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			logger := newLogger(debugMode)

			client, err := gmail.NewClientForAccount(ctx, account)
			if err != nil {
				return fmt.Errorf("failed to create Gmail client for account %s: %w", account, err)
			}

			completer, err := llm.NewClientFromEnv()
			if err != nil {
				return err
			}

			taskStore, err := newTaskStore(ctx, storeBackend, account)
			if err != nil {
				return err
			}

			extractor := tasks.NewExtractor(completer, taskStore, logger)
			execLog := pipeline.NewMemoryLog()
			p := pipeline.New(client, extractor, taskStore, execLog, logger,
				pipeline.WithMaxMessages(maxMessages))

			res := p.Run(ctx, instrumentation.TriggerManual)
			if res.Err != nil {
				return fmt.Errorf("refresh failed: %w", res.Err)
			}

			fmt.Printf("Checked %d emails, extracted %d tasks (%d total)\n",
				res.EmailsChecked, res.TasksExtracted, res.TotalTasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().Int64Var(&maxMessages, "max-messages", gmail.DefaultMaxResults, "Maximum number of unread messages to check per run")
	cmd.Flags().StringVar(&storeBackend, "store", "google", "Task store backend: google or memory")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	return cmd
}

// newTaskStore builds the task store for the chosen backend. The google
// backend persists tasks to Google Tasks and needs a token for the account.
func newTaskStore(ctx context.Context, backend, account string) (tasks.Store, error) {
	switch backend {
	case "google":
		return tasks.NewGoogleStore(ctx, account)
	case "memory":
		return tasks.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s (supported: google, memory)", backend)
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
