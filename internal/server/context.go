package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/inboxtasks/internal/gmail"
	"github.com/teemow/inboxtasks/internal/google"
	"github.com/teemow/inboxtasks/internal/instrumentation"
	"github.com/teemow/inboxtasks/internal/llm"
	"github.com/teemow/inboxtasks/internal/logging"
	"github.com/teemow/inboxtasks/internal/pipeline"
	"github.com/teemow/inboxtasks/internal/tasks"
)

// ServerContext holds the shared state of the MCP server: the task store,
// the execution log, and lazily created Gmail clients and refresh pipelines
// per account.
type ServerContext struct {
	ctx       context.Context
	cancel    context.CancelFunc
	store     tasks.Store
	execLog   pipeline.ExecutionLog
	completer llm.Completer
	logger    *slog.Logger
	metrics   *instrumentation.Metrics

	gmailClients map[string]*gmail.Client
	pipelines    map[string]*pipeline.Pipeline

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. The completer may be nil,
// in which case refresh runs are unavailable but task management tools
// still work.
func NewServerContext(ctx context.Context, store tasks.Store, execLog pipeline.ExecutionLog, completer llm.Completer, logger *slog.Logger) (*ServerContext, error) {
	if store == nil {
		return nil, fmt.Errorf("task store is required")
	}
	if execLog == nil {
		return nil, fmt.Errorf("execution log is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:          shutdownCtx,
		cancel:       cancel,
		store:        store,
		execLog:      execLog,
		completer:    completer,
		logger:       logging.WithComponent(logger, "server"),
		metrics:      &instrumentation.Metrics{},
		gmailClients: make(map[string]*gmail.Client),
		pipelines:    make(map[string]*pipeline.Pipeline),
	}

	// Eagerly create the default Gmail client when a token exists. Failure
	// is not fatal; the client is re-attempted on first use.
	if google.HasToken() {
		client, err := gmail.NewClientForAccount(shutdownCtx, google.DefaultAccount)
		if err != nil {
			sc.logger.Warn("failed to create Gmail client for default account", logging.Err(err))
		} else {
			sc.gmailClients[google.DefaultAccount] = client
		}
	}

	return sc, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Store returns the task store.
func (sc *ServerContext) Store() tasks.Store {
	return sc.store
}

// ExecutionLog returns the execution log.
func (sc *ServerContext) ExecutionLog() pipeline.ExecutionLog {
	return sc.execLog
}

// SetMetrics sets the metrics recorder used by tools and pipelines.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if m != nil {
		sc.metrics = m
	}
}

// Metrics returns the metrics recorder. Never nil; a no-op recorder is
// returned when instrumentation is disabled.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// GmailClientForAccount returns the Gmail client for a specific account.
// Creates and caches the client if it doesn't exist yet.
// Returns nil if the account has no token.
func (sc *ServerContext) GmailClientForAccount(account string) *gmail.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.gmailClients[account]; ok {
		return client
	}

	if !google.HasTokenForAccount(account) {
		return nil
	}

	client, err := gmail.NewClientForAccount(sc.ctx, account)
	if err != nil {
		sc.logger.Warn("failed to create Gmail client",
			slog.String(logging.KeyAccount, account), logging.Err(err))
		return nil
	}

	sc.gmailClients[account] = client
	return client
}

// GmailClient returns the Gmail client for the default account.
func (sc *ServerContext) GmailClient() *gmail.Client {
	return sc.GmailClientForAccount(google.DefaultAccount)
}

// SetGmailClientForAccount sets the Gmail client for a specific account.
func (sc *ServerContext) SetGmailClientForAccount(account string, client *gmail.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.gmailClients[account] = client
}

// PipelineForAccount returns the refresh pipeline for a specific account,
// creating it on first use. Returns an error when the account has no Gmail
// token or no LLM completer is configured.
func (sc *ServerContext) PipelineForAccount(account string) (*pipeline.Pipeline, error) {
	sc.mu.Lock()
	if p, ok := sc.pipelines[account]; ok {
		sc.mu.Unlock()
		return p, nil
	}
	metrics := sc.metrics
	sc.mu.Unlock()

	if sc.completer == nil {
		return nil, fmt.Errorf("no LLM configured: set OPENAI_API_KEY to enable task extraction")
	}

	client := sc.GmailClientForAccount(account)
	if client == nil {
		return nil, fmt.Errorf("no Gmail token for account %q: %s", account, google.GetAuthenticationErrorMessage(account))
	}

	extractor := tasks.NewExtractor(sc.completer, sc.store, sc.logger)
	p := pipeline.New(client, extractor, sc.store, sc.execLog, sc.logger,
		pipeline.WithMetrics(metrics))

	sc.mu.Lock()
	defer sc.mu.Unlock()
	// Another caller may have raced us here; keep the first pipeline so the
	// single-flight guarantee holds.
	if existing, ok := sc.pipelines[account]; ok {
		return existing, nil
	}
	sc.pipelines[account] = p
	return p, nil
}

// Pipeline returns the refresh pipeline for the default account.
func (sc *ServerContext) Pipeline() (*pipeline.Pipeline, error) {
	return sc.PipelineForAccount(google.DefaultAccount)
}

// PipelineState returns the refresh state for the default account, or
// "idle" when no pipeline has been created yet.
func (sc *ServerContext) PipelineState() pipeline.State {
	sc.mu.RLock()
	p, ok := sc.pipelines[google.DefaultAccount]
	sc.mu.RUnlock()
	if !ok {
		return pipeline.StateIdle
	}
	return p.State()
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
