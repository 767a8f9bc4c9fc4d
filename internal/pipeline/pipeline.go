package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/inboxtasks/internal/gmail"
	"github.com/teemow/inboxtasks/internal/instrumentation"
	"github.com/teemow/inboxtasks/internal/logging"
	"github.com/teemow/inboxtasks/internal/tasks"
)

// ErrAlreadyRunning is returned when a refresh is requested while another
// run is still in flight. Runs are single-flight; the caller should retry
// after the current run finishes.
var ErrAlreadyRunning = errors.New("refresh already running")

// Source yields unread inbox messages.
type Source interface {
	FetchUnread(ctx context.Context, maxResults int64) ([]gmail.Message, error)
}

// Extractor turns a single message into a stored task. A nil task with a
// nil error means the message contained no actionable task.
type Extractor interface {
	Extract(ctx context.Context, m gmail.Message) (*tasks.Task, error)
}

// Pipeline runs the inbox refresh: fetch unread messages, filter out
// promotional mail, extract tasks via the LLM, and record the outcome in
// the execution log.
type Pipeline struct {
	source      Source
	extractor   Extractor
	store       tasks.Store
	log         ExecutionLog
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	maxMessages int64
	now         func() time.Time

	running atomic.Bool

	mu    sync.RWMutex
	state State
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMaxMessages limits how many unread messages a run examines.
func WithMaxMessages(n int64) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxMessages = n
		}
	}
}

// WithMetrics sets the metrics recorder for refresh runs.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a refresh pipeline. The logger may be nil, in which case the
// default slog logger is used.
func New(source Source, extractor Extractor, store tasks.Store, log ExecutionLog, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		source:      source,
		extractor:   extractor,
		store:       store,
		log:         log,
		logger:      logging.WithComponent(logger, "pipeline"),
		metrics:     &instrumentation.Metrics{},
		maxMessages: gmail.DefaultMaxResults,
		now:         time.Now,
		state:       StateIdle,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// State returns the current pipeline state. After a run it holds the
// terminal state of that run until the next run starts.
func (p *Pipeline) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run executes one refresh. The trigger names what started the run,
// "scheduled" or "manual", and is carried into logs and metrics.
//
// Runs are single-flight: if another run is in flight, Run returns
// immediately with ErrAlreadyRunning and no execution log entry.
func (p *Pipeline) Run(ctx context.Context, trigger string) RunResult {
	if !p.running.CompareAndSwap(false, true) {
		return RunResult{State: p.State(), Err: ErrAlreadyRunning}
	}
	defer p.running.Store(false)

	start := p.now()
	ctx, span := instrumentation.StartSpan(ctx, "refresh.run",
		attribute.String(instrumentation.SpanAttrTrigger, trigger))
	defer span.End()

	p.logger.Info("refresh run started", slog.String("trigger", trigger))

	p.setState(StateFetchingMessages)
	msgs, err := p.source.FetchUnread(ctx, p.maxMessages)
	if err != nil {
		return p.finish(ctx, span, trigger, start, RunResult{
			Err: fmt.Errorf("fetch unread messages: %w", err),
		})
	}

	p.setState(StateExtractingTasks)
	extracted := 0
	for _, m := range msgs {
		if !gmail.Eligible(m) {
			p.logger.Debug("skipping promotional message",
				logging.MessageID(m.ID),
				logging.SenderHash(m.From))
			continue
		}

		extractStart := p.now()
		task, err := p.extractor.Extract(ctx, m)
		elapsed := p.now().Sub(extractStart)

		switch {
		case err != nil:
			// A single failed extraction must not abort the run.
			p.metrics.RecordLLMRequest(ctx, instrumentation.ExtractionResultError, elapsed)
			p.logger.Warn("task extraction failed",
				logging.MessageID(m.ID),
				logging.Err(err))
		case task != nil:
			p.metrics.RecordLLMRequest(ctx, instrumentation.ExtractionResultTask, elapsed)
			extracted++
			p.logger.Info("task extracted",
				logging.MessageID(m.ID),
				logging.TaskID(task.ID))
		default:
			p.metrics.RecordLLMRequest(ctx, instrumentation.ExtractionResultNoTask, elapsed)
		}
	}

	res := RunResult{
		EmailsChecked:  len(msgs),
		TasksExtracted: extracted,
	}

	p.setState(StatePersisting)
	all, err := p.store.ListAll()
	if err != nil {
		res.Err = fmt.Errorf("list tasks: %w", err)
		return p.finish(ctx, span, trigger, start, res)
	}
	res.TotalTasks = len(all)

	return p.finish(ctx, span, trigger, start, res)
}

// finish appends the execution log entry, records metrics, and settles the
// pipeline in its terminal state. Exactly one entry is appended per run.
func (p *Pipeline) finish(ctx context.Context, span trace.Span, trigger string, start time.Time, res RunResult) RunResult {
	entry := ExecutionLogEntry{
		Timestamp:      p.now(),
		EmailsChecked:  res.EmailsChecked,
		TasksExtracted: res.TasksExtracted,
	}

	result := instrumentation.StatusSuccess
	if res.Err != nil {
		res.State = StateFailed
		entry.Outcome = OutcomeError
		entry.Error = res.Err.Error()
		result = instrumentation.StatusError
		instrumentation.SetSpanError(span, res.Err)
	} else {
		res.State = StateSucceeded
		entry.Outcome = OutcomeSuccess
		instrumentation.SetSpanSuccess(span)
	}

	p.log.Append(entry)
	p.setState(res.State)

	duration := p.now().Sub(start)
	p.metrics.RecordRefreshRun(ctx, trigger, result, duration, res.EmailsChecked, res.TasksExtracted)

	if res.Err != nil {
		p.logger.Error("refresh run failed",
			slog.String("trigger", trigger),
			logging.Status(logging.StatusError),
			logging.Err(res.Err))
	} else {
		p.logger.Info("refresh run finished",
			slog.String("trigger", trigger),
			logging.Status(logging.StatusSuccess),
			slog.Int(logging.KeyEmailsChecked, res.EmailsChecked),
			slog.Int(logging.KeyTasksExtracted, res.TasksExtracted),
			slog.Int("total_tasks", res.TotalTasks),
			slog.Duration("duration", duration))
	}

	return res
}
