package scheduler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/teemow/inboxtasks/internal/instrumentation"
	"github.com/teemow/inboxtasks/internal/logging"
	"github.com/teemow/inboxtasks/internal/pipeline"
)

// DefaultSpec runs a refresh at the top of every hour.
const DefaultSpec = "0 * * * *"

// Refresher runs one inbox refresh.
type Refresher interface {
	Run(ctx context.Context, trigger string) pipeline.RunResult
}

// Scheduler triggers refresh runs on a cron schedule. Ticks that land while
// a run is still in flight are skipped, not queued.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	baseCtx context.Context
}

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	spec string
}

// WithSpec overrides the cron schedule. Accepts standard five-field cron
// expressions and descriptors like "@every 30m".
func WithSpec(spec string) Option {
	return func(o *options) {
		if spec != "" {
			o.spec = spec
		}
	}
}

// New creates a scheduler for the given refresher. The schedule is validated
// here; Start must be called before any runs are triggered.
func New(refresher Refresher, logger *slog.Logger, opts ...Option) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	o := options{spec: DefaultSpec}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Scheduler{
		cron:    cron.New(),
		logger:  logging.WithComponent(logger, "scheduler"),
		baseCtx: context.Background(),
	}

	if _, err := s.cron.AddFunc(o.spec, func() {
		res := refresher.Run(s.baseCtx, instrumentation.TriggerScheduled)
		if errors.Is(res.Err, pipeline.ErrAlreadyRunning) {
			s.logger.Warn("skipping scheduled refresh, previous run still in flight")
		}
	}); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins triggering scheduled runs. The context is passed to each
// refresh run; cancelling it aborts in-flight Gmail and LLM calls.
func (s *Scheduler) Start(ctx context.Context) {
	s.baseCtx = ctx
	s.cron.Start()

	entries := s.cron.Entries()
	if len(entries) > 0 {
		s.logger.Info("scheduler started", slog.Time("next_run", entries[0].Next))
	}
}

// Stop halts the schedule and waits for any running job to finish, or for
// ctx to be cancelled, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("stopping scheduler")

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
