// Package monitor drives the sampling cycle: collect, evaluate, present and log.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rathe12/SystemMonitor/internal/collector"
	"github.com/rathe12/SystemMonitor/internal/logstore"
	"github.com/rathe12/SystemMonitor/internal/threshold"
)

type Sampler interface {
	Collect(ctx context.Context, includeNetwork bool) (*collector.Sample, error)
}

type Appender interface {
	Append(rec logstore.Record) (string, error)
}

type Presenter interface {
	Clear()
	Render(s *collector.Sample) error
	Alert(d threshold.Decision)
	Logged(path string)
	LogFailed(err error)
}

type Options struct {
	Interval       time.Duration
	IncludeNetwork bool
	LogEnabled     bool
	Once           bool
	Policy         threshold.Policy
}

// Result summarizes a finished run.
type Result struct {
	Cycles  int
	Stopped bool
}

type Runner struct {
	sampler   Sampler
	store     Appender
	presenter Presenter
	sleep     collector.Sleeper
	logger    *slog.Logger
}

type Option func(*Runner)

func WithSleeper(sleep collector.Sleeper) Option {
	return func(r *Runner) { r.sleep = sleep }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner wires the cycle dependencies. store may be nil when logging is never enabled.
func NewRunner(sampler Sampler, store Appender, presenter Presenter, opts ...Option) *Runner {
	r := &Runner{
		sampler:   sampler,
		store:     store,
		presenter: presenter,
		sleep:     collector.SleepContext,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one cycle when opts.Once is set, otherwise cycles until a
// threshold Stop decision, a probe failure or ctx cancellation. The interval
// is waited after each completed cycle. Cancellation is not an error.
func (r *Runner) Run(ctx context.Context, opts Options) (Result, error) {
	if opts.LogEnabled && r.store == nil {
		return Result{}, errors.New("logging enabled without a log store")
	}

	var res Result
	for {
		decision, err := r.cycle(ctx, opts)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info("monitor interrupted", slog.Int("cycles", res.Cycles))
				return res, nil
			}
			return res, err
		}
		res.Cycles++

		if decision.Action == threshold.Stop {
			r.logger.Info("threshold exceeded, stopping",
				slog.Uint64("limit", uint64(decision.Limit)),
				slog.String("reason", decision.Message()),
			)
			res.Stopped = true
			return res, nil
		}

		if opts.Once {
			return res, nil
		}

		if err := r.sleep(ctx, opts.Interval); err != nil {
			r.logger.Info("monitor interrupted", slog.Int("cycles", res.Cycles))
			return res, nil
		}
	}
}

func (r *Runner) cycle(ctx context.Context, opts Options) (threshold.Decision, error) {
	sample, err := r.sampler.Collect(ctx, opts.IncludeNetwork)
	if err != nil {
		return threshold.Decision{}, fmt.Errorf("failed to collect metrics: %w", err)
	}

	decision := threshold.Evaluate(sample, opts.Policy)

	if !opts.Once {
		r.presenter.Clear()
	}
	if err := r.presenter.Render(sample); err != nil {
		r.logger.Error("failed to render sample", slog.Any("error", err))
	}
	r.presenter.Alert(decision)

	if decision.Action == threshold.Warn {
		r.logger.Info("threshold exceeded",
			slog.Uint64("limit", uint64(decision.Limit)),
			slog.String("reason", decision.Message()),
		)
	}

	if opts.LogEnabled {
		path, err := r.store.Append(logstore.FromSample(sample))
		if err != nil {
			r.logger.Error("failed to save sample", slog.Any("error", err))
			r.presenter.LogFailed(err)
		} else {
			r.logger.Debug("sample saved", slog.String("path", path))
			r.presenter.Logged(path)
		}
	}

	return decision, nil
}
