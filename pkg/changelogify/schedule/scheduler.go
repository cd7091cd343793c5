// Package schedule triggers release generation on a fixed cadence.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
)

// Runner performs one unattended release generation.
// *changelogify.Pipeline satisfies it.
type Runner interface {
	RunScheduled(ctx context.Context) (string, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context) (string, error)

// RunScheduled calls f.
func (f RunnerFunc) RunScheduled(ctx context.Context) (string, error) {
	return f(ctx)
}

// Intervals per frequency.
const (
	DailyInterval  = 24 * time.Hour
	WeeklyInterval = 7 * 24 * time.Hour
)

// IntervalFor returns the tick interval for freq. Unknown frequencies are
// treated as weekly.
func IntervalFor(freq config.Frequency) time.Duration {
	if freq == config.FrequencyDaily {
		return DailyInterval
	}
	return WeeklyInterval
}

// Scheduler calls its Runner once per interval. Ticks are handled one at a
// time; a tick that arrives while a run is in progress is dropped by the
// ticker. Nothing prevents a manual trigger from overlapping a scheduled run.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
	metrics  *Metrics
	now      func() time.Time

	mu      sync.Mutex
	running bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithMetrics sets the Prometheus collectors. Default: unregistered
// collectors private to this scheduler.
func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithInterval overrides the frequency-derived interval.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// New creates a scheduler that runs runner at the cadence of freq.
func New(runner Runner, freq config.Frequency, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:   runner,
		interval: IntervalFor(freq),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// Interval returns the tick interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Running reports whether Start is in progress.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start runs the tick loop until ctx is canceled. The first run happens one
// interval after Start. It returns ctx.Err().
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.logger != nil {
		s.logger.Info("scheduler started", slog.Duration("interval", s.interval))
	}

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.Info("scheduler stopped")
			}
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one run immediately and records its outcome. Errors are
// logged and counted, never returned: the next tick tries again.
func (s *Scheduler) Tick(ctx context.Context) {
	start := s.now()
	id, err := s.runner.RunScheduled(ctx)
	s.metrics.duration.Observe(s.now().Sub(start).Seconds())

	if err != nil {
		s.metrics.runs.WithLabelValues(ResultError).Inc()
		if s.logger != nil {
			s.logger.Error("scheduled run failed", slog.String("error", err.Error()))
		}
		return
	}

	s.metrics.runs.WithLabelValues(ResultSuccess).Inc()
	s.metrics.lastSuccess.Set(float64(s.now().Unix()))
	if s.logger != nil {
		s.logger.Info("scheduled run complete", slog.String("release_id", id))
	}
}
