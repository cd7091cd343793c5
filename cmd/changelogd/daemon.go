package main

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/randalmurphal/changelogify/pkg/changelogify"
	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
	"github.com/randalmurphal/changelogify/pkg/changelogify/observability"
	"github.com/randalmurphal/changelogify/pkg/changelogify/release"
	"github.com/randalmurphal/changelogify/pkg/changelogify/schedule"
	"github.com/randalmurphal/changelogify/pkg/changelogify/source"
)

// daemon holds the current pipeline and the scheduler built from the same
// settings. apply replaces both when settings change.
type daemon struct {
	registry *source.Registry
	store    release.Store
	logger   *slog.Logger
	metrics  *schedule.Metrics
	opts     []changelogify.Option

	pipeline atomic.Pointer[changelogify.Pipeline]

	mu          sync.Mutex
	stopSched   context.CancelFunc
	schedDone   chan struct{}
	schedFreq   config.Frequency
	schedActive bool
}

func newDaemon(registry *source.Registry, store release.Store, logger *slog.Logger, metrics *schedule.Metrics, opts ...changelogify.Option) *daemon {
	base := []changelogify.Option{
		changelogify.WithLogger(logger),
		changelogify.WithMetrics(observability.NewMetricsRecorder()),
		changelogify.WithSpanManager(observability.NewSpanManager()),
	}
	return &daemon{
		registry: registry,
		store:    store,
		logger:   logger,
		metrics:  metrics,
		opts:     append(base, opts...),
	}
}

// apply installs a pipeline for settings and starts, stops or restarts the
// scheduler to match CronEnabled and CronFrequency.
func (d *daemon) apply(ctx context.Context, settings config.Settings) {
	p := changelogify.New(d.registry, d.store, settings, d.opts...)
	d.pipeline.Store(p)
	settings = p.Settings()

	d.logger.Info("settings applied",
		slog.Any("enabled_sources", settings.EnabledSources),
		slog.String("date_range_type", string(settings.DateRangeType)),
		slog.Bool("cron_enabled", settings.CronEnabled),
		slog.String("cron_frequency", string(settings.CronFrequency)),
	)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.schedActive == settings.CronEnabled && d.schedFreq == settings.CronFrequency {
		return
	}
	d.stopLocked()
	if !settings.CronEnabled {
		return
	}

	runner := schedule.RunnerFunc(func(ctx context.Context) (string, error) {
		return d.pipeline.Load().RunScheduled(ctx)
	})
	s := schedule.New(runner, settings.CronFrequency,
		schedule.WithLogger(d.logger),
		schedule.WithMetrics(d.metrics),
	)

	schedCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Start(schedCtx)
	}()

	d.stopSched = cancel
	d.schedDone = done
	d.schedFreq = settings.CronFrequency
	d.schedActive = true
}

// stop halts the scheduler and waits for an in-flight run to return.
func (d *daemon) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *daemon) stopLocked() {
	if d.stopSched != nil {
		d.stopSched()
		<-d.schedDone
	}
	d.stopSched = nil
	d.schedDone = nil
	d.schedFreq = ""
	d.schedActive = false
}

// scheduling reports whether a scheduler is running and at what frequency.
func (d *daemon) scheduling() (bool, config.Frequency) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.schedActive, d.schedFreq
}
