package source

import (
	"context"
	"log/slog"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
	"github.com/randalmurphal/changelogify/pkg/changelogify/observability"
	"go.opentelemetry.io/otel/attribute"
)

// Aggregator collects events from every active source and orders them
// most recent first. Source failures never propagate: a failing source
// contributes zero events.
//
// No deduplication happens across sources; the same real-world action
// logged by two stores appears twice here. Message-level dedup happens
// later, per section.
type Aggregator struct {
	registry *Registry
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithAggregatorLogger sets the logger.
func WithAggregatorLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithAggregatorMetrics sets the metrics recorder.
func WithAggregatorMetrics(m observability.MetricsRecorder) AggregatorOption {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// WithAggregatorSpans sets the span manager.
func WithAggregatorSpans(sm observability.SpanManager) AggregatorOption {
	return func(a *Aggregator) {
		a.spans = sm
	}
}

// NewAggregator creates an aggregator over registry.
func NewAggregator(registry *Registry, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		registry: registry,
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Collect runs the active sources sequentially in priority order and
// returns their events stable-sorted by timestamp descending.
func (a *Aggregator) Collect(ctx context.Context, w event.Window, settings config.Settings) []event.Event {
	done := observability.TimedOperation()

	active := a.registry.Active(ctx, settings)
	ids := make([]string, len(active))
	for i, s := range active {
		ids[i] = s.ID()
	}
	observability.LogCollectStart(a.logger, ids)
	for _, id := range settings.EnabledSources {
		if s, ok := a.registry.Get(id); ok && !contains(ids, s.ID()) {
			observability.LogSourceSkipped(a.logger, id)
		}
	}

	all := []event.Event{}
	for _, s := range active {
		all = append(all, a.fetch(ctx, s, w)...)
	}
	event.SortByTimeDesc(all)

	a.metrics.RecordCollect(ctx, len(all), time.Duration(done()*float64(time.Millisecond)))
	observability.LogCollectComplete(a.logger, len(all), done())
	return all
}

func (a *Aggregator) fetch(ctx context.Context, s Source, w event.Window) []event.Event {
	start := time.Now()
	ctx, span := a.spans.StartSourceSpan(ctx, s.ID())

	events, err := s.Fetch(ctx, w)
	elapsed := time.Since(start)

	a.metrics.RecordSourceFetch(ctx, s.ID(), len(events), elapsed, err)
	a.spans.AddSpanEvent(ctx, "source.fetched", attribute.Int("event_count", len(events)))
	a.spans.EndSpanWithError(span, err)

	if err != nil {
		observability.LogSourceError(a.logger, s.ID(), err)
		return nil
	}
	observability.LogSourceFetched(a.logger, s.ID(), len(events), float64(elapsed.Milliseconds()))
	return events
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
