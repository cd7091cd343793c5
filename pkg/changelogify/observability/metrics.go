package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records pipeline metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordSourceFetch records one adapter fetch with its event count,
	// duration and error status.
	RecordSourceFetch(ctx context.Context, sourceID string, events int, duration time.Duration, err error)

	// RecordCollect records a whole aggregation run.
	RecordCollect(ctx context.Context, events int, duration time.Duration)

	// RecordSection records how many messages landed in a section.
	RecordSection(ctx context.Context, section string, items int)

	// RecordRelease records a release generation attempt.
	RecordRelease(ctx context.Context, success bool, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	sourceFetches  metric.Int64Counter
	sourceEvents   metric.Int64Counter
	sourceErrors   metric.Int64Counter
	sourceLatency  metric.Float64Histogram
	collectEvents  metric.Int64Histogram
	sectionItems   metric.Int64Counter
	releases       metric.Int64Counter
	releaseLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("changelogify")

	sourceFetches, err := meter.Int64Counter("changelogify.source.fetches",
		metric.WithDescription("Number of source adapter fetches"),
	)
	if err != nil {
		return nil, err
	}

	sourceEvents, err := meter.Int64Counter("changelogify.source.events",
		metric.WithDescription("Number of events returned by source adapters"),
	)
	if err != nil {
		return nil, err
	}

	sourceErrors, err := meter.Int64Counter("changelogify.source.errors",
		metric.WithDescription("Number of absorbed source adapter failures"),
	)
	if err != nil {
		return nil, err
	}

	sourceLatency, err := meter.Float64Histogram("changelogify.source.latency_ms",
		metric.WithDescription("Source fetch latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	collectEvents, err := meter.Int64Histogram("changelogify.collect.events",
		metric.WithDescription("Events per aggregation run"),
	)
	if err != nil {
		return nil, err
	}

	sectionItems, err := meter.Int64Counter("changelogify.section.items",
		metric.WithDescription("Messages placed into changelog sections"),
	)
	if err != nil {
		return nil, err
	}

	releases, err := meter.Int64Counter("changelogify.release.generations",
		metric.WithDescription("Number of release generation attempts"),
	)
	if err != nil {
		return nil, err
	}

	releaseLatency, err := meter.Float64Histogram("changelogify.release.latency_ms",
		metric.WithDescription("Release generation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		sourceFetches:  sourceFetches,
		sourceEvents:   sourceEvents,
		sourceErrors:   sourceErrors,
		sourceLatency:  sourceLatency,
		collectEvents:  collectEvents,
		sectionItems:   sectionItems,
		releases:       releases,
		releaseLatency: releaseLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordSourceFetch records one adapter fetch.
func (m *otelMetrics) RecordSourceFetch(ctx context.Context, sourceID string, events int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("source_id", sourceID))

	m.sourceFetches.Add(ctx, 1, attrs)
	m.sourceEvents.Add(ctx, int64(events), attrs)
	m.sourceLatency.Record(ctx, float64(duration.Milliseconds()), attrs)

	if err != nil {
		m.sourceErrors.Add(ctx, 1, attrs)
	}
}

// RecordCollect records an aggregation run.
func (m *otelMetrics) RecordCollect(ctx context.Context, events int, _ time.Duration) {
	m.collectEvents.Record(ctx, int64(events))
}

// RecordSection records section sizes.
func (m *otelMetrics) RecordSection(ctx context.Context, section string, items int) {
	m.sectionItems.Add(ctx, int64(items), metric.WithAttributes(attribute.String("section", section)))
}

// RecordRelease records a release generation attempt.
func (m *otelMetrics) RecordRelease(ctx context.Context, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.releases.Add(ctx, 1, attrs)
	m.releaseLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}
