package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordSourceFetch does nothing.
func (NoopMetrics) RecordSourceFetch(_ context.Context, _ string, _ int, _ time.Duration, _ error) {}

// RecordCollect does nothing.
func (NoopMetrics) RecordCollect(_ context.Context, _ int, _ time.Duration) {}

// RecordSection does nothing.
func (NoopMetrics) RecordSection(_ context.Context, _ string, _ int) {}

// RecordRelease does nothing.
func (NoopMetrics) RecordRelease(_ context.Context, _ bool, _ time.Duration) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartGenerateSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartGenerateSpan(ctx context.Context, _ string, _, _ time.Time) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartSourceSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartSourceSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
