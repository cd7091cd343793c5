package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("changelogify")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartGenerateSpan starts a span for a full release generation.
	StartGenerateSpan(ctx context.Context, version string, start, end time.Time) (context.Context, trace.Span)

	// StartSourceSpan starts a span for one adapter fetch.
	// It should be a child of the generate span.
	StartSourceSpan(ctx context.Context, sourceID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// Configure the global provider before calling this function:
//
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartGenerateSpan(ctx context.Context, version string, start, end time.Time) (context.Context, trace.Span) {
	return StartGenerateSpan(ctx, version, start, end)
}

func (m *otelSpanManager) StartSourceSpan(ctx context.Context, sourceID string) (context.Context, trace.Span) {
	return StartSourceSpan(ctx, sourceID)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// StartGenerateSpan starts a span for a release generation.
// Uses the global OTel tracer.
func StartGenerateSpan(ctx context.Context, version string, start, end time.Time) (context.Context, trace.Span) {
	return tracer.Start(ctx, "changelogify.generate",
		trace.WithAttributes(
			attribute.String("release.version", version),
			attribute.String("window.start", start.Format(time.RFC3339)),
			attribute.String("window.end", end.Format(time.RFC3339)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartSourceSpan starts a span for an adapter fetch.
// Uses the global OTel tracer.
func StartSourceSpan(ctx context.Context, sourceID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "changelogify.source."+sourceID,
		trace.WithAttributes(
			attribute.String("source.id", sourceID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
