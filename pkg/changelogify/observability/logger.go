// Package observability provides structured logging, metrics and tracing
// for the changelog pipeline.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// Every logging helper accepts a nil logger and does nothing with it.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds run context to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "1.2.4", window.Start, window.End)
//	enriched.Info("collecting") // includes version, window_start, window_end
func EnrichLogger(logger *slog.Logger, version string, start, end time.Time) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("version", version),
		slog.Time("window_start", start),
		slog.Time("window_end", end),
	)
}

// LogCollectStart logs the start of an aggregation run.
func LogCollectStart(logger *slog.Logger, sources []string) {
	if logger == nil {
		return
	}
	logger.Debug("collecting events",
		slog.Any("sources", sources),
	)
}

// LogCollectComplete logs a finished aggregation run.
func LogCollectComplete(logger *slog.Logger, eventCount int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("events collected",
		slog.Int("event_count", eventCount),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogSourceFetched logs a single adapter's contribution.
func LogSourceFetched(logger *slog.Logger, sourceID string, eventCount int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("source fetched",
		slog.String("source_id", sourceID),
		slog.Int("event_count", eventCount),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogSourceError logs an adapter failure. Adapter failures are absorbed,
// so this is a warning rather than an error.
func LogSourceError(logger *slog.Logger, sourceID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("source fetch failed, treating as empty",
		slog.String("source_id", sourceID),
		slog.String("error", err.Error()),
	)
}

// LogSourceSkipped logs an enabled source that is not available at runtime.
func LogSourceSkipped(logger *slog.Logger, sourceID string) {
	if logger == nil {
		return
	}
	logger.Debug("source unavailable, skipping",
		slog.String("source_id", sourceID),
	)
}

// LogReleaseCreated logs a persisted release.
func LogReleaseCreated(logger *slog.Logger, releaseID, version string, itemCount int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("release created",
		slog.String("release_id", releaseID),
		slog.String("version", version),
		slog.Int("item_count", itemCount),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogReleaseError logs a release that could not be persisted.
func LogReleaseError(logger *slog.Logger, version string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("release generation failed",
		slog.String("version", version),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogMappingDropped logs an event dropped because its mapping resolved to
// a section outside the fixed set.
func LogMappingDropped(logger *slog.Logger, action, section string) {
	if logger == nil {
		return
	}
	logger.Debug("event dropped by invalid section mapping",
		slog.String("action", action),
		slog.String("section", section),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
