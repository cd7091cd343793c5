package changelogify

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
	"github.com/randalmurphal/changelogify/pkg/changelogify/observability"
)

// pipelineConfig holds the optional collaborators of a Pipeline.
type pipelineConfig struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	now     func() time.Time
	format  config.RenderFormat
	newID   func() string
}

func defaultPipelineConfig() pipelineConfig {
	return pipelineConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Option configures a Pipeline.
type Option func(*pipelineConfig)

// WithLogger sets the structured logger. Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *pipelineConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder. Default: NoopMetrics.
//
// Example:
//
//	p := changelogify.New(registry, store, settings,
//	    changelogify.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *pipelineConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager sets the tracing span manager. Default: NoopSpanManager.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(c *pipelineConfig) {
		if sm != nil {
			c.spans = sm
		}
	}
}

// WithClock overrides the time source used for window derivation and
// release timestamps. Returned times are converted to UTC.
func WithClock(now func() time.Time) Option {
	return func(c *pipelineConfig) {
		if now != nil {
			c.now = func() time.Time { return now().UTC() }
		}
	}
}

// WithRenderFormat overrides the settings' render format for stored content.
func WithRenderFormat(f config.RenderFormat) Option {
	return func(c *pipelineConfig) {
		c.format = f
	}
}

// WithIDGenerator overrides release ID generation. Default: random UUIDs.
func WithIDGenerator(newID func() string) Option {
	return func(c *pipelineConfig) {
		c.newID = newID
	}
}
