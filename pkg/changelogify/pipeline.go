package changelogify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
	"github.com/randalmurphal/changelogify/pkg/changelogify/observability"
	"github.com/randalmurphal/changelogify/pkg/changelogify/release"
	"github.com/randalmurphal/changelogify/pkg/changelogify/section"
	"github.com/randalmurphal/changelogify/pkg/changelogify/source"
	"go.opentelemetry.io/otel/attribute"
)

// Pipeline composes the aggregator, categorizer and assembler for one
// settings value. It holds no per-run state; concurrent runs are allowed
// and are not serialized against each other.
type Pipeline struct {
	settings    config.Settings
	registry    *source.Registry
	store       release.Store
	aggregator  *source.Aggregator
	categorizer *section.Categorizer
	assembler   *release.Assembler

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	now     func() time.Time
}

// GenerateRequest describes a run whose window is derived from a range type.
type GenerateRequest struct {
	// Version of the new release. Empty means SuggestVersion.
	Version string
	// RangeType selects the window. Empty means the configured type.
	RangeType config.RangeType
	// From and To bound a custom range. Zero values take the custom defaults.
	From time.Time
	To   time.Time
}

// New creates a pipeline over registry and store. The settings are
// sanitized; the mapping, enabled sources and render format are fixed for
// the pipeline's lifetime. Build a new Pipeline when settings change.
func New(registry *source.Registry, store release.Store, settings config.Settings, opts ...Option) *Pipeline {
	cfg := defaultPipelineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	settings = settings.Sanitize()
	format := settings.RenderFormat
	if cfg.format != "" {
		format = cfg.format
	}

	categorizer := section.NewCategorizer(
		section.NewMapping(settings.EventMapping),
		section.WithCategorizerLogger(cfg.logger),
	)

	assemblerOpts := []release.AssemblerOption{
		release.WithRenderFormat(format),
		release.WithAssemblerClock(cfg.now),
	}
	if cfg.newID != nil {
		assemblerOpts = append(assemblerOpts, release.WithIDGenerator(cfg.newID))
	}

	return &Pipeline{
		settings: settings,
		registry: registry,
		store:    store,
		aggregator: source.NewAggregator(registry,
			source.WithAggregatorLogger(cfg.logger),
			source.WithAggregatorMetrics(cfg.metrics),
			source.WithAggregatorSpans(cfg.spans),
		),
		categorizer: categorizer,
		assembler:   release.NewAssembler(categorizer, store, assemblerOpts...),
		logger:      cfg.logger,
		metrics:     cfg.metrics,
		spans:       cfg.spans,
		now:         cfg.now,
	}
}

// Settings returns the sanitized settings the pipeline was built with.
func (p *Pipeline) Settings() config.Settings {
	return p.settings
}

// Registry returns the source registry.
func (p *Pipeline) Registry() *source.Registry {
	return p.registry
}

// Store returns the release store.
func (p *Pipeline) Store() release.Store {
	return p.store
}

// Generate collects events for the calendar dates from..to (inclusive, UTC),
// builds a draft release and returns its ID. An empty version is replaced
// by SuggestVersion.
//
// An inverted range is not rejected: it matches no events and yields an
// empty release. The only failures are a nil context, a failed read of the
// previous release while suggesting a version, and a failed write, which
// is returned as *PersistError.
func (p *Pipeline) Generate(ctx context.Context, version string, from, to time.Time) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}

	if version == "" {
		suggested, err := p.SuggestVersion(ctx)
		if err != nil {
			return "", err
		}
		version = suggested
	}

	done := observability.TimedOperation()
	w := event.DayWindow(from, to)
	logger := observability.EnrichLogger(p.logger, version, w.Start, w.End)

	ctx, span := p.spans.StartGenerateSpan(ctx, version, w.Start, w.End)

	events := p.aggregator.Collect(ctx, w, p.settings)
	p.spans.AddSpanEvent(ctx, "events_collected", attribute.Int("event_count", len(events)))

	r, err := p.assembler.Assemble(ctx, version, from, to, events)
	elapsed := done()
	if err != nil {
		perr := &PersistError{Version: version, Err: err}
		observability.LogReleaseError(logger, version, perr, elapsed)
		p.metrics.RecordRelease(ctx, false, msDuration(elapsed))
		p.spans.EndSpanWithError(span, perr)
		return "", perr
	}

	for _, sec := range r.Sections.NonEmpty() {
		p.metrics.RecordSection(ctx, sec.String(), len(r.Sections.Items(sec)))
	}
	observability.LogReleaseCreated(logger, r.ID, r.Version, r.Sections.Len(), elapsed)
	p.metrics.RecordRelease(ctx, true, msDuration(elapsed))
	p.spans.EndSpanWithError(span, nil)

	return r.ID, nil
}

// GenerateForRange derives the window from req.RangeType and generates a
// release for it.
func (p *Pipeline) GenerateForRange(ctx context.Context, req GenerateRequest) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}

	rangeType := req.RangeType
	if rangeType == "" {
		rangeType = p.settings.DateRangeType
	}

	last, err := p.LastRelease(ctx)
	if err != nil {
		return "", err
	}

	version := req.Version
	if version == "" {
		version = release.SuggestNext(last, p.settings.VersionPolicy)
	}

	dr := release.ResolveWindow(rangeType, last, p.now(), release.DateRange{From: req.From, To: req.To})
	return p.Generate(ctx, version, dr.From, dr.To)
}

// RunScheduled performs one unattended run: the configured range type with
// custom treated as since_last_release, and the suggested version.
func (p *Pipeline) RunScheduled(ctx context.Context) (string, error) {
	rangeType := p.settings.DateRangeType
	if rangeType == config.RangeCustom {
		rangeType = config.RangeSinceLastRelease
	}

	if p.logger != nil {
		p.logger.Info("scheduled run", slog.String("range_type", string(rangeType)))
	}
	return p.GenerateForRange(ctx, GenerateRequest{RangeType: rangeType})
}

// SuggestVersion proposes the next version from the most recent release
// under the configured version policy.
func (p *Pipeline) SuggestVersion(ctx context.Context) (string, error) {
	last, err := p.LastRelease(ctx)
	if err != nil {
		return "", err
	}
	return release.SuggestNext(last, p.settings.VersionPolicy), nil
}

// ResolveWindow derives the date range a run of rangeType would cover now.
func (p *Pipeline) ResolveWindow(ctx context.Context, rangeType config.RangeType, custom release.DateRange) (release.DateRange, error) {
	last, err := p.LastRelease(ctx)
	if err != nil {
		return release.DateRange{}, err
	}
	return release.ResolveWindow(rangeType, last, p.now(), custom), nil
}

// LastRelease returns the most recently created release of any status, or
// nil when there is none.
func (p *Pipeline) LastRelease(ctx context.Context) (*release.Release, error) {
	r, err := p.store.Latest(ctx)
	if errors.Is(err, release.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
