package release

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
	"github.com/randalmurphal/changelogify/pkg/changelogify/section"
)

// Assembler turns events into a persisted draft release.
type Assembler struct {
	categorizer *section.Categorizer
	store       Store
	format      config.RenderFormat
	now         func() time.Time
	newID       func() string
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithRenderFormat selects the stored content format. Default is HTML.
func WithRenderFormat(f config.RenderFormat) AssemblerOption {
	return func(a *Assembler) {
		a.format = f
	}
}

// WithAssemblerClock overrides the creation timestamp source.
func WithAssemblerClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) {
		a.now = now
	}
}

// WithIDGenerator overrides UUID generation.
func WithIDGenerator(newID func() string) AssemblerOption {
	return func(a *Assembler) {
		a.newID = newID
	}
}

// NewAssembler creates an assembler.
func NewAssembler(categorizer *section.Categorizer, store Store, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		categorizer: categorizer,
		store:       store,
		format:      config.FormatHTML,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble categorizes events, renders the non-empty sections and stores
// the result as a draft. On store failure nothing is returned but the
// wrapped error.
func (a *Assembler) Assemble(ctx context.Context, version string, from, to time.Time, events []event.Event) (*Release, error) {
	bucket := a.categorizer.Categorize(events)

	r := &Release{
		ID:              a.newID(),
		Version:         version,
		Title:           TitleFor(version),
		Status:          StatusDraft,
		WindowStart:     event.Day(from),
		WindowEnd:       event.Day(to),
		Sections:        bucket,
		RenderedContent: section.Render(bucket, a.format),
		CreatedAt:       a.now().UTC(),
	}

	if err := a.store.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create release %s: %w", version, err)
	}
	return r, nil
}

// Store returns the assembler's store.
func (a *Assembler) Store() Store {
	return a.store
}
