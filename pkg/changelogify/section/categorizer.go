package section

import (
	"log/slog"

	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
	"github.com/randalmurphal/changelogify/pkg/changelogify/observability"
)

// Categorizer buckets events into sections through a Mapping.
type Categorizer struct {
	mapping Mapping
	logger  *slog.Logger
}

// CategorizerOption configures a Categorizer.
type CategorizerOption func(*Categorizer)

// WithCategorizerLogger logs events dropped by invalid mappings.
func WithCategorizerLogger(logger *slog.Logger) CategorizerOption {
	return func(c *Categorizer) {
		c.logger = logger
	}
}

// NewCategorizer creates a categorizer over mapping.
func NewCategorizer(mapping Mapping, opts ...CategorizerOption) *Categorizer {
	c := &Categorizer{mapping: mapping}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Categorize places each event's message in its resolved section, keeping
// the first occurrence of duplicate messages. Events whose action resolves
// to an unknown section are dropped.
func (c *Categorizer) Categorize(events []event.Event) *Bucket {
	b := NewBucket()
	for _, e := range events {
		sec := c.mapping.Resolve(e.Action())
		if !sec.Valid() {
			observability.LogMappingDropped(c.logger, e.Action(), string(sec))
			continue
		}
		b.Add(sec, e.Message())
	}
	return b
}

// Mapping returns the categorizer's mapping.
func (c *Categorizer) Mapping() Mapping {
	return c.mapping
}
