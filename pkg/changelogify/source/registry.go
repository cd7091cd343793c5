package source

import (
	"context"
	"sort"

	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
)

// priority orders the known adapters; unknown ids run after them in
// registration order.
var priority = map[string]int{
	IDHistory:     0,
	IDActivityLog: 1,
	IDNative:      2,
}

// Registry holds the adapters and decides which run.
type Registry struct {
	sources []Source
	byID    map[string]Source
}

// NewRegistry creates a registry. Registering two sources with the same id
// keeps the later one.
func NewRegistry(sources ...Source) *Registry {
	r := &Registry{byID: make(map[string]Source)}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// NewDefaultRegistry registers the three built-in adapters over h.
func NewDefaultRegistry(h *Handle) *Registry {
	return NewRegistry(
		NewHistorySource(h),
		NewActivityLogSource(h),
		NewNativeSource(h),
	)
}

// Register adds s, replacing any source with the same id.
func (r *Registry) Register(s Source) {
	if _, exists := r.byID[s.ID()]; exists {
		for i, existing := range r.sources {
			if existing.ID() == s.ID() {
				r.sources[i] = s
			}
		}
	} else {
		r.sources = append(r.sources, s)
	}
	r.byID[s.ID()] = s

	sort.SliceStable(r.sources, func(i, j int) bool {
		return rank(r.sources[i].ID()) < rank(r.sources[j].ID())
	})
}

// Get returns the source with id.
func (r *Registry) Get(id string) (Source, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// IDs returns every registered id in priority order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.sources))
	for i, s := range r.sources {
		ids[i] = s.ID()
	}
	return ids
}

// Available returns the ids whose backing store is present right now.
func (r *Registry) Available(ctx context.Context) []string {
	ids := []string{}
	for _, s := range r.sources {
		if s.Available(ctx) {
			ids = append(ids, s.ID())
		}
	}
	return ids
}

// Enabled returns the ids the configuration turns on.
func (r *Registry) Enabled(settings config.Settings) []string {
	out := make([]string, len(settings.EnabledSources))
	copy(out, settings.EnabledSources)
	return out
}

// Active returns the sources that are both enabled and available, in
// priority order.
func (r *Registry) Active(ctx context.Context, settings config.Settings) []Source {
	var active []Source
	for _, s := range r.sources {
		if settings.IsEnabled(s.ID()) && s.Available(ctx) {
			active = append(active, s)
		}
	}
	return active
}

func rank(id string) int {
	if p, ok := priority[id]; ok {
		return p
	}
	return len(priority)
}
