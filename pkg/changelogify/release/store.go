package release

import (
	"context"
	"errors"
	"sort"

	"github.com/randalmurphal/changelogify/pkg/changelogify/section"
)

// Store persists releases. Implementations must be safe for concurrent use.
type Store interface {
	// Create stores a new release. Returns ErrDuplicate if the ID exists.
	Create(ctx context.Context, r *Release) error

	// Get returns a release by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Release, error)

	// Latest returns the most recently created release regardless of
	// status, or ErrNotFound when there are none.
	Latest(ctx context.Context) (*Release, error)

	// List returns releases newest first. Returns an empty slice (not an
	// error) when nothing matches.
	List(ctx context.Context, f ListFilter) ([]*Release, error)

	// Close releases any resources (connections, files).
	Close() error
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Version string
	Status  Status
	// Limit caps the result; zero or negative means no cap.
	Limit int
}

func (f ListFilter) match(r *Release) bool {
	if f.Version != "" && r.Version != f.Version {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a release doesn't exist.
	ErrNotFound = errors.New("release not found")

	// ErrDuplicate indicates a release with the same ID already exists.
	ErrDuplicate = errors.New("release already exists")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("release store closed")
)

// stored pairs a release with its insertion sequence, which breaks ties
// between equal creation times.
type stored struct {
	seq     int64
	release *Release
}

// newestFirst sorts by CreatedAt descending, later insertions first on ties.
func newestFirst(items []stored) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.release.CreatedAt.Equal(b.release.CreatedAt) {
			return a.release.CreatedAt.After(b.release.CreatedAt)
		}
		return a.seq > b.seq
	})
}

// applyFilter filters sorted items and returns the releases.
func applyFilter(items []stored, f ListFilter) []*Release {
	out := []*Release{}
	for _, it := range items {
		if !f.match(it.release) {
			continue
		}
		out = append(out, it.release)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

// clone returns a deep copy so callers cannot mutate stored state.
func clone(r *Release) *Release {
	c := *r
	if r.Sections != nil {
		b := section.NewBucket()
		for _, s := range section.All {
			for _, item := range r.Sections.Items(s) {
				b.Add(s, item)
			}
		}
		c.Sections = b
	}
	return &c
}
