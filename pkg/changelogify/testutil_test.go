package changelogify_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
	"github.com/randalmurphal/changelogify/pkg/changelogify/release"
	"github.com/randalmurphal/changelogify/pkg/changelogify/source"
	"github.com/stretchr/testify/require"
)

// staticSource returns fixed events filtered by the window.
type staticSource struct {
	id        string
	available bool
	events    []event.Event
	err       error

	mu      sync.Mutex
	windows []event.Window
}

func (s *staticSource) ID() string                       { return s.id }
func (s *staticSource) Available(_ context.Context) bool { return s.available }

func (s *staticSource) Fetch(_ context.Context, w event.Window) ([]event.Event, error) {
	s.mu.Lock()
	s.windows = append(s.windows, w)
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	var out []event.Event
	for _, e := range s.events {
		if w.Contains(e.Timestamp()) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *staticSource) lastWindow() event.Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windows[len(s.windows)-1]
}

// brokenStore fails every write and otherwise behaves like a MemoryStore.
type brokenStore struct {
	*release.MemoryStore
}

var errDiskFull = errors.New("disk full")

func (brokenStore) Create(context.Context, *release.Release) error {
	return errDiskFull
}

// unreadableStore fails every read.
type unreadableStore struct {
	*release.MemoryStore
}

var errReadFailed = errors.New("connection reset")

func (unreadableStore) Latest(context.Context) (*release.Release, error) {
	return nil, errReadFailed
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// openNative opens a SQLite site database with the native log installed.
func openNative(t *testing.T) (*source.Handle, *source.NativeSource) {
	t.Helper()
	h, err := source.Open("sqlite", filepath.Join(t.TempDir(), "site.db"), source.DefaultPrefix)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	native := source.NewNativeSource(h)
	require.NoError(t, native.EnsureSchema(context.Background()))
	return h, native
}
