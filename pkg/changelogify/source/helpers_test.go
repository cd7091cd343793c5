package source_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
	"github.com/randalmurphal/changelogify/pkg/changelogify/source"
	"github.com/stretchr/testify/require"
)

// openHandle opens a file-backed SQLite database in a temp dir.
func openHandle(t *testing.T) *source.Handle {
	t.Helper()
	h, err := source.Open("sqlite", filepath.Join(t.TempDir(), "site.db"), source.DefaultPrefix)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func mustExec(t *testing.T, h *source.Handle, query string, args ...any) {
	t.Helper()
	_, err := h.DB().ExecContext(context.Background(), query, args...)
	require.NoError(t, err)
}

func createHistoryTable(t *testing.T, h *source.Handle) {
	mustExec(t, h, `CREATE TABLE wp_simple_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		logger TEXT,
		action TEXT,
		message TEXT,
		initiator_id INTEGER
	)`)
}

func createActivityTable(t *testing.T, h *source.Handle) {
	mustExec(t, h, `CREATE TABLE wp_wsal_occurrences (
		id INTEGER PRIMARY KEY,
		created_on REAL NOT NULL,
		alert_id INTEGER,
		user_id INTEGER
	)`)
}

// janWindow covers 2024-01-10 through 2024-01-12 inclusive.
func janWindow() event.Window {
	return event.DayWindow(
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
	)
}

func messages(events []event.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Message()
	}
	return out
}

func actions(events []event.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Action()
	}
	return out
}

// fakeSource is an in-memory Source for registry and aggregator tests.
type fakeSource struct {
	id        string
	available bool
	events    []event.Event
	err       error
	calls     int
}

func (f *fakeSource) ID() string { return f.id }

func (f *fakeSource) Available(context.Context) bool { return f.available }

func (f *fakeSource) Fetch(_ context.Context, w event.Window) ([]event.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []event.Event
	for _, e := range f.events {
		if w.Contains(e.Timestamp()) {
			out = append(out, e)
		}
	}
	return out, nil
}
