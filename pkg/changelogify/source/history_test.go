package source_test

import (
	"context"
	"testing"

	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
	"github.com/randalmurphal/changelogify/pkg/changelogify/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistorySource_UnavailableWithoutTable(t *testing.T) {
	h := openHandle(t)
	s := source.NewHistorySource(h)
	ctx := context.Background()

	assert.Equal(t, source.IDHistory, s.ID())
	assert.False(t, s.Available(ctx))

	events, err := s.Fetch(ctx, janWindow())
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestHistorySource_NilHandle(t *testing.T) {
	s := source.NewHistorySource(nil)

	assert.False(t, s.Available(context.Background()))
	events, err := s.Fetch(context.Background(), janWindow())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestHistorySource_FetchFiltersInclusive(t *testing.T) {
	h := openHandle(t)
	createHistoryTable(t, h)

	rows := []struct {
		date, action, message string
	}{
		{"2024-01-09 23:59:59", "plugin_activated", "before"},
		{"2024-01-10 00:00:00", "plugin_activated", "at start"},
		{"2024-01-11 12:00:00", "plugin_updated", "middle"},
		{"2024-01-12 23:59:59", "core_updated", "at end"},
		{"2024-01-13 00:00:00", "plugin_activated", "after"},
	}
	for _, r := range rows {
		mustExec(t, h, `INSERT INTO wp_simple_history (date, logger, action, message, initiator_id) VALUES (?, 'SimplePluginLogger', ?, ?, 2)`,
			r.date, r.action, r.message)
	}

	s := source.NewHistorySource(h)
	require.True(t, s.Available(context.Background()))

	events, err := s.Fetch(context.Background(), janWindow())
	require.NoError(t, err)

	assert.Equal(t, []string{"at end", "middle", "at start"}, messages(events))
	assert.Equal(t, []string{event.ActionPlatformUpdated, event.ActionPluginUpgraded, event.ActionPluginActivated}, actions(events))
	for _, e := range events {
		assert.Equal(t, source.IDHistory, e.Origin())
		assert.Equal(t, "SimplePluginLogger", e.SourceType())
		assert.Equal(t, int64(2), e.ActorID())
	}
}

func TestHistorySource_MalformedRowsGetDefaults(t *testing.T) {
	h := openHandle(t)
	createHistoryTable(t, h)

	mustExec(t, h, `INSERT INTO wp_simple_history (date) VALUES ('2024-01-11 08:00:00')`)
	mustExec(t, h, `INSERT INTO wp_simple_history (date, action, message) VALUES ('2024-01-11 07:00:00', 'custom_thing', 'odd')`)

	events, err := source.NewHistorySource(h).Fetch(context.Background(), janWindow())
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, event.ActionUnknown, events[0].Action())
	assert.Equal(t, "", events[0].Message())
	assert.Equal(t, event.ActionUnknown, events[0].SourceType())
	assert.Equal(t, int64(0), events[0].ActorID())

	assert.Equal(t, "unknown_custom_thing", events[1].Action())
}

func TestHistorySource_MixedTimestampLayouts(t *testing.T) {
	h := openHandle(t)
	createHistoryTable(t, h)

	rows := []struct{ date, message string }{
		{"2024-01-09T23:59:59Z", "iso before"},
		{"2024-01-10T10:00:00Z", "iso first day"},
		{"2024-01-12T10:00:00Z", "iso last day"},
		{"2024-01-12 23:59:59.5", "fractional last second"},
		{"2024-01-13T00:00:00Z", "iso after"},
	}
	for _, r := range rows {
		mustExec(t, h, `INSERT INTO wp_simple_history (date, action, message) VALUES (?, 'plugin_activated', ?)`,
			r.date, r.message)
	}

	events, err := source.NewHistorySource(h).Fetch(context.Background(), janWindow())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"iso first day", "iso last day", "fractional last second"}, messages(events))
}
