package changelogify_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify"
	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
	"github.com/randalmurphal/changelogify/pkg/changelogify/release"
	"github.com/randalmurphal/changelogify/pkg/changelogify/section"
	"github.com/randalmurphal/changelogify/pkg/changelogify/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_EndToEnd_NativeLog(t *testing.T) {
	ctx := context.Background()
	h, native := openNative(t)

	recorder := source.NewRecorder(native, source.WithClock(fixedClock(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC))))
	require.NoError(t, recorder.PluginActivated(ctx, "foo/foo.php", "Foo", 1))
	written, err := recorder.PostTransition(ctx, source.StatusPublish, "draft", 42, "post", "Hello", 1)
	require.NoError(t, err)
	require.True(t, written)

	store := release.NewMemoryStore()
	p := changelogify.New(source.NewDefaultRegistry(h), store, config.DefaultSettings())

	id, err := p.Generate(ctx, "1.0.0", day(2024, 1, 1), day(2024, 1, 7))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	r, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Release 1.0.0", r.Title)
	assert.Equal(t, release.StatusDraft, r.Status)
	assert.Equal(t, []string{"Published post: Hello"}, r.Sections.Items(section.Added))
	assert.Equal(t, []string{"Activated plugin: Foo"}, r.Sections.Items(section.Changed))

	content := r.RenderedContent
	added := strings.Index(content, "<h3>Added</h3>")
	changed := strings.Index(content, "<h3>Changed</h3>")
	require.GreaterOrEqual(t, added, 0)
	require.GreaterOrEqual(t, changed, 0)
	assert.Less(t, added, changed)
	assert.Equal(t, 2, strings.Count(content, "<li>"))
	assert.NotContains(t, content, "Fixed")
	assert.NotContains(t, content, "Removed")
	assert.NotContains(t, content, "Security")
}

func TestPipeline_Generate_WindowBounds(t *testing.T) {
	src := &staticSource{id: source.IDNative, available: true, events: []event.Event{
		event.New(source.IDNative, time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), event.ActionPostPublish, "before"),
		event.New(source.IDNative, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), event.ActionPostPublish, "first instant"),
		event.New(source.IDNative, time.Date(2024, 1, 7, 23, 59, 59, 0, time.UTC), event.ActionPostPublish, "last second"),
		event.New(source.IDNative, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), event.ActionPostPublish, "after"),
	}}

	store := release.NewMemoryStore()
	p := changelogify.New(source.NewRegistry(src), store, config.DefaultSettings())

	id, err := p.Generate(context.Background(), "1.0.0", day(2024, 1, 1), day(2024, 1, 7))
	require.NoError(t, err)

	r, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"last second", "first instant"}, r.Sections.Items(section.Added))
	assert.Equal(t, day(2024, 1, 1), r.WindowStart)
	assert.Equal(t, day(2024, 1, 7), r.WindowEnd)
}

func TestPipeline_Generate_UserMappingOverrides(t *testing.T) {
	ts := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	src := &staticSource{id: source.IDNative, available: true, events: []event.Event{
		event.New(source.IDNative, ts, event.ActionPluginActivated, "Activated plugin: Foo"),
		event.New(source.IDNative, ts, "custom_thing", "Something custom"),
		event.New(source.IDNative, ts, event.ActionPostModified, "Edited post: About"),
	}}

	settings := config.DefaultSettings()
	settings.EventMapping = map[string]string{
		event.ActionPluginActivated: "added",
		event.ActionPostModified:    "bogus",
	}

	store := release.NewMemoryStore()
	p := changelogify.New(source.NewRegistry(src), store, settings)

	id, err := p.Generate(context.Background(), "1.0.0", day(2024, 1, 1), day(2024, 1, 7))
	require.NoError(t, err)

	r, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Activated plugin: Foo"}, r.Sections.Items(section.Added))
	assert.Equal(t, []string{"Something custom"}, r.Sections.Items(section.Changed))
	assert.Equal(t, 2, r.Sections.Len())
}

func TestPipeline_Generate_SourceFailureStillCreatesRelease(t *testing.T) {
	broken := &staticSource{id: source.IDHistory, available: true, err: errors.New("no such column")}
	ok := &staticSource{id: source.IDNative, available: true, events: []event.Event{
		event.New(source.IDNative, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), event.ActionPostPublish, "Published post: A"),
	}}

	settings := config.DefaultSettings()
	settings.EnabledSources = []string{source.IDHistory, source.IDNative}

	store := release.NewMemoryStore()
	p := changelogify.New(source.NewRegistry(broken, ok), store, settings)

	id, err := p.Generate(context.Background(), "1.0.0", day(2024, 1, 1), day(2024, 1, 7))
	require.NoError(t, err)

	r, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Sections.Len())
}

func TestPipeline_Generate_NoSourcesYieldsEmptyRelease(t *testing.T) {
	store := release.NewMemoryStore()
	p := changelogify.New(source.NewRegistry(), store, config.DefaultSettings())

	id, err := p.Generate(context.Background(), "1.0.0", day(2024, 1, 1), day(2024, 1, 7))
	require.NoError(t, err)

	r, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, r.Sections.Empty())
	assert.Equal(t, "", r.RenderedContent)
}

func TestPipeline_Generate_InvertedRangeIsEmpty(t *testing.T) {
	src := &staticSource{id: source.IDNative, available: true, events: []event.Event{
		event.New(source.IDNative, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), event.ActionPostPublish, "x"),
	}}
	store := release.NewMemoryStore()
	p := changelogify.New(source.NewRegistry(src), store, config.DefaultSettings())

	id, err := p.Generate(context.Background(), "1.0.0", day(2024, 1, 7), day(2024, 1, 1))
	require.NoError(t, err)

	r, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, r.Sections.Empty())
}

func TestPipeline_Generate_PersistFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	p := changelogify.New(source.NewRegistry(), brokenStore{release.NewMemoryStore()}, config.DefaultSettings(),
		changelogify.WithLogger(logger))

	id, err := p.Generate(context.Background(), "1.0.0", day(2024, 1, 1), day(2024, 1, 7))
	assert.Empty(t, id)

	var perr *changelogify.PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "1.0.0", perr.Version)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Contains(t, buf.String(), "release generation failed")
}

func TestPipeline_Generate_NilContext(t *testing.T) {
	p := changelogify.New(source.NewRegistry(), release.NewMemoryStore(), config.DefaultSettings())

	//nolint:staticcheck // SA1012: nil context is the case under test
	_, err := p.Generate(nil, "1.0.0", day(2024, 1, 1), day(2024, 1, 7))
	assert.ErrorIs(t, err, changelogify.ErrNilContext)
}

func TestPipeline_Generate_EmptyVersionIsSuggested(t *testing.T) {
	store := release.NewMemoryStore()
	p := changelogify.New(source.NewRegistry(), store, config.DefaultSettings())
	ctx := context.Background()

	first, err := p.Generate(ctx, "", day(2024, 1, 1), day(2024, 1, 7))
	require.NoError(t, err)
	second, err := p.Generate(ctx, "", day(2024, 1, 8), day(2024, 1, 14))
	require.NoError(t, err)

	r1, err := store.Get(ctx, first)
	require.NoError(t, err)
	r2, err := store.Get(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", r1.Version)
	assert.Equal(t, "1.0.1", r2.Version)
}

func TestPipeline_SuggestVersion(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		last   string
		policy config.VersionPolicy
		want   string
	}{
		{"no releases", "", config.VersionStrict, "1.0.0"},
		{"patch increment", "1.2.3", config.VersionStrict, "1.2.4"},
		{"non semver resets", "v1", config.VersionStrict, "1.0.0"},
		{"lenient keeps prerelease core", "2.5.0-beta", config.VersionLenient, "2.5.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := release.NewMemoryStore()
			if tt.last != "" {
				require.NoError(t, store.Create(ctx, &release.Release{ID: "prev", Version: tt.last, CreatedAt: time.Now()}))
			}
			settings := config.DefaultSettings()
			settings.VersionPolicy = tt.policy

			got, err := changelogify.New(source.NewRegistry(), store, settings).SuggestVersion(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPipeline_LastRelease(t *testing.T) {
	ctx := context.Background()
	store := release.NewMemoryStore()
	p := changelogify.New(source.NewRegistry(), store, config.DefaultSettings())

	last, err := p.LastRelease(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Create(ctx, &release.Release{ID: "a", Version: "1.0.0", Status: release.StatusPublish, CreatedAt: base}))
	require.NoError(t, store.Create(ctx, &release.Release{ID: "b", Version: "1.0.1", Status: release.StatusDraft, CreatedAt: base.Add(time.Hour)}))

	last, err = p.LastRelease(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", last.ID)
}

func TestPipeline_ReadFailurePropagates(t *testing.T) {
	p := changelogify.New(source.NewRegistry(), unreadableStore{release.NewMemoryStore()}, config.DefaultSettings())

	_, err := p.SuggestVersion(context.Background())
	assert.ErrorIs(t, err, errReadFailed)

	_, err = p.RunScheduled(context.Background())
	assert.ErrorIs(t, err, errReadFailed)
}

func TestPipeline_GenerateForRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	ctx := context.Background()

	tests := []struct {
		name     string
		req      changelogify.GenerateRequest
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			name:     "last 7 days",
			req:      changelogify.GenerateRequest{RangeType: config.RangeLast7Days},
			wantFrom: day(2024, 3, 8),
			wantTo:   day(2024, 3, 15),
		},
		{
			name:     "custom",
			req:      changelogify.GenerateRequest{RangeType: config.RangeCustom, From: day(2024, 2, 1), To: day(2024, 2, 10)},
			wantFrom: day(2024, 2, 1),
			wantTo:   day(2024, 2, 10),
		},
		{
			name:     "configured default without history",
			req:      changelogify.GenerateRequest{},
			wantFrom: day(2024, 2, 14),
			wantTo:   day(2024, 3, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &staticSource{id: source.IDNative, available: true}
			store := release.NewMemoryStore()
			p := changelogify.New(source.NewRegistry(src), store, config.DefaultSettings(),
				changelogify.WithClock(fixedClock(now)))

			id, err := p.GenerateForRange(ctx, tt.req)
			require.NoError(t, err)

			r, err := store.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "1.0.0", r.Version)
			assert.Equal(t, tt.wantFrom, r.WindowStart)
			assert.Equal(t, tt.wantTo, r.WindowEnd)
			assert.Equal(t, event.DayWindow(tt.wantFrom, tt.wantTo), src.lastWindow())
		})
	}
}

func TestPipeline_RunScheduled_SinceLastRelease(t *testing.T) {
	ctx := context.Background()
	store := release.NewMemoryStore()
	require.NoError(t, store.Create(ctx, &release.Release{
		ID:          "prev",
		Version:     "1.4.9",
		WindowStart: day(2024, 3, 1),
		WindowEnd:   day(2024, 3, 8),
		CreatedAt:   time.Date(2024, 3, 8, 6, 0, 0, 0, time.UTC),
	}))

	settings := config.DefaultSettings()
	settings.DateRangeType = config.RangeCustom

	p := changelogify.New(source.NewRegistry(), store, settings,
		changelogify.WithClock(fixedClock(time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC))),
		changelogify.WithIDGenerator(func() string { return "scheduled" }))

	id, err := p.RunScheduled(ctx)
	require.NoError(t, err)
	assert.Equal(t, "scheduled", id)

	r, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "1.4.10", r.Version)
	assert.Equal(t, day(2024, 3, 8), r.WindowStart)
	assert.Equal(t, day(2024, 3, 15), r.WindowEnd)
	assert.Equal(t, time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC), r.CreatedAt)
}

func TestPipeline_ResolveWindow(t *testing.T) {
	p := changelogify.New(source.NewRegistry(), release.NewMemoryStore(), config.DefaultSettings(),
		changelogify.WithClock(fixedClock(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))))

	dr, err := p.ResolveWindow(context.Background(), config.RangeLast30Days, release.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, release.DateRange{From: day(2024, 2, 14), To: day(2024, 3, 15)}, dr)
}

func TestPipeline_RenderFormatOverride(t *testing.T) {
	src := &staticSource{id: source.IDNative, available: true, events: []event.Event{
		event.New(source.IDNative, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), event.ActionPostPublish, "Published post: A"),
	}}
	store := release.NewMemoryStore()
	p := changelogify.New(source.NewRegistry(src), store, config.DefaultSettings(),
		changelogify.WithRenderFormat(config.FormatMarkdown))

	id, err := p.Generate(context.Background(), "1.0.0", day(2024, 1, 1), day(2024, 1, 7))
	require.NoError(t, err)

	r, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "### Added\n\n- Published post: A\n\n", r.RenderedContent)
}

func TestPipeline_SettingsAreSanitized(t *testing.T) {
	p := changelogify.New(source.NewRegistry(), release.NewMemoryStore(), config.Settings{
		DateRangeType: "sometime",
		CronFrequency: "hourly",
	})

	s := p.Settings()
	assert.Equal(t, config.RangeSinceLastRelease, s.DateRangeType)
	assert.Equal(t, config.FrequencyWeekly, s.CronFrequency)
	assert.Equal(t, config.VersionStrict, s.VersionPolicy)
	assert.Equal(t, config.FormatHTML, s.RenderFormat)
}

func TestPersistError(t *testing.T) {
	err := &changelogify.PersistError{Version: "2.0.0", Err: release.ErrDuplicate}

	assert.Equal(t, "persist release 2.0.0: release already exists", err.Error())
	assert.True(t, errors.Is(err, release.ErrDuplicate))
}
