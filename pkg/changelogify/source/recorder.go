package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
)

// Notification kinds accepted by Recorder.Record.
const (
	KindPostTransition    = "post_transition"
	KindPluginActivated   = "plugin_activated"
	KindPluginDeactivated = "plugin_deactivated"
	KindThemeSwitched     = "theme_switched"
	KindPlatformUpdated   = "platform_updated"
)

// Post statuses that matter to the recorder.
const (
	StatusPublish = "publish"
	StatusTrash   = "trash"
)

// Notification is a lifecycle change reported by the host platform.
// Which fields are read depends on Kind.
type Notification struct {
	Kind string `json:"kind"`

	// Post transitions.
	NewStatus string `json:"new_status,omitempty"`
	OldStatus string `json:"old_status,omitempty"`
	PostID    int64  `json:"post_id,omitempty"`
	PostType  string `json:"post_type,omitempty"`
	Title     string `json:"title,omitempty"`

	// Plugins and themes.
	Plugin string `json:"plugin,omitempty"`
	Name   string `json:"name,omitempty"`

	// Platform upgrades.
	Version string `json:"version,omitempty"`

	ActorID int64 `json:"actor_id,omitempty"`
}

// Recorder turns lifecycle notifications into native log rows.
type Recorder struct {
	native *NativeSource
	logger *slog.Logger
	now    func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderLogger sets the logger for recorded notifications.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithClock overrides the recorder's time source.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder creates a recorder writing through native.
func NewRecorder(native *NativeSource, opts ...RecorderOption) *Recorder {
	r := &Recorder{native: native, now: utcNow}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record dispatches n by kind. It reports whether a row was written;
// ignored post transitions return false with no error.
func (r *Recorder) Record(ctx context.Context, n Notification) (bool, error) {
	switch n.Kind {
	case KindPostTransition:
		return r.PostTransition(ctx, n.NewStatus, n.OldStatus, n.PostID, n.PostType, n.Title, n.ActorID)
	case KindPluginActivated:
		return wrote(r.PluginActivated(ctx, n.Plugin, n.Name, n.ActorID))
	case KindPluginDeactivated:
		return wrote(r.PluginDeactivated(ctx, n.Plugin, n.Name, n.ActorID))
	case KindThemeSwitched:
		return wrote(r.ThemeSwitched(ctx, n.Name, n.ActorID))
	case KindPlatformUpdated:
		return wrote(r.PlatformUpdated(ctx, n.Version, n.ActorID))
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownNotification, n.Kind)
	}
}

func wrote(err error) (bool, error) {
	return err == nil, err
}

// PostTransition records a post entering the published state or moving
// from published to trash. Other transitions, including no-op ones, are
// ignored.
func (r *Recorder) PostTransition(ctx context.Context, newStatus, oldStatus string, postID int64, postType, title string, actorID int64) (bool, error) {
	if newStatus == oldStatus {
		return false, nil
	}

	switch {
	case newStatus == StatusPublish:
		return wrote(r.append(ctx, Record{
			Category:    "post",
			Action:      event.ActionPostPublish,
			Message:     fmt.Sprintf("Published %s: %s", postType, title),
			ActorID:     actorID,
			SubjectID:   postID,
			SubjectType: postType,
		}))
	case oldStatus == StatusPublish && newStatus == StatusTrash:
		return wrote(r.append(ctx, Record{
			Category:    "post",
			Action:      event.ActionPostTrashed,
			Message:     fmt.Sprintf("Trashed %s: %s", postType, title),
			ActorID:     actorID,
			SubjectID:   postID,
			SubjectType: postType,
		}))
	}
	return false, nil
}

// PluginActivated records a plugin activation. plugin is the plugin's
// file identifier, name its display name.
func (r *Recorder) PluginActivated(ctx context.Context, plugin, name string, actorID int64) error {
	return r.append(ctx, Record{
		Category:    "plugin",
		Action:      event.ActionPluginActivated,
		Message:     "Activated plugin: " + pluginName(plugin, name),
		ActorID:     actorID,
		SubjectType: "plugin",
		Metadata:    map[string]any{"plugin": plugin},
	})
}

// PluginDeactivated records a plugin deactivation.
func (r *Recorder) PluginDeactivated(ctx context.Context, plugin, name string, actorID int64) error {
	return r.append(ctx, Record{
		Category:    "plugin",
		Action:      event.ActionPluginDeactivated,
		Message:     "Deactivated plugin: " + pluginName(plugin, name),
		ActorID:     actorID,
		SubjectType: "plugin",
		Metadata:    map[string]any{"plugin": plugin},
	})
}

// ThemeSwitched records a theme switch.
func (r *Recorder) ThemeSwitched(ctx context.Context, name string, actorID int64) error {
	return r.append(ctx, Record{
		Category:    "theme",
		Action:      event.ActionThemeSwitched,
		Message:     "Switched theme to: " + name,
		ActorID:     actorID,
		SubjectType: "theme",
	})
}

// PlatformUpdated records a core platform upgrade.
func (r *Recorder) PlatformUpdated(ctx context.Context, version string, actorID int64) error {
	return r.append(ctx, Record{
		Category: "wordpress",
		Action:   event.ActionPlatformUpdated,
		Message:  "Updated WordPress to version " + version,
		ActorID:  actorID,
	})
}

func (r *Recorder) append(ctx context.Context, rec Record) error {
	if r.native == nil {
		return ErrNotConfigured
	}
	rec.Time = r.now()
	if err := r.native.Append(ctx, rec); err != nil {
		return err
	}
	if r.logger != nil {
		r.logger.Debug("notification recorded",
			slog.String("action", rec.Action),
			slog.Int64("actor_id", rec.ActorID),
		)
	}
	return nil
}

// pluginName falls back to the file identifier when no display name is known.
func pluginName(plugin, name string) string {
	if name != "" {
		return name
	}
	return plugin
}
