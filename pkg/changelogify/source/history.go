package source

import (
	"context"
	"database/sql"

	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
)

const historyTable = "simple_history"

// historyActions maps history message keys to the common vocabulary.
var historyActions = vocabulary(map[string]string{
	"post_created":      event.ActionPostPublish,
	"post_published":    event.ActionPostPublish,
	"post_updated":      event.ActionPostModified,
	"post_trashed":      event.ActionPostTrashed,
	"plugin_updated":    event.ActionPluginUpgraded,
	"plugin_deleted":    event.ActionPluginUninstalled,
	"theme_updated":     event.ActionThemeActivated,
	"core_updated":      event.ActionPlatformUpdated,
	"core_auto_updated": event.ActionPlatformUpdated,
	"user_role_updated": event.ActionUserRoleChanged,
})

// HistorySource reads the detailed history log.
type HistorySource struct {
	h *Handle
}

// NewHistorySource creates the history adapter. A nil handle makes the
// adapter permanently unavailable.
func NewHistorySource(h *Handle) *HistorySource {
	return &HistorySource{h: h}
}

// ID implements Source.
func (s *HistorySource) ID() string { return IDHistory }

// Available implements Source.
func (s *HistorySource) Available(ctx context.Context) bool {
	if s.h == nil {
		return false
	}
	ok, err := s.h.tableExists(ctx, s.h.Table(historyTable))
	return err == nil && ok
}

// Fetch implements Source.
func (s *HistorySource) Fetch(ctx context.Context, w event.Window) ([]event.Event, error) {
	if !s.Available(ctx) {
		return []event.Event{}, nil
	}

	lower, upper := s.h.dayBounds(w)
	rows, err := s.h.query(ctx,
		`SELECT date, logger, action, message, initiator_id FROM `+s.h.Table(historyTable)+`
		 WHERE date >= ? AND date < ?
		 ORDER BY date DESC`,
		lower, upper,
	)
	if err != nil {
		return nil, &SourceError{SourceID: IDHistory, Op: "query", Err: err}
	}
	defer rows.Close()

	events := []event.Event{}
	for rows.Next() {
		var (
			date      any
			logger    sql.NullString
			action    sql.NullString
			message   sql.NullString
			initiator sql.NullInt64
		)
		if err := rows.Scan(&date, &logger, &action, &message, &initiator); err != nil {
			return nil, &SourceError{SourceID: IDHistory, Op: "scan", Err: err}
		}

		ts, ok := scanTime(date)
		if !ok {
			continue
		}

		events = append(events, event.New(IDHistory, ts,
			normalize(historyActions, action),
			message.String,
			event.WithSourceType(logger.String),
			event.WithActor(initiator.Int64),
		))
	}
	if err := rows.Err(); err != nil {
		return nil, &SourceError{SourceID: IDHistory, Op: "iterate", Err: err}
	}

	return clip(events, w), nil
}
