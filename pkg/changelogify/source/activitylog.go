package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
)

const activityLogTable = "wsal_occurrences"

// alertActions maps audit log alert ids to the common vocabulary.
var alertActions = map[int64]string{
	2001: event.ActionPostPublish,
	2002: event.ActionPostModified,
	2008: event.ActionPostTrashed,
	5000: event.ActionPluginInstalled,
	5001: event.ActionPluginActivated,
	5002: event.ActionPluginDeactivated,
	5003: event.ActionPluginUninstalled,
	5004: event.ActionPluginUpgraded,
	5005: event.ActionThemeInstalled,
	5006: event.ActionThemeActivated,
	5007: event.ActionThemeDeleted,
	6004: event.ActionPlatformUpdated,
	4000: event.ActionUserCreated,
	4001: event.ActionUserRoleChanged,
}

// ActivityLogSource reads the security audit log. Its timestamps are unix
// seconds and it carries no message text, so messages are synthesized from
// the occurrence id.
type ActivityLogSource struct {
	h *Handle
}

// NewActivityLogSource creates the audit log adapter.
func NewActivityLogSource(h *Handle) *ActivityLogSource {
	return &ActivityLogSource{h: h}
}

// ID implements Source.
func (s *ActivityLogSource) ID() string { return IDActivityLog }

// Available implements Source.
func (s *ActivityLogSource) Available(ctx context.Context) bool {
	if s.h == nil {
		return false
	}
	ok, err := s.h.tableExists(ctx, s.h.Table(activityLogTable))
	return err == nil && ok
}

// Fetch implements Source.
func (s *ActivityLogSource) Fetch(ctx context.Context, w event.Window) ([]event.Event, error) {
	if !s.Available(ctx) {
		return []event.Event{}, nil
	}

	rows, err := s.h.query(ctx,
		`SELECT id, created_on, alert_id, user_id FROM `+s.h.Table(activityLogTable)+`
		 WHERE created_on >= ? AND created_on < ?
		 ORDER BY created_on DESC`,
		w.Start.Unix(), w.End.Unix()+1,
	)
	if err != nil {
		return nil, &SourceError{SourceID: IDActivityLog, Op: "query", Err: err}
	}
	defer rows.Close()

	events := []event.Event{}
	for rows.Next() {
		var (
			id        sql.NullInt64
			createdOn sql.NullFloat64
			alertID   sql.NullInt64
			userID    sql.NullInt64
		)
		if err := rows.Scan(&id, &createdOn, &alertID, &userID); err != nil {
			return nil, &SourceError{SourceID: IDActivityLog, Op: "scan", Err: err}
		}
		if !createdOn.Valid {
			continue
		}

		sourceType := "alert_unknown"
		action := event.ActionUnknown
		if alertID.Valid {
			sourceType = fmt.Sprintf("alert_%d", alertID.Int64)
			action = alertAction(alertID.Int64)
		}

		events = append(events, event.New(IDActivityLog,
			time.Unix(int64(createdOn.Float64), 0),
			action,
			fmt.Sprintf("Activity Log Event #%d", id.Int64),
			event.WithSourceType(sourceType),
			event.WithActor(userID.Int64),
		))
	}
	if err := rows.Err(); err != nil {
		return nil, &SourceError{SourceID: IDActivityLog, Op: "iterate", Err: err}
	}

	return clip(events, w), nil
}

func alertAction(id int64) string {
	if a, ok := alertActions[id]; ok {
		return a
	}
	return event.UnknownActionInt(id)
}
