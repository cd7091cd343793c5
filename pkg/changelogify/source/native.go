package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
)

const nativeTable = "changelogify_native_events"

// nativeActions maps the category/action pairs written by older recorders
// to the common vocabulary. Current rows already carry common actions.
var nativeActions = vocabulary(map[string]string{
	"post/publish":       event.ActionPostPublish,
	"post/trash":         event.ActionPostTrashed,
	"plugin/activated":   event.ActionPluginActivated,
	"plugin/deactivated": event.ActionPluginDeactivated,
	"theme/switched":     event.ActionThemeSwitched,
	"wordpress/updated":  event.ActionPlatformUpdated,
})

// Record is one row appended to the native log.
type Record struct {
	Time        time.Time
	Category    string
	Action      string
	Message     string
	ActorID     int64
	SubjectID   int64
	SubjectType string
	Metadata    map[string]any
}

// NativeSource reads and appends to the native action log. The table is
// created on first use.
type NativeSource struct {
	h *Handle

	mu          sync.Mutex
	schemaReady bool
}

// NewNativeSource creates the native adapter.
func NewNativeSource(h *Handle) *NativeSource {
	return &NativeSource{h: h}
}

// ID implements Source.
func (s *NativeSource) ID() string { return IDNative }

// Available implements Source. The native log needs only a database; its
// table is created lazily.
func (s *NativeSource) Available(_ context.Context) bool {
	return s.h != nil
}

// EnsureSchema creates the native table and indexes if missing. Safe to
// call repeatedly; a failed attempt is retried on the next call.
func (s *NativeSource) EnsureSchema(ctx context.Context) error {
	if s.h == nil {
		return ErrNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schemaReady {
		return nil
	}
	for _, stmt := range s.h.dialect.NativeSchema(s.h.Table(nativeTable)) {
		if _, err := s.h.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create native table: %w", err)
		}
	}
	s.schemaReady = true
	return nil
}

// Fetch implements Source.
func (s *NativeSource) Fetch(ctx context.Context, w event.Window) ([]event.Event, error) {
	if s.h == nil {
		return []event.Event{}, nil
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, &SourceError{SourceID: IDNative, Op: "schema", Err: err}
	}

	lower, upper := s.h.dayBounds(w)
	rows, err := s.h.query(ctx,
		`SELECT event_date, event_type, action, message, user_id, object_id, object_type
		 FROM `+s.h.Table(nativeTable)+`
		 WHERE event_date >= ? AND event_date < ?
		 ORDER BY event_date DESC`,
		lower, upper,
	)
	if err != nil {
		return nil, &SourceError{SourceID: IDNative, Op: "query", Err: err}
	}
	defer rows.Close()

	events := []event.Event{}
	for rows.Next() {
		var (
			date       any
			category   sql.NullString
			action     sql.NullString
			message    sql.NullString
			userID     sql.NullInt64
			objectID   sql.NullInt64
			objectType sql.NullString
		)
		if err := rows.Scan(&date, &category, &action, &message, &userID, &objectID, &objectType); err != nil {
			return nil, &SourceError{SourceID: IDNative, Op: "scan", Err: err}
		}

		ts, ok := scanTime(date)
		if !ok {
			continue
		}

		events = append(events, event.New(IDNative, ts,
			nativeAction(category, action),
			message.String,
			event.WithSourceType(category.String),
			event.WithActor(userID.Int64),
			event.WithSubject(objectID.Int64, objectType.String),
		))
	}
	if err := rows.Err(); err != nil {
		return nil, &SourceError{SourceID: IDNative, Op: "iterate", Err: err}
	}

	return clip(events, w), nil
}

// Append writes one record, creating the table first if needed.
func (s *NativeSource) Append(ctx context.Context, r Record) error {
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}

	var meta any
	if len(r.Metadata) > 0 {
		data, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		meta = string(data)
	}

	_, err := s.h.exec(ctx,
		`INSERT INTO `+s.h.Table(nativeTable)+`
		 (event_date, event_type, action, message, user_id, object_id, object_type, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.h.dialect.TimeArg(r.Time), r.Category, r.Action, r.Message,
		r.ActorID, r.SubjectID, r.SubjectType, meta,
	)
	if err != nil {
		return fmt.Errorf("insert native event: %w", err)
	}
	return nil
}

func nativeAction(category, action sql.NullString) string {
	if a, ok := nativeActions[category.String+"/"+action.String]; ok && action.Valid {
		return a
	}
	return normalize(nativeActions, action)
}
