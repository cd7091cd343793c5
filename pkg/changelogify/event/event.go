// Package event defines the normalized activity record shared by every
// source adapter, the common action vocabulary and the time window an
// aggregation run covers.
//
// Events are immutable once created. All fields are unexported and read
// through accessor methods; construct them with New and EventOption values.
package event

import (
	"encoding/json"
	"time"
)

// Event is one noteworthy action produced by a source adapter.
type Event struct {
	timestamp   time.Time
	sourceType  string
	action      string
	message     string
	actorID     int64
	origin      string
	subjectID   int64
	subjectType string
}

// Timestamp returns when the underlying action occurred.
func (e Event) Timestamp() time.Time {
	return e.timestamp
}

// SourceType returns the free-form classification from the originating
// system (a logger or category name).
func (e Event) SourceType() string {
	return e.sourceType
}

// Action returns the machine-readable action identifier used for
// categorization. Never empty.
func (e Event) Action() string {
	return e.action
}

// Message returns the human-readable description.
func (e Event) Message() string {
	return e.message
}

// ActorID returns the responsible principal, or 0 when system-initiated.
func (e Event) ActorID() int64 {
	return e.actorID
}

// Origin returns the id of the source adapter that produced the event.
func (e Event) Origin() string {
	return e.origin
}

// SubjectID returns the id of the object acted upon, or 0.
func (e Event) SubjectID() int64 {
	return e.subjectID
}

// SubjectType returns the kind of object acted upon, or "".
func (e Event) SubjectType() string {
	return e.subjectType
}

// MarshalJSON implements json.Marshaler.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEvent{
		Timestamp:   e.timestamp,
		SourceType:  e.sourceType,
		Action:      e.action,
		Message:     e.message,
		ActorID:     e.actorID,
		Origin:      e.origin,
		SubjectID:   e.subjectID,
		SubjectType: e.subjectType,
	})
}

type wireEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	SourceType  string    `json:"source_type"`
	Action      string    `json:"action"`
	Message     string    `json:"message"`
	ActorID     int64     `json:"actor_id"`
	Origin      string    `json:"origin"`
	SubjectID   int64     `json:"subject_id,omitempty"`
	SubjectType string    `json:"subject_type,omitempty"`
}

// EventOption configures event creation.
type EventOption func(*Event)

// WithSourceType sets the originating system's classification.
// An empty value is replaced with "unknown".
func WithSourceType(sourceType string) EventOption {
	return func(e *Event) {
		e.sourceType = sourceType
	}
}

// WithActor sets the responsible principal.
func WithActor(actorID int64) EventOption {
	return func(e *Event) {
		e.actorID = actorID
	}
}

// WithSubject sets the object the action was applied to.
func WithSubject(id int64, subjectType string) EventOption {
	return func(e *Event) {
		e.subjectID = id
		e.subjectType = subjectType
	}
}

// New creates an event. Timestamps are normalized to UTC and an empty
// action is replaced with ActionUnknown so the categorization key is
// always present.
func New(origin string, ts time.Time, action, message string, opts ...EventOption) Event {
	e := Event{
		timestamp: ts.UTC(),
		action:    action,
		message:   message,
		origin:    origin,
	}

	for _, opt := range opts {
		opt(&e)
	}

	if e.action == "" {
		e.action = ActionUnknown
	}
	if e.sourceType == "" {
		e.sourceType = ActionUnknown
	}
	return e
}
