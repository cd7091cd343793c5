// Package source reads activity records from the site's logging stores,
// normalizes them into events and merges them for a time window.
//
// Three adapters are provided, in priority order:
//
//	simple_history   detailed history log (<prefix>simple_history)
//	wp_activity_log  security audit log (<prefix>wsal_occurrences)
//	native           this system's own action log (<prefix>changelogify_native_events)
//
// A Registry decides which adapters run; an Aggregator runs them and orders
// the results. A Recorder writes lifecycle notifications into the native log.
package source

import (
	"context"
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
)

// Adapter ids.
const (
	IDHistory     = "simple_history"
	IDActivityLog = "wp_activity_log"
	IDNative      = "native"
)

// Source is one activity store.
type Source interface {
	// ID returns the stable adapter id.
	ID() string

	// Available reports whether the backing store is configured and
	// initialized right now.
	Available(ctx context.Context) bool

	// Fetch returns every event with Start <= timestamp <= End. A missing
	// store yields an empty slice and no error.
	Fetch(ctx context.Context, w event.Window) ([]event.Event, error)
}

// clip drops events outside w. Adapters filter in SQL as well; this guards
// against stored values whose textual order differs from time order.
func clip(events []event.Event, w event.Window) []event.Event {
	out := events[:0]
	for _, e := range events {
		if w.Contains(e.Timestamp()) {
			out = append(out, e)
		}
	}
	return out
}

// utcNow is the default clock.
func utcNow() time.Time {
	return time.Now().UTC()
}
