package event

import (
	"errors"
	"time"
)

// DateLayout is the wire format for date-granularity values.
const DateLayout = "2006-01-02"

// ErrInvalidWindow indicates a window whose end precedes its start.
var ErrInvalidWindow = errors.New("window end precedes start")

// Window is an inclusive [Start, End] time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Validate returns ErrInvalidWindow when End is before Start.
func (w Window) Validate() error {
	if w.End.Before(w.Start) {
		return ErrInvalidWindow
	}
	return nil
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayWindow expands a date range to a time window covering the first
// instant of from through the last instant of to.
func DayWindow(from, to time.Time) Window {
	return Window{
		Start: Day(from),
		End:   Day(to).Add(24*time.Hour - time.Nanosecond),
	}
}

// ParseDate parses a YYYY-MM-DD string as a UTC date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
