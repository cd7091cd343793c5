package release

import (
	"time"

	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
	"github.com/randalmurphal/changelogify/pkg/changelogify/event"
)

// Fallback lookbacks.
const (
	DefaultLookback = 30 * 24 * time.Hour
	CustomLookback  = 7 * 24 * time.Hour
)

// DateRange is an inclusive range of calendar dates in UTC.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Window expands the range to the instants it covers.
func (d DateRange) Window() event.Window {
	return event.DayWindow(d.From, d.To)
}

// ResolveWindow derives the date range for a release.
//
//   - since_last_release: from the previous release's window end (or its
//     creation day when the end is unset), or now-30d with no previous
//     release; to today.
//   - last_7_days, last_30_days: fixed lookback to today.
//   - custom: the supplied dates; a missing bound defaults to now-7d / today.
//
// Unknown range types behave as since_last_release.
func ResolveWindow(rangeType config.RangeType, last *Release, now time.Time, custom DateRange) DateRange {
	today := event.Day(now)

	switch rangeType {
	case config.RangeCustom:
		from, to := custom.From, custom.To
		if from.IsZero() {
			from = now.Add(-CustomLookback)
		}
		if to.IsZero() {
			to = now
		}
		return DateRange{From: event.Day(from), To: event.Day(to)}

	case config.RangeLast7Days:
		return DateRange{From: event.Day(now.Add(-7 * 24 * time.Hour)), To: today}

	case config.RangeLast30Days:
		return DateRange{From: event.Day(now.Add(-DefaultLookback)), To: today}

	default:
		return DateRange{From: sinceLast(last, now), To: today}
	}
}

func sinceLast(last *Release, now time.Time) time.Time {
	switch {
	case last == nil:
		return event.Day(now.Add(-DefaultLookback))
	case !last.WindowEnd.IsZero():
		return event.Day(last.WindowEnd)
	default:
		return event.Day(last.CreatedAt)
	}
}
