package analytics

import "time"

type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
)

// Ranges lists every supported range, in the order the cache warmer refreshes them.
var Ranges = []Range{RangeWeek, RangeMonth, RangeYear}

// ParseRange maps the query value to a Range. Anything other than an exact
// "week", "month" or "year" falls back to month.
func ParseRange(s string) Range {
	switch Range(s) {
	case RangeWeek:
		return RangeWeek
	case RangeYear:
		return RangeYear
	default:
		return RangeMonth
	}
}

// Window is the reporting period. The current period is open-ended
// (createdAt >= Start); the previous one is [PrevStart, PrevEnd).
type Window struct {
	Start     time.Time
	PrevStart time.Time
	PrevEnd   time.Time
}

// WindowFor derives the current and previous periods for r. now must already
// be in the reporting location.
func WindowFor(r Range, now time.Time) Window {
	loc := now.Location()
	switch r {
	case RangeWeek:
		start := now.AddDate(0, 0, -7)
		return Window{
			Start:     start,
			PrevStart: start.AddDate(0, 0, -7),
			PrevEnd:   start,
		}
	case RangeYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return Window{
			Start:     start,
			PrevStart: time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, loc),
			PrevEnd:   start,
		}
	default:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return Window{
			Start:     start,
			PrevStart: time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, loc),
			PrevEnd:   start,
		}
	}
}
