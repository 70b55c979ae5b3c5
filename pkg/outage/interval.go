// Package outage aggregates per-day power outage intervals into day, month and year
// statistics and derives minute-resolution power status segments for a day.
package outage

import (
	"strings"
	"time"
)

// RawInterval is an interval exactly as it appears in the source document
type RawInterval struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Interval is a validated outage period. DurationMinutes is kept fractional so that
// sums over many intervals do not drift.
type Interval struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// timestampLayouts lists the accepted timestamp formats. Layouts without a zone are
// interpreted in the location passed to ParseTimestamp.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp parses a source timestamp string. RFC3339 strings carry their own
// offset; everything else is read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// NormalizeInterval validates a raw interval. It reports false when either timestamp is
// missing or unparseable, or when the interval has zero or negative length. Malformed
// rows are expected in the source data, so callers drop them without surfacing an error.
func NormalizeInterval(raw RawInterval, loc *time.Location) (Interval, bool) {
	start, ok := ParseTimestamp(raw.From, loc)
	if !ok {
		return Interval{}, false
	}
	end, ok := ParseTimestamp(raw.To, loc)
	if !ok {
		return Interval{}, false
	}
	if !end.After(start) {
		return Interval{}, false
	}

	return Interval{
		Start:           start,
		End:             end,
		DurationMinutes: end.Sub(start).Minutes(),
	}, true
}

// ClipToDay truncates an interval to the [dayStart, dayEnd) window. It reports false when
// nothing of the interval falls inside the window.
func ClipToDay(iv Interval, dayStart, dayEnd time.Time) (Interval, bool) {
	start := iv.Start
	if start.Before(dayStart) {
		start = dayStart
	}
	end := iv.End
	if end.After(dayEnd) {
		end = dayEnd
	}
	if !end.After(start) {
		return Interval{}, false
	}

	return Interval{
		Start:           start,
		End:             end,
		DurationMinutes: end.Sub(start).Minutes(),
	}, true
}
