package outage

import (
	"fmt"
	"time"
)

// DateKeyLayout is the layout of the per-day keys in the source document
const DateKeyLayout = "2006-01-02"

// RawDay is one day of the source document
type RawDay struct {
	Intervals   []RawInterval `json:"intervals"`
	OutageCount int           `json:"outage_count"`
}

// DayRecord holds the normalized intervals of one calendar day.
//
// OutageEventCount comes from the source as-is. It is never reconciled against
// Intervals: a day may report events without any valid interval, or intervals without
// an event (an outage that started the previous day).
type DayRecord struct {
	DateKey            string     `json:"date"`
	Date               time.Time  `json:"-"`
	Intervals          []Interval `json:"intervals"`
	TotalOutageMinutes float64    `json:"total_outage_minutes"`
	OutageEventCount   int        `json:"outage_count"`
}

// HasOutage reports whether any outage time was recorded for the day
func (d *DayRecord) HasOutage() bool {
	return d.TotalOutageMinutes > 0
}

// Month returns the calendar month the day belongs to
func (d *DayRecord) Month() time.Month {
	return d.Date.Month()
}

// Window returns the [start, end) bounds of the day in its own location
func (d *DayRecord) Window() (time.Time, time.Time) {
	return d.Date, d.Date.AddDate(0, 0, 1)
}

// ParseDateKey parses a YYYY-MM-DD key into local midnight of that day
func ParseDateKey(dateKey string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date, err := time.ParseInLocation(DateKeyLayout, dateKey, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", dateKey, err)
	}
	return date, nil
}

// BuildDayRecord normalizes the raw intervals of a day and totals their durations.
// Intervals keep their input order; nothing is sorted or merged here. The only error is
// an unparseable date key.
func BuildDayRecord(dateKey string, raw RawDay, loc *time.Location) (*DayRecord, error) {
	date, err := ParseDateKey(dateKey, loc)
	if err != nil {
		return nil, err
	}

	day := &DayRecord{
		DateKey:          dateKey,
		Date:             date,
		Intervals:        make([]Interval, 0, len(raw.Intervals)),
		OutageEventCount: raw.OutageCount,
	}

	for _, ri := range raw.Intervals {
		iv, ok := NormalizeInterval(ri, loc)
		if !ok {
			continue
		}
		day.Intervals = append(day.Intervals, iv)
		day.TotalOutageMinutes += iv.DurationMinutes
	}

	return day, nil
}
