package outage

import "time"

// DayTimeline is one bar of a month histogram
type DayTimeline struct {
	DateKey            string       `json:"date"`
	Day                int          `json:"day"`
	Weekday            time.Weekday `json:"weekday"`
	Weekend            bool         `json:"weekend"`
	HasData            bool         `json:"has_data"`
	TotalOutageMinutes float64      `json:"total_outage_minutes"`
	OutageEventCount   int          `json:"outage_count"`
	Segments           []Segment    `json:"segments"`
}

// DaysIn returns the number of days in a month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthTimeline returns one entry for every calendar day of the month. Days without a
// record (or a nil year) are reported as fully powered.
func MonthTimeline(yd *YearData, year int, month time.Month, loc *time.Location) []DayTimeline {
	if month < time.January || month > time.December {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	n := DaysIn(year, month)
	out := make([]DayTimeline, 0, n)

	for day := 1; day <= n; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, loc)
		entry := DayTimeline{
			DateKey: date.Format(DateKeyLayout),
			Day:     day,
			Weekday: date.Weekday(),
			Weekend: date.Weekday() == time.Saturday || date.Weekday() == time.Sunday,
		}

		var rec *DayRecord
		if yd != nil {
			rec, entry.HasData = yd.Day(entry.DateKey)
		}
		if rec != nil {
			entry.TotalOutageMinutes = rec.TotalOutageMinutes
			entry.OutageEventCount = rec.OutageEventCount
		}
		entry.Segments = Segments(rec)

		out = append(out, entry)
	}

	return out
}

// Hours converts outage minutes to hours
func Hours(minutes float64) float64 {
	return minutes / 60
}
