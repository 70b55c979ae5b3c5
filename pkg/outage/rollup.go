package outage

import "time"

// MonthStats aggregates the days of one calendar month
type MonthStats struct {
	OutageCount         int     `json:"outage_count"`
	TotalOutageMinutes  float64 `json:"total_outage_minutes"`
	DaysWithOutageCount int     `json:"days_with_outage"`
}

// YearStats aggregates the days of one year
type YearStats struct {
	TotalOutageCount    int     `json:"total_outage_count"`
	TotalOutageMinutes  float64 `json:"total_outage_minutes"`
	DaysWithOutageCount int     `json:"days_with_outage"`
}

// add folds a single day into the month bucket
func (m *MonthStats) add(d *DayRecord) {
	m.OutageCount += d.OutageEventCount
	m.TotalOutageMinutes += d.TotalOutageMinutes
	if d.HasOutage() {
		m.DaysWithOutageCount++
	}
}

// add folds a single day into the year bucket
func (y *YearStats) add(d *DayRecord) {
	y.TotalOutageCount += d.OutageEventCount
	y.TotalOutageMinutes += d.TotalOutageMinutes
	if d.HasOutage() {
		y.DaysWithOutageCount++
	}
}

// Rollup folds the day records of one year into year and per-month statistics.
// Months are indexed 0..11 for January..December. A day is attributed to the month of
// its own date key regardless of how its intervals were clipped. The sums are
// commutative so the order of days does not matter.
func Rollup(days []*DayRecord) (YearStats, [12]MonthStats) {
	var (
		ys     YearStats
		months [12]MonthStats
	)

	for _, d := range days {
		if d == nil {
			continue
		}
		ys.add(d)
		months[d.Month()-time.January].add(d)
	}

	return ys, months
}
