package outage

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// YearSummary is the headline statistics of one year inside a Summary
type YearSummary struct {
	Year int `json:"year"`
	YearStats
}

// DurationStats describes the outage minutes of the days that had an outage
type DurationStats struct {
	Days   int     `json:"days"`
	Mean   float64 `json:"mean_minutes"`
	Median float64 `json:"median_minutes"`
	P90    float64 `json:"p90_minutes"`
	Max    float64 `json:"max_minutes"`
}

// Summary aggregates every year in a store
type Summary struct {
	Years               []YearSummary `json:"years"`
	TotalOutageCount    int           `json:"total_outage_count"`
	TotalOutageMinutes  float64       `json:"total_outage_minutes"`
	DaysWithOutageCount int           `json:"days_with_outage"`
	DayDurations        DurationStats `json:"day_durations"`
}

// Summarize builds the multi-year summary of a store. Years absent from the store simply
// do not contribute.
func Summarize(s *YearStore) Summary {
	var sum Summary
	if s == nil {
		return sum
	}

	yearMinutes := make([]float64, 0, len(s.order))
	var dayMinutes []float64

	for _, year := range s.order {
		yd := s.years[year]
		sum.Years = append(sum.Years, YearSummary{Year: year, YearStats: yd.Stats})
		sum.TotalOutageCount += yd.Stats.TotalOutageCount
		sum.DaysWithOutageCount += yd.Stats.DaysWithOutageCount
		yearMinutes = append(yearMinutes, yd.Stats.TotalOutageMinutes)

		for _, d := range yd.DayMap {
			if d.HasOutage() {
				dayMinutes = append(dayMinutes, d.TotalOutageMinutes)
			}
		}
	}

	sum.TotalOutageMinutes = floats.Sum(yearMinutes)
	sum.DayDurations = durationStats(dayMinutes)

	return sum
}

func durationStats(minutes []float64) DurationStats {
	if len(minutes) == 0 {
		return DurationStats{}
	}

	sorted := make([]float64, len(minutes))
	copy(sorted, minutes)
	sort.Float64s(sorted)

	return DurationStats{
		Days:   len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Max:    floats.Max(sorted),
	}
}
