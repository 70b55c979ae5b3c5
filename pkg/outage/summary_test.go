package outage

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	sum := Summarize(loadSample(t))

	if len(sum.Years) != 2 || sum.Years[0].Year != 2023 || sum.Years[1].Year != 2024 {
		t.Fatalf("Years = %+v", sum.Years)
	}
	if sum.TotalOutageCount != 7 {
		t.Errorf("TotalOutageCount = %d, expected 7", sum.TotalOutageCount)
	}
	if sum.TotalOutageMinutes != 405 {
		t.Errorf("TotalOutageMinutes = %v, expected 405", sum.TotalOutageMinutes)
	}
	if sum.DaysWithOutageCount != 4 {
		t.Errorf("DaysWithOutageCount = %d, expected 4", sum.DaysWithOutageCount)
	}

	// day minutes: 45, 60, 120, 180
	expected := DurationStats{Days: 4, Mean: 101.25, Median: 60, P90: 180, Max: 180}
	got := sum.DayDurations
	if got.Days != expected.Days ||
		math.Abs(got.Mean-expected.Mean) > 1e-9 ||
		got.Median != expected.Median ||
		got.P90 != expected.P90 ||
		got.Max != expected.Max {
		t.Errorf("DayDurations = %+v, expected %+v", got, expected)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	if sum.TotalOutageCount != 0 || sum.DayDurations.Days != 0 || len(sum.Years) != 0 {
		t.Errorf("Summarize(nil) = %+v", sum)
	}
}
