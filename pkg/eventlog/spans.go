package eventlog

import (
	"regexp"
	"sort"
	"time"

	"github.com/chrissnell/powerstats/pkg/outage"
)

// Span is one outage: from the unexpected shutdown until the next boot
type Span struct {
	Start time.Time
	End   time.Time
}

// Minutes returns the length of the span
func (s Span) Minutes() float64 {
	return s.End.Sub(s.Start).Minutes()
}

// ExtractStats counts what ExtractIntervals did with the 6008 events
type ExtractStats struct {
	UnexpectedReboots int
	Spans             int
	NoShutdownTime    int
	BadOrder          int
}

// Localized description: "... в 10:15:43 на 02.11.2025 было неожиданным."
var shutdownPattern = regexp.MustCompile(`в\s+(\d{1,2}:\d{2}:\d{2})\s+на\s+(\d{2}\.\d{2}\.\d{4})`)

// ParseShutdownTime finds the time of the previous shutdown in a 6008 description
func ParseShutdownTime(description string) (time.Time, bool) {
	m := shutdownPattern.FindStringSubmatch(description)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("02.01.2006 15:04:05", m[2]+" "+m[1], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ExtractIntervals builds one span per 6008 event: the shutdown time from the
// description up to the event time. Spans are sorted by start.
func ExtractIntervals(events []Event) ([]Span, ExtractStats) {
	var (
		spans []Span
		stats ExtractStats
	)

	for _, ev := range events {
		if ev.EventID != EventUnexpectedReboot {
			continue
		}
		stats.UnexpectedReboots++
		if ev.Time.IsZero() {
			continue
		}

		shutdown, ok := ParseShutdownTime(ev.Description)
		if !ok {
			stats.NoShutdownTime++
			continue
		}
		if !shutdown.Before(ev.Time) {
			stats.BadOrder++
			continue
		}

		spans = append(spans, Span{Start: shutdown, End: ev.Time})
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Start.Before(spans[j].Start)
	})
	stats.Spans = len(spans)

	return spans, stats
}

// MergeSpans joins spans that overlap or are separated by at most gap. The input must
// be sorted by start, as returned by ExtractIntervals.
func MergeSpans(spans []Span, gap time.Duration) []Span {
	if len(spans) == 0 {
		return nil
	}

	merged := make([]Span, 0, len(spans))
	current := spans[0]
	for _, s := range spans[1:] {
		if !s.Start.After(current.End.Add(gap)) {
			if s.End.After(current.End) {
				current.End = s.End
			}
			continue
		}
		merged = append(merged, current)
		current = s
	}
	return append(merged, current)
}

// BuildDocument splits every span at midnight and files each piece under its day. The
// outage is counted once, on the day it started.
func BuildDocument(spans []Span) *outage.Document {
	doc := &outage.Document{Years: make(map[string]*outage.RawYear)}

	for _, s := range spans {
		if !s.End.After(s.Start) {
			continue
		}

		startDay := truncateDay(s.Start)
		for dayStart := startDay; dayStart.Before(s.End); dayStart = dayStart.AddDate(0, 0, 1) {
			dayEnd := dayStart.AddDate(0, 0, 1)

			from, to := s.Start, s.End
			if from.Before(dayStart) {
				from = dayStart
			}
			if to.After(dayEnd) {
				to = dayEnd
			}
			if !to.After(from) {
				continue
			}

			yearKey := dayStart.Format("2006")
			year, ok := doc.Years[yearKey]
			if !ok {
				year = &outage.RawYear{Year: dayStart.Year(), Days: make(map[string]outage.RawDay)}
				doc.Years[yearKey] = year
			}

			dateKey := dayStart.Format(outage.DateKeyLayout)
			day := year.Days[dateKey]
			if dayStart.Equal(startDay) {
				day.OutageCount++
			}
			day.Intervals = append(day.Intervals, outage.RawInterval{
				From: from.Format(TimeLayout),
				To:   to.Format(TimeLayout),
			})
			year.Days[dateKey] = day
		}
	}

	return doc
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Stats are the headline numbers of a built dataset
type Stats struct {
	TotalOutages    int
	TotalMinutes    float64
	DaysWithOutages int
}

// GlobalStats totals the spans and counts the days of doc that have intervals
func GlobalStats(spans []Span, doc *outage.Document) Stats {
	st := Stats{TotalOutages: len(spans)}
	for _, s := range spans {
		st.TotalMinutes += s.Minutes()
	}
	if doc == nil {
		return st
	}
	for _, year := range doc.Years {
		if year == nil {
			continue
		}
		for _, day := range year.Days {
			if len(day.Intervals) > 0 {
				st.DaysWithOutages++
			}
		}
	}
	return st
}
