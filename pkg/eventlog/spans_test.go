package eventlog

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/chrissnell/powerstats/pkg/outage"
)

func at(month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(2025, month, day, hour, min, sec, 0, time.UTC)
}

func reboot(boot time.Time, description string) Event {
	return Event{Time: boot, EventID: EventUnexpectedReboot, Source: "EventLog", Description: description}
}

func TestParseShutdownTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		ok       bool
	}{
		{
			name:     "full sentence",
			input:    "Предыдущее завершение работы системы в 10:15:43 на 02.11.2025 было неожиданным.",
			expected: at(time.November, 2, 10, 15, 43),
			ok:       true,
		},
		{
			name:     "single digit hour",
			input:    "в 9:05:00 на 03.11.2025",
			expected: at(time.November, 3, 9, 5, 0),
			ok:       true,
		},
		{name: "english text", input: "The previous system shutdown at 10:15:43 on 02.11.2025 was unexpected.", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "impossible date", input: "в 10:15:43 на 32.11.2025", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseShutdownTime(tt.input)
			if ok != tt.ok {
				t.Fatalf("ok = %v, expected %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.expected) {
				t.Errorf("ParseShutdownTime = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestExtractIntervals(t *testing.T) {
	events := []Event{
		reboot(at(time.November, 5, 12, 0, 0), "в 11:00:00 на 05.11.2025"),
		{Time: at(time.November, 5, 12, 0, 1), EventID: EventLogStarted},
		reboot(at(time.November, 2, 10, 20, 5), "в 10:15:43 на 02.11.2025"),
		reboot(at(time.November, 3, 8, 0, 0), "no time here"),
		reboot(at(time.November, 4, 8, 0, 0), "в 09:00:00 на 04.11.2025"),
	}

	spans, stats := ExtractIntervals(events)

	expected := []Span{
		{Start: at(time.November, 2, 10, 15, 43), End: at(time.November, 2, 10, 20, 5)},
		{Start: at(time.November, 5, 11, 0, 0), End: at(time.November, 5, 12, 0, 0)},
	}
	if !reflect.DeepEqual(spans, expected) {
		t.Errorf("spans = %+v, expected %+v", spans, expected)
	}

	expectedStats := ExtractStats{UnexpectedReboots: 4, Spans: 2, NoShutdownTime: 1, BadOrder: 1}
	if stats != expectedStats {
		t.Errorf("stats = %+v, expected %+v", stats, expectedStats)
	}
}

func TestMergeSpans(t *testing.T) {
	spans := []Span{
		{Start: at(time.November, 1, 8, 0, 0), End: at(time.November, 1, 9, 0, 0)},
		{Start: at(time.November, 1, 8, 30, 0), End: at(time.November, 1, 8, 45, 0)},
		{Start: at(time.November, 1, 9, 0, 0), End: at(time.November, 1, 9, 30, 0)},
		{Start: at(time.November, 1, 9, 40, 0), End: at(time.November, 1, 10, 0, 0)},
	}

	tests := []struct {
		name     string
		gap      time.Duration
		expected []Span
	}{
		{
			name: "overlap and touch only",
			gap:  0,
			expected: []Span{
				{Start: at(time.November, 1, 8, 0, 0), End: at(time.November, 1, 9, 30, 0)},
				{Start: at(time.November, 1, 9, 40, 0), End: at(time.November, 1, 10, 0, 0)},
			},
		},
		{
			name: "ten minute gap",
			gap:  10 * time.Minute,
			expected: []Span{
				{Start: at(time.November, 1, 8, 0, 0), End: at(time.November, 1, 10, 0, 0)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeSpans(spans, tt.gap)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("MergeSpans = %+v, expected %+v", got, tt.expected)
			}
		})
	}

	if got := MergeSpans(nil, 0); got != nil {
		t.Errorf("MergeSpans(nil) = %+v", got)
	}
}

func TestBuildDocument(t *testing.T) {
	spans := []Span{
		{Start: at(time.December, 31, 23, 30, 0), End: time.Date(2026, 1, 2, 0, 30, 0, 0, time.UTC)},
		{Start: at(time.November, 2, 10, 15, 43), End: at(time.November, 2, 10, 20, 5)},
		{Start: at(time.November, 2, 20, 0, 0), End: at(time.November, 2, 20, 0, 0)},
	}

	doc := BuildDocument(spans)

	y2025, ok := doc.Years["2025"]
	if !ok || y2025.Year != 2025 {
		t.Fatalf("2025 missing: %+v", doc.Years)
	}
	y2026, ok := doc.Years["2026"]
	if !ok {
		t.Fatal("2026 missing")
	}

	nov2 := y2025.Days["2025-11-02"]
	if nov2.OutageCount != 1 || len(nov2.Intervals) != 1 {
		t.Errorf("2025-11-02 = %+v", nov2)
	}

	dec31 := y2025.Days["2025-12-31"]
	expectedDec31 := outage.RawDay{
		Intervals:   []outage.RawInterval{{From: "2025-12-31T23:30:00", To: "2026-01-01T00:00:00"}},
		OutageCount: 1,
	}
	if !reflect.DeepEqual(dec31, expectedDec31) {
		t.Errorf("2025-12-31 = %+v, expected %+v", dec31, expectedDec31)
	}

	jan1 := y2026.Days["2026-01-01"]
	if jan1.OutageCount != 0 || len(jan1.Intervals) != 1 ||
		jan1.Intervals[0] != (outage.RawInterval{From: "2026-01-01T00:00:00", To: "2026-01-02T00:00:00"}) {
		t.Errorf("2026-01-01 = %+v", jan1)
	}
	jan2 := y2026.Days["2026-01-02"]
	if jan2.OutageCount != 0 || len(jan2.Intervals) != 1 ||
		jan2.Intervals[0] != (outage.RawInterval{From: "2026-01-02T00:00:00", To: "2026-01-02T00:30:00"}) {
		t.Errorf("2026-01-02 = %+v", jan2)
	}

	stats := GlobalStats(spans[:2], doc)
	if stats.TotalOutages != 2 || stats.DaysWithOutages != 4 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestBuiltDocumentLoads(t *testing.T) {
	spans := []Span{
		{Start: at(time.March, 1, 23, 30, 0), End: at(time.March, 2, 1, 0, 0)},
		{Start: at(time.March, 2, 8, 0, 0), End: at(time.March, 2, 10, 30, 0)},
	}

	var sb strings.Builder
	if err := BuildDocument(spans).Encode(&sb); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	store, err := outage.LoadYearStore(strings.NewReader(sb.String()), time.UTC)
	if err != nil {
		t.Fatalf("LoadYearStore: %v", err)
	}

	yd, ok := store.Year(2025)
	if !ok {
		t.Fatal("2025 missing")
	}
	expected := outage.YearStats{TotalOutageCount: 2, TotalOutageMinutes: 90 + 150, DaysWithOutageCount: 2}
	if yd.Stats != expected {
		t.Errorf("stats = %+v, expected %+v", yd.Stats, expected)
	}

	mar2, _ := store.Day("2025-03-02")
	expectedSegs := []outage.Segment{
		{StartMinute: 0, EndMinute: 60, HasPower: false},
		{StartMinute: 60, EndMinute: 480, HasPower: true},
		{StartMinute: 480, EndMinute: 630, HasPower: false},
		{StartMinute: 630, EndMinute: 1440, HasPower: true},
	}
	if got := outage.Segments(mar2); !reflect.DeepEqual(got, expectedSegs) {
		t.Errorf("segments = %+v, expected %+v", got, expectedSegs)
	}
}
