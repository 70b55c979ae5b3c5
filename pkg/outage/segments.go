package outage

import "math"

// MinutesPerDay is the number of minute slots in a day's status buffer
const MinutesPerDay = 1440

// Segment is a maximal run of minutes within one day that share the same power status.
// EndMinute is exclusive.
type Segment struct {
	StartMinute int  `json:"start_minute"`
	EndMinute   int  `json:"end_minute"`
	HasPower    bool `json:"has_power"`
}

// Minutes returns the length of the segment
func (s Segment) Minutes() int {
	return s.EndMinute - s.StartMinute
}

// minuteSpan returns the half-open minute range [from, to) that an interval covers
// within the day. Partial minutes at either end count as a whole outage minute.
func minuteSpan(iv Interval, d *DayRecord) (int, int, bool) {
	dayStart, dayEnd := d.Window()

	clipped, ok := ClipToDay(iv, dayStart, dayEnd)
	if !ok {
		return 0, 0, false
	}

	from := int(math.Floor(clipped.Start.Sub(dayStart).Minutes()))
	to := int(math.Ceil(clipped.End.Sub(dayStart).Minutes()))

	// 25-hour DST days can run past the buffer
	if to > MinutesPerDay {
		to = MinutesPerDay
	}
	if from < 0 {
		from = 0
	}
	if to <= from {
		return 0, 0, false
	}
	return from, to, true
}

// dayMinutes returns how many real minutes the day has, capped to the buffer. It is
// 1380 on a 23-hour DST day.
func dayMinutes(d *DayRecord) int {
	dayStart, dayEnd := d.Window()
	n := int(dayEnd.Sub(dayStart).Minutes())
	if n <= 0 || n > MinutesPerDay {
		return MinutesPerDay
	}
	return n
}

// Segments derives the run-length power status of a day at minute resolution.
// Overlapping intervals are unioned. The result always covers [0, 1440) exactly once
// and no two neighbouring segments share a status. A day without intervals is a single
// powered segment. On a day shorter than 1440 minutes the slots past its end carry the
// status of its last real minute.
func Segments(d *DayRecord) []Segment {
	if d == nil || len(d.Intervals) == 0 {
		return []Segment{{StartMinute: 0, EndMinute: MinutesPerDay, HasPower: true}}
	}

	// Call-scoped buffer; zero value means power present
	var outage [MinutesPerDay]bool

	for _, iv := range d.Intervals {
		from, to, ok := minuteSpan(iv, d)
		if !ok {
			continue
		}
		for m := from; m < to; m++ {
			outage[m] = true
		}
	}
	if last := dayMinutes(d); last < MinutesPerDay {
		for m := last; m < MinutesPerDay; m++ {
			outage[m] = outage[last-1]
		}
	}

	segments := make([]Segment, 0, 2*len(d.Intervals)+1)
	current := Segment{StartMinute: 0, HasPower: !outage[0]}
	for m := 1; m < MinutesPerDay; m++ {
		if !outage[m] == current.HasPower {
			continue
		}
		current.EndMinute = m
		segments = append(segments, current)
		current = Segment{StartMinute: m, HasPower: !outage[m]}
	}
	current.EndMinute = MinutesPerDay
	segments = append(segments, current)

	return segments
}

// StatusAt reports whether power was present during the given minute of the day. It
// checks the minute against the clipped intervals directly and agrees with the segment
// that contains the minute. Minutes outside [0, 1440) never fall inside an outage, and
// minutes past the end of a short DST day read as its last real minute.
func StatusAt(d *DayRecord, minute int) bool {
	if d == nil || minute < 0 || minute >= MinutesPerDay {
		return true
	}
	if last := dayMinutes(d); minute >= last {
		minute = last - 1
	}

	for _, iv := range d.Intervals {
		from, to, ok := minuteSpan(iv, d)
		if !ok {
			continue
		}
		if minute >= from && minute < to {
			return false
		}
	}
	return true
}

// OutageMinutes returns how many minute slots of the day are marked as outage
func OutageMinutes(segments []Segment) int {
	total := 0
	for _, s := range segments {
		if !s.HasPower {
			total += s.Minutes()
		}
	}
	return total
}
