package outage

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

// YearData is the aggregated view of one year
type YearData struct {
	Year   int
	DayMap map[string]*DayRecord
	Months [12]MonthStats
	Stats  YearStats
}

// Day looks up a day by its YYYY-MM-DD key
func (y *YearData) Day(dateKey string) (*DayRecord, bool) {
	d, ok := y.DayMap[dateKey]
	return d, ok
}

// Month returns the statistics of a calendar month. Out of range months are empty.
func (y *YearData) Month(m time.Month) MonthStats {
	if m < time.January || m > time.December {
		return MonthStats{}
	}
	return y.Months[m-time.January]
}

// SortedDays returns the year's day records in ascending date order
func (y *YearData) SortedDays() []*DayRecord {
	days := make([]*DayRecord, 0, len(y.DayMap))
	for _, d := range y.DayMap {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

// LatestOutageDay returns the most recent day that has outage minutes. A zero month
// searches the whole year, otherwise only that month is considered.
func (y *YearData) LatestOutageDay(month time.Month) (*DayRecord, bool) {
	var latest *DayRecord
	for _, d := range y.DayMap {
		if !d.HasOutage() {
			continue
		}
		if month != 0 && d.Month() != month {
			continue
		}
		if latest == nil || d.Date.After(latest.Date) {
			latest = d
		}
	}
	return latest, latest != nil
}

// BuildReport lists the source entries that were skipped while building a store
type BuildReport struct {
	SkippedYears []string
	SkippedDays  []string
}

// YearStore is an immutable snapshot of all years of a dataset. It is built once and
// only read afterwards; a reload builds a new store.
type YearStore struct {
	years  map[int]*YearData
	order  []int
	report BuildReport
}

// NewYearStore builds a store from a parsed document. Year keys that are not numbers,
// years without a days section and days with a malformed date key are skipped and
// listed in the store's Report. A day is counted in the year it is filed under, even
// when its date key names another year.
func NewYearStore(doc *Document, loc *time.Location) (*YearStore, error) {
	if doc == nil || doc.Years == nil {
		return nil, ErrMissingYearsSection
	}
	if loc == nil {
		loc = time.UTC
	}

	s := &YearStore{
		years: make(map[int]*YearData, len(doc.Years)),
	}

	for yearKey, rawYear := range doc.Years {
		yearNum, err := strconv.Atoi(yearKey)
		if err != nil || rawYear == nil || rawYear.Days == nil {
			s.report.SkippedYears = append(s.report.SkippedYears, yearKey)
			continue
		}

		yd := &YearData{
			Year:   yearNum,
			DayMap: make(map[string]*DayRecord, len(rawYear.Days)),
		}

		days := make([]*DayRecord, 0, len(rawYear.Days))
		for dateKey, rawDay := range rawYear.Days {
			day, err := BuildDayRecord(dateKey, rawDay, loc)
			if err != nil {
				s.report.SkippedDays = append(s.report.SkippedDays, dateKey)
				continue
			}
			yd.DayMap[dateKey] = day
			days = append(days, day)
		}

		yd.Stats, yd.Months = Rollup(days)
		s.years[yearNum] = yd
		s.order = append(s.order, yearNum)
	}

	sort.Ints(s.order)
	sort.Strings(s.report.SkippedYears)
	sort.Strings(s.report.SkippedDays)

	return s, nil
}

// LoadYearStore parses a dataset document and builds a store from it
func LoadYearStore(r io.Reader, loc *time.Location) (*YearStore, error) {
	doc, err := ParseDocument(r)
	if err != nil {
		return nil, err
	}
	store, err := NewYearStore(doc, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to build year store: %w", err)
	}
	return store, nil
}

// Year returns the data for a year. A year that is not in the dataset is not an
// error; it reports false.
func (s *YearStore) Year(year int) (*YearData, bool) {
	yd, ok := s.years[year]
	return yd, ok
}

// Years returns the years that have data, ascending
func (s *YearStore) Years() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// Day looks up a day anywhere in the store by its YYYY-MM-DD key. The year named by
// the key is tried first, then every other year in ascending order.
func (s *YearStore) Day(dateKey string) (*DayRecord, bool) {
	year := 0
	if len(dateKey) >= 4 {
		year, _ = strconv.Atoi(dateKey[:4])
	}
	if yd, ok := s.years[year]; ok {
		if d, ok := yd.Day(dateKey); ok {
			return d, true
		}
	}

	for _, y := range s.order {
		if y == year {
			continue
		}
		if d, ok := s.years[y].Day(dateKey); ok {
			return d, true
		}
	}
	return nil, false
}

// Report returns what was skipped while the store was built
func (s *YearStore) Report() BuildReport {
	return s.report
}
