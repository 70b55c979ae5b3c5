package restserver

import (
	"time"

	"github.com/chrissnell/powerstats/internal/log"
	"github.com/chrissnell/powerstats/pkg/outage"
)

// YearEntry is one year in the list of available years
type YearEntry struct {
	Year int `json:"year"`
	outage.YearStats
	TotalOutageHours float64 `json:"total_outage_hours"`
}

// YearsResponse lists every year of the dataset in ascending order
type YearsResponse struct {
	Years []YearEntry `json:"years"`
}

// MonthEntry is the statistics of one month in a year response
type MonthEntry struct {
	Month int    `json:"month"`
	Name  string `json:"name"`
	outage.MonthStats
	TotalOutageHours float64 `json:"total_outage_hours"`
}

// YearResponse is the detail of one year. Unknown years come back with HasData false and
// zeroed statistics.
type YearResponse struct {
	Year             int              `json:"year"`
	HasData          bool             `json:"has_data"`
	Stats            outage.YearStats `json:"stats"`
	TotalOutageHours float64          `json:"total_outage_hours"`
	Months           []MonthEntry     `json:"months"`
	LatestOutageDay  string           `json:"latest_outage_day,omitempty"`
}

// TimelineResponse is the histogram of one month
type TimelineResponse struct {
	Year            int                  `json:"year"`
	Month           int                  `json:"month"`
	HasData         bool                 `json:"has_data"`
	Stats           outage.MonthStats    `json:"stats"`
	LatestOutageDay string               `json:"latest_outage_day,omitempty"`
	Days            []outage.DayTimeline `json:"days"`
}

// DayResponse is the detail of one day
type DayResponse struct {
	Date               string            `json:"date"`
	HasData            bool              `json:"has_data"`
	TotalOutageMinutes float64           `json:"total_outage_minutes"`
	TotalOutageHours   float64           `json:"total_outage_hours"`
	OutageCount        int               `json:"outage_count"`
	Intervals          []outage.Interval `json:"intervals"`
	Segments           []outage.Segment  `json:"segments"`
}

// SegmentsResponse carries the power status segments of one day
type SegmentsResponse struct {
	Date     string           `json:"date"`
	Segments []outage.Segment `json:"segments"`
}

// MinuteStatusResponse is the power status of one minute of a day
type MinuteStatusResponse struct {
	Date     string `json:"date"`
	Minute   int    `json:"minute"`
	HasPower bool   `json:"has_power"`
}

// ServerStatus describes the snapshot currently served
type ServerStatus struct {
	Version      string    `json:"version"`
	SnapshotID   string    `json:"snapshot_id"`
	LoadedAt     time.Time `json:"loaded_at"`
	Source       string    `json:"source"`
	SourceTag    string    `json:"source_version,omitempty"`
	LastExport   string    `json:"last_export,omitempty"`
	Timezone     string    `json:"timezone"`
	Years        []int     `json:"years"`
	SkippedYears []string  `json:"skipped_years,omitempty"`
	SkippedDays  []string  `json:"skipped_days,omitempty"`
}

// LogsResponse carries recent entries of a log buffer
type LogsResponse struct {
	Entries []log.LogEntry `json:"entries"`
	Count   int            `json:"count"`
}
