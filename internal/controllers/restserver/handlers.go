package restserver

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/chrissnell/powerstats/internal/constants"
	"github.com/chrissnell/powerstats/internal/log"
	"github.com/chrissnell/powerstats/internal/snapshot"
	"github.com/chrissnell/powerstats/pkg/outage"
	"github.com/chrissnell/powerstats/pkg/responseformat"
	"github.com/gorilla/mux"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// snapshot returns the snapshot to answer from, or writes a 503 if none is loaded yet.
// A handler keeps the snapshot it got for the whole request.
func (h *Handlers) snapshot(w http.ResponseWriter, req *http.Request) (*snapshot.Snapshot, bool) {
	snap := h.controller.holder.Current()
	if snap == nil {
		h.writeError(w, req, http.StatusServiceUnavailable, "dataset not loaded yet")
		return nil, false
	}
	return snap, true
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, data, nil); err != nil {
		log.Errorf("error writing response for %s: %v", req.URL.Path, err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, status int, message string) {
	if err := h.formatter.WriteError(w, req, status, message); err != nil {
		log.Errorf("error writing error response for %s: %v", req.URL.Path, err)
	}
}

// parseDate validates the {date} path variable
func (h *Handlers) parseDate(w http.ResponseWriter, req *http.Request, snap *snapshot.Snapshot) (string, bool) {
	date := mux.Vars(req)["date"]
	if _, err := outage.ParseDateKey(date, snap.Location); err != nil {
		h.writeError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
		return "", false
	}
	return date, true
}

// parseYear validates the {year} path variable
func (h *Handlers) parseYear(w http.ResponseWriter, req *http.Request) (int, bool) {
	raw := mux.Vars(req)["year"]
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 || year > 9999 {
		h.writeError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid year %q", raw))
		return 0, false
	}
	return year, true
}

func latestKey(yd *outage.YearData, month time.Month) string {
	if yd == nil {
		return ""
	}
	if d, ok := yd.LatestOutageDay(month); ok {
		return d.DateKey
	}
	return ""
}

// GetYears handles requests for the list of available years
func (h *Handlers) GetYears(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.snapshot(w, req)
	if !ok {
		return
	}

	resp := YearsResponse{Years: []YearEntry{}}
	for _, year := range snap.Store.Years() {
		yd, _ := snap.Store.Year(year)
		resp.Years = append(resp.Years, YearEntry{
			Year:             year,
			YearStats:        yd.Stats,
			TotalOutageHours: outage.Hours(yd.Stats.TotalOutageMinutes),
		})
	}

	h.write(w, req, resp)
}

// GetYear handles requests for the statistics of one year
func (h *Handlers) GetYear(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.snapshot(w, req)
	if !ok {
		return
	}
	year, ok := h.parseYear(w, req)
	if !ok {
		return
	}

	yd, found := snap.Store.Year(year)
	resp := YearResponse{
		Year:    year,
		HasData: found,
		Months:  make([]MonthEntry, 0, 12),
	}
	if found {
		resp.Stats = yd.Stats
		resp.TotalOutageHours = outage.Hours(yd.Stats.TotalOutageMinutes)
		resp.LatestOutageDay = latestKey(yd, 0)
	}

	for m := time.January; m <= time.December; m++ {
		entry := MonthEntry{Month: int(m), Name: m.String()}
		if found {
			entry.MonthStats = yd.Month(m)
			entry.TotalOutageHours = outage.Hours(entry.TotalOutageMinutes)
		}
		resp.Months = append(resp.Months, entry)
	}

	h.write(w, req, resp)
}

// GetMonthTimeline handles requests for the per-day histogram of one month
func (h *Handlers) GetMonthTimeline(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.snapshot(w, req)
	if !ok {
		return
	}
	year, ok := h.parseYear(w, req)
	if !ok {
		return
	}

	raw := mux.Vars(req)["month"]
	month, err := strconv.Atoi(raw)
	if err != nil || month < 1 || month > 12 {
		h.writeError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid month %q, expected 1-12", raw))
		return
	}

	yd, found := snap.Store.Year(year)
	resp := TimelineResponse{
		Year:    year,
		Month:   month,
		HasData: found,
		Days:    outage.MonthTimeline(yd, year, time.Month(month), snap.Location),
	}
	if found {
		resp.Stats = yd.Month(time.Month(month))
		resp.LatestOutageDay = latestKey(yd, time.Month(month))
	}

	h.write(w, req, resp)
}

// GetDay handles requests for one day with its intervals and segments
func (h *Handlers) GetDay(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.snapshot(w, req)
	if !ok {
		return
	}
	date, ok := h.parseDate(w, req, snap)
	if !ok {
		return
	}

	rec, found := snap.Store.Day(date)
	resp := DayResponse{
		Date:      date,
		HasData:   found,
		Intervals: []outage.Interval{},
		Segments:  outage.Segments(rec),
	}
	if found {
		resp.TotalOutageMinutes = rec.TotalOutageMinutes
		resp.TotalOutageHours = outage.Hours(rec.TotalOutageMinutes)
		resp.OutageCount = rec.OutageEventCount
		if rec.Intervals != nil {
			resp.Intervals = rec.Intervals
		}
	}

	h.write(w, req, resp)
}

// GetDaySegments handles requests for the power status segments of one day
func (h *Handlers) GetDaySegments(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.snapshot(w, req)
	if !ok {
		return
	}
	date, ok := h.parseDate(w, req, snap)
	if !ok {
		return
	}

	rec, _ := snap.Store.Day(date)
	h.write(w, req, SegmentsResponse{Date: date, Segments: outage.Segments(rec)})
}

// GetMinuteStatus handles requests for the power status of a single minute of a day
func (h *Handlers) GetMinuteStatus(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.snapshot(w, req)
	if !ok {
		return
	}
	date, ok := h.parseDate(w, req, snap)
	if !ok {
		return
	}

	raw := req.URL.Query().Get("minute")
	minute, err := strconv.Atoi(raw)
	if err != nil || minute < 0 || minute >= outage.MinutesPerDay {
		h.writeError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid minute %q, expected 0-%d", raw, outage.MinutesPerDay-1))
		return
	}

	rec, _ := snap.Store.Day(date)
	h.write(w, req, MinuteStatusResponse{
		Date:     date,
		Minute:   minute,
		HasPower: outage.StatusAt(rec, minute),
	})
}

// GetSummary handles requests for the multi-year summary
func (h *Handlers) GetSummary(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.snapshot(w, req)
	if !ok {
		return
	}
	h.write(w, req, outage.Summarize(snap.Store))
}

// GetStatus handles requests for information about the loaded snapshot
func (h *Handlers) GetStatus(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.snapshot(w, req)
	if !ok {
		return
	}

	report := snap.Store.Report()
	h.write(w, req, ServerStatus{
		Version:      constants.Version,
		SnapshotID:   snap.ID,
		LoadedAt:     snap.LoadedAt,
		Source:       snap.Source,
		SourceTag:    snap.Version,
		LastExport:   snap.LastExport,
		Timezone:     snap.Location.String(),
		Years:        snap.Store.Years(),
		SkippedYears: report.SkippedYears,
		SkippedDays:  report.SkippedDays,
	})
}

// GetHTTPLogs handles requests for the most recent HTTP log entries
func (h *Handlers) GetHTTPLogs(w http.ResponseWriter, req *http.Request) {
	limit := 100
	if raw := req.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	entries := log.GetHTTPLogBuffer().Entries(limit)
	h.write(w, req, LogsResponse{Entries: entries, Count: len(entries)})
}

// PostReload handles requests to rebuild the snapshot right away
func (h *Handlers) PostReload(w http.ResponseWriter, req *http.Request) {
	if h.controller.reloader == nil {
		h.writeError(w, req, http.StatusNotFound, "no reloader configured")
		return
	}

	force := req.URL.Query().Get("force") == "true"
	res, err := h.controller.reloader.Reload(req.Context(), force)
	if err != nil {
		log.Errorf("manual reload failed: %v", err)
		h.writeError(w, req, http.StatusBadGateway, fmt.Sprintf("reload failed: %v", err))
		return
	}

	h.write(w, req, res)
}

// Healthz reports whether a snapshot is being served
func (h *Handlers) Healthz(w http.ResponseWriter, req *http.Request) {
	if h.controller.holder.Current() == nil {
		http.Error(w, "dataset not loaded", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}
