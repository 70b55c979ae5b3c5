package restserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chrissnell/powerstats/internal/controllers/reloader"
	"github.com/chrissnell/powerstats/internal/log"
	"github.com/chrissnell/powerstats/internal/snapshot"
	"github.com/chrissnell/powerstats/pkg/config"
	"github.com/chrissnell/powerstats/pkg/outage"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const testDataset = `{"years": {
  "2024": {"days": {
    "2024-01-10": {"intervals": [
      {"from": "2024-01-10T08:00:00", "to": "2024-01-10T10:00:00"},
      {"from": "2024-01-10T22:00:00", "to": "2024-01-11T01:00:00"}
    ], "outage_count": 2},
    "2024-03-15": {"intervals": [{"from": "2024-03-15T12:00:00", "to": "2024-03-15T12:45:00"}], "outage_count": 1}
  }},
  "2023": {"days": {
    "2023-12-31": {"intervals": [{"from": "2023-12-31T10:00:00", "to": "2023-12-31T12:00:00"}], "outage_count": 1}
  }}
}}`

type fakeReloader struct {
	res reloader.Result
	err error
}

func (f *fakeReloader) Reload(ctx context.Context, force bool) (reloader.Result, error) {
	return f.res, f.err
}

func newTestController(t *testing.T, withSnapshot bool, rl Reloader) *Controller {
	t.Helper()

	holder := snapshot.NewHolder(nil)
	if withSnapshot {
		store, err := outage.LoadYearStore(strings.NewReader(testDataset), time.UTC)
		if err != nil {
			t.Fatalf("building store: %v", err)
		}
		holder.Swap(&snapshot.Snapshot{
			ID:         "snap-1",
			Store:      store,
			Location:   time.UTC,
			LoadedAt:   time.Date(2025, 11, 2, 10, 0, 0, 0, time.UTC),
			Source:     "file:test.json",
			LastExport: "02.11.2025 10:20",
		})
	}

	var wg sync.WaitGroup
	c, err := NewController(context.Background(), &wg, holder, config.RESTServerData{EnableCORS: true}, rl, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func do(t *testing.T, c *Controller, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}

func TestStatusCodes(t *testing.T) {
	c := newTestController(t, true, nil)

	tests := []struct {
		name     string
		method   string
		target   string
		expected int
	}{
		{"years", "GET", "/api/years", 200},
		{"known year", "GET", "/api/years/2024", 200},
		{"unknown year", "GET", "/api/years/1999", 200},
		{"bad year", "GET", "/api/years/abc", 400},
		{"timeline", "GET", "/api/years/2024/months/1/timeline", 200},
		{"bad month", "GET", "/api/years/2024/months/13/timeline", 400},
		{"day", "GET", "/api/days/2024-01-10", 200},
		{"absent day", "GET", "/api/days/2024-01-12", 200},
		{"bad date", "GET", "/api/days/2024-02-30", 400},
		{"segments", "GET", "/api/days/2024-01-10/segments", 200},
		{"minute", "GET", "/api/days/2024-01-10/status?minute=500", 200},
		{"minute out of range", "GET", "/api/days/2024-01-10/status?minute=1440", 400},
		{"negative minute", "GET", "/api/days/2024-01-10/status?minute=-1", 400},
		{"missing minute", "GET", "/api/days/2024-01-10/status", 400},
		{"summary", "GET", "/api/summary", 200},
		{"status", "GET", "/api/status", 200},
		{"http logs", "GET", "/api/logs/http?limit=5", 200},
		{"bad limit", "GET", "/api/logs/http?limit=x", 400},
		{"reload without reloader", "POST", "/api/reload", 404},
		{"healthz", "GET", "/healthz", 200},
		{"wrong method", "POST", "/api/years", 405},
		{"unknown route", "GET", "/api/nothing", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, c, tt.method, tt.target)
			if rec.Code != tt.expected {
				t.Errorf("%s %s = %d, expected %d (body %s)", tt.method, tt.target, rec.Code, tt.expected, rec.Body.String())
			}
		})
	}
}

func TestNoSnapshot(t *testing.T) {
	c := newTestController(t, false, nil)

	for _, target := range []string{"/api/years", "/api/days/2024-01-10", "/api/summary", "/healthz"} {
		if rec := do(t, c, "GET", target); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d, expected 503", target, rec.Code)
		}
	}
}

func TestGetYears(t *testing.T) {
	c := newTestController(t, true, nil)

	var resp YearsResponse
	decode(t, do(t, c, "GET", "/api/years"), &resp)

	if len(resp.Years) != 2 || resp.Years[0].Year != 2023 || resp.Years[1].Year != 2024 {
		t.Fatalf("years = %+v", resp.Years)
	}
	// day totals use full interval durations, including the part past midnight
	if resp.Years[1].TotalOutageMinutes != 345 || resp.Years[1].TotalOutageCount != 3 {
		t.Errorf("2024 = %+v", resp.Years[1])
	}
	if resp.Years[0].TotalOutageHours != 2 {
		t.Errorf("2023 hours = %v, expected 2", resp.Years[0].TotalOutageHours)
	}
}

func TestGetYear(t *testing.T) {
	c := newTestController(t, true, nil)

	var resp YearResponse
	decode(t, do(t, c, "GET", "/api/years/2024"), &resp)

	if !resp.HasData || len(resp.Months) != 12 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Months[0].TotalOutageMinutes != 300 || resp.Months[0].DaysWithOutageCount != 1 {
		t.Errorf("january = %+v", resp.Months[0])
	}
	if resp.Months[2].OutageCount != 1 || resp.Months[2].Name != "March" {
		t.Errorf("march = %+v", resp.Months[2])
	}
	if resp.LatestOutageDay != "2024-03-15" {
		t.Errorf("latest outage day = %q", resp.LatestOutageDay)
	}

	var unknown YearResponse
	decode(t, do(t, c, "GET", "/api/years/1999"), &unknown)
	if unknown.HasData || unknown.Stats.TotalOutageMinutes != 0 || len(unknown.Months) != 12 {
		t.Errorf("unknown year = %+v", unknown)
	}
}

func TestGetMonthTimeline(t *testing.T) {
	c := newTestController(t, true, nil)

	var resp TimelineResponse
	decode(t, do(t, c, "GET", "/api/years/2024/months/1/timeline"), &resp)

	if len(resp.Days) != 31 {
		t.Fatalf("got %d days, expected 31", len(resp.Days))
	}
	if resp.LatestOutageDay != "2024-01-10" {
		t.Errorf("latest outage day = %q", resp.LatestOutageDay)
	}
	tenth := resp.Days[9]
	if tenth.DateKey != "2024-01-10" || tenth.TotalOutageMinutes != 300 || len(tenth.Segments) != 4 {
		t.Errorf("10th = %+v", tenth)
	}
	if d := resp.Days[0]; d.HasData || len(d.Segments) != 1 || !d.Segments[0].HasPower {
		t.Errorf("1st = %+v", d)
	}
}

func TestGetDay(t *testing.T) {
	c := newTestController(t, true, nil)

	var resp DayResponse
	decode(t, do(t, c, "GET", "/api/days/2024-01-10"), &resp)

	if !resp.HasData || resp.OutageCount != 2 || len(resp.Intervals) != 2 {
		t.Fatalf("day = %+v", resp)
	}
	expected := []outage.Segment{
		{StartMinute: 0, EndMinute: 480, HasPower: true},
		{StartMinute: 480, EndMinute: 600, HasPower: false},
		{StartMinute: 600, EndMinute: 1320, HasPower: true},
		{StartMinute: 1320, EndMinute: 1440, HasPower: false},
	}
	if len(resp.Segments) != len(expected) {
		t.Fatalf("segments = %+v", resp.Segments)
	}
	for i := range expected {
		if resp.Segments[i] != expected[i] {
			t.Errorf("segment %d = %+v, expected %+v", i, resp.Segments[i], expected[i])
		}
	}

	var absent DayResponse
	decode(t, do(t, c, "GET", "/api/days/2024-06-01"), &absent)
	if absent.HasData || len(absent.Segments) != 1 || absent.Segments[0] != (outage.Segment{StartMinute: 0, EndMinute: 1440, HasPower: true}) {
		t.Errorf("absent day = %+v", absent)
	}
	if absent.Intervals == nil {
		t.Error("absent day intervals should be an empty list")
	}
}

func TestGetMinuteStatus(t *testing.T) {
	c := newTestController(t, true, nil)

	tests := []struct {
		minute   string
		expected bool
	}{
		{"0", true},
		{"479", true},
		{"480", false},
		{"599", false},
		{"600", true},
		{"1439", false},
	}

	for _, tt := range tests {
		var resp MinuteStatusResponse
		decode(t, do(t, c, "GET", "/api/days/2024-01-10/status?minute="+tt.minute), &resp)
		if resp.HasPower != tt.expected {
			t.Errorf("minute %s has power %v, expected %v", tt.minute, resp.HasPower, tt.expected)
		}
	}
}

func TestGetStatus(t *testing.T) {
	c := newTestController(t, true, nil)

	var resp ServerStatus
	decode(t, do(t, c, "GET", "/api/status"), &resp)

	if resp.SnapshotID != "snap-1" || resp.LastExport != "02.11.2025 10:20" || resp.Timezone != "UTC" {
		t.Errorf("status = %+v", resp)
	}
	if len(resp.Years) != 2 {
		t.Errorf("years = %v", resp.Years)
	}
}

func TestGetSummary(t *testing.T) {
	c := newTestController(t, true, nil)

	var resp outage.Summary
	decode(t, do(t, c, "GET", "/api/summary"), &resp)

	if resp.TotalOutageCount != 4 || resp.TotalOutageMinutes != 465 || resp.DaysWithOutageCount != 3 {
		t.Errorf("summary = %+v", resp)
	}
}

func TestMsgPackResponse(t *testing.T) {
	c := newTestController(t, true, nil)

	rec := do(t, c, "GET", "/api/days/2024-01-10/segments?format=msgpack")
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-msgpack" {
		t.Fatalf("Content-Type = %q", ct)
	}

	var resp SegmentsResponse
	dec := msgpack.NewDecoder(bytes.NewReader(rec.Body.Bytes()))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding msgpack: %v", err)
	}
	if resp.Date != "2024-01-10" || len(resp.Segments) != 4 {
		t.Errorf("response = %+v", resp)
	}
}

func TestCORS(t *testing.T) {
	c := newTestController(t, true, nil)

	req := httptest.NewRequest("GET", "/api/years", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("CORS header missing")
	}
}

func TestPostReload(t *testing.T) {
	ok := &fakeReloader{res: reloader.Result{Reloaded: true, SnapshotID: "snap-2"}}
	c := newTestController(t, true, ok)

	rec := do(t, c, "POST", "/api/reload")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res reloader.Result
	decode(t, rec, &res)
	if !res.Reloaded || res.SnapshotID != "snap-2" {
		t.Errorf("result = %+v", res)
	}

	failing := newTestController(t, true, &fakeReloader{err: errors.New("boom")})
	if rec := do(t, failing, "POST", "/api/reload"); rec.Code != http.StatusBadGateway {
		t.Errorf("failed reload status = %d, expected 502", rec.Code)
	}
}

func TestRequestsAreLogged(t *testing.T) {
	c := newTestController(t, true, nil)
	buf := log.GetHTTPLogBuffer()
	buf.Clear()

	do(t, c, "GET", "/api/days/bad/segments")

	entries := buf.Entries(0)
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, expected 1", len(entries))
	}
	if entries[0].Level != "warn" || entries[0].Fields["status"] != 400 {
		t.Errorf("entry = %+v", entries[0])
	}
}
