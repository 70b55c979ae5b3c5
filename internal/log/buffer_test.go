package log

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogBufferRing(t *testing.T) {
	b := NewLogBuffer(3)

	if got := b.Entries(0); len(got) != 0 {
		t.Fatalf("new buffer has %d entries", len(got))
	}

	for i := 0; i < 5; i++ {
		b.AddEntry(LogEntry{Message: fmt.Sprintf("m%d", i)})
	}

	if b.Len() != 3 {
		t.Errorf("Len() = %d, expected 3", b.Len())
	}

	tests := []struct {
		limit    int
		expected []string
	}{
		{0, []string{"m2", "m3", "m4"}},
		{2, []string{"m3", "m4"}},
		{10, []string{"m2", "m3", "m4"}},
	}

	for _, tt := range tests {
		got := b.Entries(tt.limit)
		if len(got) != len(tt.expected) {
			t.Errorf("Entries(%d) returned %d entries, expected %d", tt.limit, len(got), len(tt.expected))
			continue
		}
		for i, e := range got {
			if e.Message != tt.expected[i] {
				t.Errorf("Entries(%d)[%d] = %q, expected %q", tt.limit, i, e.Message, tt.expected[i])
			}
		}
	}

	b.Clear()
	if b.Len() != 0 {
		t.Errorf("Len() after Clear = %d", b.Len())
	}
}

func TestBufferCore(t *testing.T) {
	b := NewLogBuffer(10)
	logger := zap.New(newBufferCore(b, zapcore.InfoLevel)).With(zap.String("component", "test"))

	logger.Debug("hidden")
	logger.Info("loaded", zap.Int("years", 3))

	entries := b.Entries(0)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, expected 1", len(entries))
	}
	e := entries[0]
	if e.Message != "loaded" || e.Level != "info" {
		t.Errorf("entry = %+v", e)
	}
	if e.Fields["component"] != "test" || e.Fields["years"] != int64(3) {
		t.Errorf("fields = %+v", e.Fields)
	}
}

func TestLogHTTPRequest(t *testing.T) {
	buf := GetHTTPLogBuffer()
	buf.Clear()

	LogHTTPRequest(HTTPRequest{Method: "GET", Path: "/api/years", Status: 200, Size: 42})
	LogHTTPRequest(HTTPRequest{Method: "GET", Path: "/api/days/x", Status: 400})
	LogHTTPRequest(HTTPRequest{Method: "GET", Path: "/api/summary", Status: 200, Err: errors.New("write failed")})

	entries := buf.Entries(0)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, expected 3", len(entries))
	}

	levels := []string{entries[0].Level, entries[1].Level, entries[2].Level}
	expected := []string{"info", "warn", "error"}
	for i := range levels {
		if levels[i] != expected[i] {
			t.Errorf("entry %d level = %q, expected %q", i, levels[i], expected[i])
		}
	}
	if entries[0].Fields["path"] != "/api/years" {
		t.Errorf("path field = %v", entries[0].Fields["path"])
	}
	if entries[2].Fields["error"] != "write failed" {
		t.Errorf("error field = %v", entries[2].Fields["error"])
	}
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "powerstats.log")
	if err := InitWithOptions(Options{File: path}); err != nil {
		t.Fatalf("InitWithOptions: %v", err)
	}
	Infow("dataset loaded", "years", 2)
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"dataset loaded"`) {
		t.Errorf("log file does not contain the entry: %s", data)
	}

	found := false
	for _, e := range GetAppLogBuffer().Entries(0) {
		if e.Message == "dataset loaded" {
			found = true
		}
	}
	if !found {
		t.Error("entry missing from the application log buffer")
	}
}
