package log

import (
	"fmt"
	"sync"
	"time"
)

// HTTP log buffer is separate from the application log buffer
var httpLogBuffer *LogBuffer
var httpLogBufferOnce sync.Once

// GetHTTPLogBuffer returns the HTTP log buffer instance, creating it if necessary
func GetHTTPLogBuffer() *LogBuffer {
	httpLogBufferOnce.Do(func() {
		httpLogBuffer = NewLogBuffer(1000) // Keep last 1000 HTTP log entries
	})
	return httpLogBuffer
}

// HTTPRequest describes one served request
type HTTPRequest struct {
	Method     string
	Path       string
	Status     int
	Duration   time.Duration
	Size       int
	RemoteAddr string
	UserAgent  string
	Err        error
}

// LogHTTPRequest records a served request in the HTTP log buffer
func LogHTTPRequest(req HTTPRequest) {
	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "info",
		Message:   fmt.Sprintf("%s %s %d %v %d bytes", req.Method, req.Path, req.Status, req.Duration, req.Size),
		Fields: map[string]any{
			"method":      req.Method,
			"path":        req.Path,
			"status":      req.Status,
			"duration_ms": req.Duration.Milliseconds(),
			"size":        req.Size,
			"remote_addr": req.RemoteAddr,
			"user_agent":  req.UserAgent,
		},
	}

	if req.Status >= 500 {
		entry.Level = "error"
	} else if req.Status >= 400 {
		entry.Level = "warn"
	}
	if req.Err != nil {
		entry.Level = "error"
		entry.Fields["error"] = req.Err.Error()
	}

	GetHTTPLogBuffer().AddEntry(entry)
}
