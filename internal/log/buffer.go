package log

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// LogEntry is one entry kept in a LogBuffer
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Caller    string         `json:"caller,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// LogBuffer is a fixed-size ring of the most recent log entries
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    int
	full    bool
}

// NewLogBuffer creates a buffer that keeps the last size entries
func NewLogBuffer(size int) *LogBuffer {
	if size < 1 {
		size = 1
	}
	return &LogBuffer{entries: make([]LogEntry, size)}
}

// AddEntry stores an entry, overwriting the oldest one when the buffer is full
func (b *LogBuffer) AddEntry(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = entry
	b.next = (b.next + 1) % len(b.entries)
	if b.next == 0 {
		b.full = true
	}
}

// Len returns the number of entries held
func (b *LogBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.full {
		return len(b.entries)
	}
	return b.next
}

// Entries returns up to limit of the most recent entries, oldest first. A limit of
// zero or less returns everything held.
func (b *LogBuffer) Entries(limit int) []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var ordered []LogEntry
	if b.full {
		ordered = append(ordered, b.entries[b.next:]...)
	}
	ordered = append(ordered, b.entries[:b.next]...)

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}
	out := make([]LogEntry, len(ordered))
	copy(out, ordered)
	return out
}

// Clear drops every entry
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.entries {
		b.entries[i] = LogEntry{}
	}
	b.next = 0
	b.full = false
}

var (
	appLogBuffer     *LogBuffer
	appLogBufferOnce sync.Once
)

// GetAppLogBuffer returns the buffer of recent application log entries
func GetAppLogBuffer() *LogBuffer {
	appLogBufferOnce.Do(func() {
		appLogBuffer = NewLogBuffer(500)
	})
	return appLogBuffer
}

// bufferCore is a zapcore.Core that copies entries into a LogBuffer
type bufferCore struct {
	zapcore.LevelEnabler
	buffer *LogBuffer
	fields []zapcore.Field
}

func newBufferCore(buffer *LogBuffer, enab zapcore.LevelEnabler) zapcore.Core {
	return &bufferCore{LevelEnabler: enab, buffer: buffer}
}

func (c *bufferCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &bufferCore{LevelEnabler: c.LevelEnabler, buffer: c.buffer, fields: merged}
}

func (c *bufferCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *bufferCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	entry := LogEntry{
		Timestamp: ent.Time,
		Level:     ent.Level.String(),
		Message:   ent.Message,
	}
	if ent.Caller.Defined {
		entry.Caller = ent.Caller.TrimmedPath()
	}
	if len(enc.Fields) > 0 {
		entry.Fields = enc.Fields
	}

	c.buffer.AddEntry(entry)
	return nil
}

func (c *bufferCore) Sync() error {
	return nil
}
