package testutils

import (
	"sync"

	"github.com/evdnx/gotrend/logger"
)

// LogEntry captures a single log invocation for inspection in tests.
type LogEntry struct {
	Level  string
	Msg    string
	Fields []logger.Field
}

// MockLogger implements the Logger interface but stores entries in-memory.
type MockLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewMockLogger returns a logger that records everything.
func NewMockLogger() *MockLogger { return &MockLogger{} }

func (l *MockLogger) record(level, msg string, fields ...logger.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	copiedFields := append([]logger.Field(nil), fields...)
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Fields: copiedFields})
}

func (l *MockLogger) Debug(msg string, fields ...logger.Field) {
	l.record("debug", msg, fields...)
}
func (l *MockLogger) Info(msg string, fields ...logger.Field) {
	l.record("info", msg, fields...)
}
func (l *MockLogger) Warn(msg string, fields ...logger.Field) {
	l.record("warn", msg, fields...)
}
func (l *MockLogger) Error(msg string, fields ...logger.Field) {
	l.record("error", msg, fields...)
}

// LastMessage returns the message associated with the most recent log entry.
func (l *MockLogger) LastMessage() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return ""
	}
	return l.entries[len(l.entries)-1].Msg
}

// Count returns how many entries were logged with msg.
func (l *MockLogger) Count(msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Msg == msg {
			n++
		}
	}
	return n
}

// Entries returns a copy of everything logged so far.
func (l *MockLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
