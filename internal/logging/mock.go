package logging

import (
	"fmt"
	"sync"
)

// MockLogger captures log entries for assertions in tests. Child loggers
// created through WithField/WithError share the parent's entry list.
type MockLogger struct {
	Entries []LogEntry

	mu            *sync.Mutex
	root          *MockLogger
	pendingError  error
	pendingFields []Field
}

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{mu: &sync.Mutex{}}
}

func (m *MockLogger) owner() *MockLogger {
	if m.root != nil {
		return m.root
	}
	if m.mu == nil {
		m.mu = &sync.Mutex{}
	}
	return m
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	all := make([]Field, 0, len(m.pendingFields)+len(fields))
	all = append(all, m.pendingFields...)
	all = append(all, fields...)

	root := m.owner()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.Entries = append(root.Entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  all,
		Error:   m.pendingError,
	})
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.record("INFO", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.record("WARN", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

// Fatal records the entry; the mock never exits.
func (m *MockLogger) Fatal(msg string, fields ...Field) { m.record("FATAL", msg, fields) }

func (m *MockLogger) Fatalf(msg string, args ...interface{}) {
	m.record("FATAL", fmt.Sprintf(msg, args...), nil)
}

func (m *MockLogger) WithError(err error) Logger {
	return &MockLogger{root: m.owner(), pendingError: err, pendingFields: m.pendingFields}
}

func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.WithFields(Field{Key: key, Value: value})
}

func (m *MockLogger) WithFields(fields ...Field) Logger {
	all := make([]Field, 0, len(m.pendingFields)+len(fields))
	all = append(all, m.pendingFields...)
	all = append(all, fields...)
	return &MockLogger{root: m.owner(), pendingError: m.pendingError, pendingFields: all}
}

// GetEntries returns a snapshot of the captured entries.
func (m *MockLogger) GetEntries() []LogEntry {
	root := m.owner()
	root.mu.Lock()
	defer root.mu.Unlock()
	out := make([]LogEntry, len(root.Entries))
	copy(out, root.Entries)
	return out
}

// GetEntriesByLevel filters captured entries by level (DEBUG, INFO, ...).
func (m *MockLogger) GetEntriesByLevel(level string) []LogEntry {
	var entries []LogEntry
	for _, entry := range m.GetEntries() {
		if entry.Level == level {
			entries = append(entries, entry)
		}
	}
	return entries
}

// HasEntry reports whether an entry with the given level and message exists.
func (m *MockLogger) HasEntry(level, message string) bool {
	for _, entry := range m.GetEntries() {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}
