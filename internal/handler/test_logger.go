package handler

import (
	"sync"

	"pdf-extract-server/internal/domain"
)

// MockHandlerLogger records log calls for handler package tests.
type MockHandlerLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockHandlerLogger() *MockHandlerLogger {
	return &MockHandlerLogger{}
}

var _ domain.Logger = (*MockHandlerLogger)(nil)

func (l *MockHandlerLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, level+": "+msg)
}

func (l *MockHandlerLogger) Info(msg string, fields ...interface{})             { l.record("info", msg) }
func (l *MockHandlerLogger) Error(msg string, err error, fields ...interface{}) { l.record("error", msg) }
func (l *MockHandlerLogger) Debug(msg string, fields ...interface{})            { l.record("debug", msg) }
func (l *MockHandlerLogger) Warn(msg string, fields ...interface{})             { l.record("warn", msg) }

// Messages returns the recorded "level: message" lines.
func (l *MockHandlerLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}
