package service

import (
	"fmt"
	"sync"

	"pdf-extract-server/internal/domain"
)

// MockLogger records messages; safe for concurrent use.
type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockServiceLogger() *MockLogger {
	return &MockLogger{messages: []string{}}
}

var _ domain.Logger = (*MockLogger)(nil)

func (m *MockLogger) record(s string) {
	m.mu.Lock()
	m.messages = append(m.messages, s)
	m.mu.Unlock()
}

func (m *MockLogger) Info(msg string, args ...interface{})  { m.record("INFO: " + msg) }
func (m *MockLogger) Debug(msg string, args ...interface{}) { m.record("DEBUG: " + msg) }
func (m *MockLogger) Warn(msg string, args ...interface{})  { m.record("WARN: " + msg) }

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	m.record(fmt.Sprintf("ERROR: %s - %v", msg, err))
}

func (m *MockLogger) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}
