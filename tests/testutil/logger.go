package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/systmms/davsync/internal/logging"
)

// TestLogger captures log output for validation in tests.
//
// Example usage:
//
//	logger := NewTestLogger(t, true)
//	cfg := &config.Config{Logger: logger.Logger}
//	// ... exercise code ...
//	logger.AssertContains(t, "Got password for bob from netrc")
//	logger.AssertNotContains(t, "hunter2")
type TestLogger struct {
	*logging.Logger

	buffer *syncBuffer
}

// NewTestLogger creates a colorless logger writing to an in-memory buffer.
func NewTestLogger(t *testing.T, debug bool) *TestLogger {
	t.Helper()

	buf := &syncBuffer{}
	return &TestLogger{
		Logger: logging.NewWithWriter(buf, debug, true),
		buffer: buf,
	}
}

// GetOutput returns everything logged so far.
func (l *TestLogger) GetOutput() string {
	return l.buffer.String()
}

// Clear drops the captured output.
func (l *TestLogger) Clear() {
	l.buffer.Reset()
}

// AssertContains asserts that the log output contains substr.
func (l *TestLogger) AssertContains(t *testing.T, substr string) {
	t.Helper()
	assert.Contains(t, l.GetOutput(), substr, "Expected log output to contain %q", substr)
}

// AssertNotContains asserts that the log output does NOT contain substr.
// Use it to prove a password never reached the log.
func (l *TestLogger) AssertNotContains(t *testing.T, substr string) {
	t.Helper()
	assert.NotContains(t, l.GetOutput(), substr, "Expected log output to NOT contain %q", substr)
}

// AssertLogCount asserts how often a level marker appears.
//
// Level markers:
//   - Info: "✓"
//   - Warn: "⚠"
//   - Error: "✗"
//   - Debug: "[DEBUG]"
func (l *TestLogger) AssertLogCount(t *testing.T, level string, count int) {
	t.Helper()

	var marker string
	switch level {
	case "info":
		marker = "✓"
	case "warn":
		marker = "⚠"
	case "error":
		marker = "✗"
	case "debug":
		marker = "[DEBUG]"
	default:
		t.Fatalf("Unknown log level: %s", level)
	}

	actual := strings.Count(l.GetOutput(), marker)
	assert.Equal(t, count, actual, "Expected %d %s log messages, got %d", count, level, actual)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}
