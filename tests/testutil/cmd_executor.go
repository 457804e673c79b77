// Package testutil provides testing utilities for davsync.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/systmms/davsync/pkg/exec"
)

// MockCommandExecutor provides a configurable mock for passwordeval helpers.
type MockCommandExecutor struct {
	mu sync.Mutex

	// Responses maps "command arg1 arg2" to the scripted result.
	Responses map[string]MockResponse

	// DefaultResponse is used when no key matches.
	DefaultResponse *MockResponse

	// RecordedCalls stores all calls made to Execute for verification.
	RecordedCalls []RecordedCall

	// StrictMode causes Execute to fail if no matching response is found.
	StrictMode bool
}

// MockResponse defines the scripted output of one command.
type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

// RecordedCall stores information about a command execution.
type RecordedCall struct {
	Command string
	Args    []string
	Context context.Context
}

// NewMockCommandExecutor creates a new mock executor with empty responses.
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Responses:     make(map[string]MockResponse),
		RecordedCalls: make([]RecordedCall, 0),
	}
}

// Execute records the call and returns the scripted response.
func (m *MockCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RecordedCalls = append(m.RecordedCalls, RecordedCall{
		Command: name,
		Args:    append([]string(nil), args...),
		Context: ctx,
	})

	key := buildKey(name, args)
	if resp, ok := m.Responses[key]; ok {
		return resp.Stdout, resp.Stderr, resp.Err
	}

	if m.DefaultResponse != nil {
		return m.DefaultResponse.Stdout, m.DefaultResponse.Stderr, m.DefaultResponse.Err
	}

	if m.StrictMode {
		return nil, nil, fmt.Errorf("mock: no response configured for command: %s", key)
	}

	return []byte{}, []byte{}, nil
}

func buildKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// AddResponse registers a response for an exact command line.
func (m *MockCommandExecutor) AddResponse(commandLine string, response MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[commandLine] = response
}

// AddPassword scripts a helper that prints password followed by a newline.
func (m *MockCommandExecutor) AddPassword(commandLine, password string) {
	m.AddResponse(commandLine, MockResponse{Stdout: []byte(password + "\n")})
}

// AddErrorResponse adds a failing response with the given stderr.
func (m *MockCommandExecutor) AddErrorResponse(commandLine string, errMsg string) {
	m.AddResponse(commandLine, MockResponse{
		Stderr: []byte(errMsg),
		Err:    fmt.Errorf("mock: %s", errMsg),
	})
}

// Calls returns a copy of all recorded calls.
func (m *MockCommandExecutor) Calls() []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedCall(nil), m.RecordedCalls...)
}

// CallCount returns the number of times Execute was called.
func (m *MockCommandExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RecordedCalls)
}

// AssertNotCalled verifies that Execute never ran.
func (m *MockCommandExecutor) AssertNotCalled(t interface{ Error(args ...interface{}) }) bool {
	if n := m.CallCount(); n > 0 {
		t.Error("expected no command to run, but Execute was called", n, "times")
		return false
	}
	return true
}

var _ exec.CommandExecutor = (*MockCommandExecutor)(nil)
