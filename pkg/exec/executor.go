// Package exec provides abstractions for command execution.
// Credential helpers (passwordeval) run through a CommandExecutor so tests
// can script their output without spawning processes.
package exec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a credential helper that does not finish on its own.
const DefaultTimeout = 30 * time.Second

// waitDelay is how long Wait keeps reading pipes after the process was killed.
const waitDelay = 2 * time.Second

// CommandExecutor defines an interface for executing commands.
type CommandExecutor interface {
	// Execute runs a command with the given context and arguments.
	// Returns stdout, stderr, and any error that occurred.
	Execute(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// RealCommandExecutor executes actual commands using os/exec.
type RealCommandExecutor struct{}

// Execute runs the command without a shell. When ctx has no deadline the
// command is still bounded by DefaultTimeout.
func (r *RealCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		err = errors.Join(ctx.Err(), err)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// DefaultExecutor returns the standard production executor.
func DefaultExecutor() CommandExecutor {
	return &RealCommandExecutor{}
}

// ExitCode extracts the exit status from an Execute error, or -1 when the
// process never reported one (spawn failure, killed by timeout).
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// IsNotFound reports whether err means the executable could not be located
// or is not executable.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, exec.ErrDot)
}
