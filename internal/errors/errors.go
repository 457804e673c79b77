package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is checks across the credential and TLS layers
var (
	ErrAuthenticationFailure = errors.New("authentication failure")
	ErrCertificateMismatch   = errors.New("certificate fingerprint mismatch")
	ErrConfigValue           = errors.New("malformed config value")
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
	Err        error
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// ConfigValueError is returned when a raw config literal cannot be coerced.
// An unquoted '#' is the only case today: it is reserved for comments.
type ConfigValueError struct {
	Raw    string
	Reason string
}

func (e *ConfigValueError) Error() string {
	return fmt.Sprintf("invalid config value %q: %s", e.Raw, e.Reason)
}

func (e *ConfigValueError) Is(target error) bool {
	return target == ErrConfigValue
}

// CommandError represents a command execution error
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
	Err        error
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e CommandError) Unwrap() error {
	return e.Err
}

// AuthenticationError reports that no credential source produced a password.
type AuthenticationError struct {
	Username string
	Host     string
	Reason   string
}

func (e *AuthenticationError) Error() string {
	msg := fmt.Sprintf("could not obtain password for %s at host %s", e.Username, e.Host)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthenticationFailure
}

// CertificateMismatchError is returned when a pinned peer certificate does not
// hash to the configured fingerprint.
type CertificateMismatchError struct {
	Algorithm string
	Expected  string
	Actual    string
}

func (e *CertificateMismatchError) Error() string {
	return fmt.Sprintf("%s fingerprint mismatch: expected %s, got %s", e.Algorithm, e.Expected, e.Actual)
}

func (e *CertificateMismatchError) Is(target error) bool {
	return target == ErrCertificateMismatch
}

// WrapCommandNotFound wraps command not found errors with helpful suggestions
func WrapCommandNotFound(command string, err error) error {
	return CommandError{
		Command:    command,
		Message:    "command not found or not executable",
		Suggestion: fmt.Sprintf("Make sure '%s' exists and is executable, or fix 'passwordeval' in your config", command),
		Err:        err,
	}
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Already a user-friendly error
	var (
		userErr    UserError
		configErr  ConfigError
		commandErr CommandError
		authErr    *AuthenticationError
		certErr    *CertificateMismatchError
	)
	switch {
	case errors.As(err, &userErr), errors.As(err, &configErr), errors.As(err, &commandErr):
		return err
	case errors.As(err, &authErr):
		return UserError{
			Message:    authErr.Error(),
			Suggestion: fmt.Sprintf("Add an entry for %s to ~/.netrc, store it in the keyring, or run interactively", authErr.Host),
			Err:        err,
		}
	case errors.As(err, &certErr):
		return UserError{
			Message:    "Server certificate does not match the pinned fingerprint",
			Details:    certErr.Error(),
			Suggestion: "Check 'verify_fingerprint' for this storage; the server certificate may have been replaced",
			Err:        err,
		}
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	return err
}
