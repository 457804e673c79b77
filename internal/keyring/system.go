package keyring

import (
	"errors"

	gokeyring "github.com/zalando/go-keyring"
)

// System talks to the platform secret store: macOS Keychain, the Secret
// Service on Linux, Windows Credential Manager.
type System struct{}

// NewSystem returns the platform keyring
func NewSystem() *System {
	return &System{}
}

// Get returns the stored password or ErrNotFound
func (s *System) Get(service, user string) (string, error) {
	secret, err := gokeyring.Get(service, user)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", &Error{Op: "get", Service: service, User: user, Err: err}
	}
	return secret, nil
}

// Set stores or replaces the password
func (s *System) Set(service, user, password string) error {
	if err := gokeyring.Set(service, user, password); err != nil {
		return &Error{Op: "set", Service: service, User: user, Err: err}
	}
	return nil
}

// Error wraps a backend failure with the item it concerned
type Error struct {
	Op      string
	Service string
	User    string
	Err     error
}

func (e *Error) Error() string {
	return "keyring " + e.Op + " " + e.Service + "/" + e.User + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

var _ Store = (*System)(nil)
