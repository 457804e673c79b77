package fakes

import (
	"errors"
	"sync"

	"github.com/systmms/davsync/internal/credentials"
	"github.com/systmms/davsync/internal/keyring"
)

// ErrFakeKeyringLocked simulates a keyring the user refused to unlock
var ErrFakeKeyringLocked = errors.New("fake keyring is locked")

// FakeKeyring is an in-memory keyring.Store
type FakeKeyring struct {
	mu sync.Mutex

	// Secrets is service -> user -> password
	Secrets map[string]map[string]string

	// GetErr is returned by Get when set, before any lookup
	GetErr error

	// SetErr is returned by Set when set; nothing is stored
	SetErr error

	GetCalls int
	SetCalls []KeyringWrite
}

// KeyringWrite records one Set call
type KeyringWrite struct {
	Service  string
	User     string
	Password string
}

// NewFakeKeyring creates an empty fake keyring
func NewFakeKeyring() *FakeKeyring {
	return &FakeKeyring{Secrets: make(map[string]map[string]string)}
}

// SetSecret seeds the keyring without recording a Set call
func (f *FakeKeyring) SetSecret(service, user, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(service, user, password)
}

// Get returns the stored password or keyring.ErrNotFound
func (f *FakeKeyring) Get(service, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.GetCalls++
	if f.GetErr != nil {
		return "", f.GetErr
	}
	if pw, ok := f.Secrets[service][user]; ok {
		return pw, nil
	}
	return "", keyring.ErrNotFound
}

// Set stores password unless SetErr is configured
func (f *FakeKeyring) Set(service, user, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SetCalls = append(f.SetCalls, KeyringWrite{Service: service, User: user, Password: password})
	if f.SetErr != nil {
		return f.SetErr
	}
	f.put(service, user, password)
	return nil
}

// Stored returns what is stored for (service, user)
func (f *FakeKeyring) Stored(service, user string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pw, ok := f.Secrets[service][user]
	return pw, ok
}

func (f *FakeKeyring) put(service, user, password string) {
	if f.Secrets == nil {
		f.Secrets = make(map[string]map[string]string)
	}
	if f.Secrets[service] == nil {
		f.Secrets[service] = make(map[string]string)
	}
	f.Secrets[service][user] = password
}

var (
	_ keyring.Store       = (*FakeKeyring)(nil)
	_ credentials.Keyring = (*FakeKeyring)(nil)
)
