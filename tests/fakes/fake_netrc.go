package fakes

import (
	"sync"

	"github.com/systmms/davsync/internal/credentials"
	"github.com/systmms/davsync/internal/netrc"
)

// FakeNetrc serves netrc authenticators from memory
type FakeNetrc struct {
	mu sync.Mutex

	// Machines is host -> authenticator
	Machines map[string]netrc.Authenticator

	// Err is returned by every lookup when set
	Err error

	Lookups []string
}

// NewFakeNetrc creates an empty fake netrc
func NewFakeNetrc() *FakeNetrc {
	return &FakeNetrc{Machines: make(map[string]netrc.Authenticator)}
}

// WithMachine adds an entry and returns the fake for chaining
func (f *FakeNetrc) WithMachine(host, login, password string) *FakeNetrc {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Machines[host] = netrc.Authenticator{Login: login, Password: password}
	return f
}

// Authenticators returns the entry for host, nil when absent
func (f *FakeNetrc) Authenticators(host string) (*netrc.Authenticator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Lookups = append(f.Lookups, host)
	if f.Err != nil {
		return nil, f.Err
	}
	if auth, ok := f.Machines[host]; ok {
		return &auth, nil
	}
	return nil, nil
}

var _ credentials.NetrcSource = (*FakeNetrc)(nil)
