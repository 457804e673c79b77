// Package netrc exposes the user's netrc file as a credential source.
package netrc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	gonetrc "github.com/bgentry/go-netrc/netrc"
)

// EnvNetrc overrides the netrc location, as curl and git do
const EnvNetrc = "NETRC"

// ErrNoNetrc is returned when no netrc file exists at the configured path.
var ErrNoNetrc = errors.New("netrc file not found")

// Authenticator is a matched machine entry
type Authenticator struct {
	Login    string
	Account  string
	Password string
}

// File looks hosts up in a netrc file. The file is re-read on every lookup;
// callers cache the resolved password, not the file.
type File struct {
	Path string
}

// New returns a File for path, or for the default location when path is empty
func New(path string) *File {
	if path == "" {
		path = DefaultPath()
	}
	return &File{Path: path}
}

// DefaultPath returns $NETRC, or ~/.netrc (~/_netrc on Windows)
func DefaultPath() string {
	if p := os.Getenv(EnvNetrc); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	name := ".netrc"
	if runtime.GOOS == "windows" {
		name = "_netrc"
	}
	return filepath.Join(home, name)
}

// Authenticators returns the entry for host, falling back to the "default"
// machine. A nil result with nil error means no entry matched.
func (f *File) Authenticators(host string) (*Authenticator, error) {
	if f.Path == "" {
		return nil, ErrNoNetrc
	}

	n, err := gonetrc.ParseFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoNetrc, f.Path)
		}
		return nil, fmt.Errorf("failed to parse netrc %s: %w", f.Path, err)
	}

	m := n.FindMachine(host)
	if m == nil {
		return nil, nil
	}

	return &Authenticator{
		Login:    m.Login,
		Account:  m.Account,
		Password: m.Password,
	}, nil
}
