// Package keyring stores davsync passwords in an OS secret store or in an
// encrypted file.
package keyring

import (
	"errors"
	"fmt"
	"os"

	"github.com/systmms/davsync/internal/config"
	dserrors "github.com/systmms/davsync/internal/errors"
)

// Backend names accepted by the keyring_backend setting
const (
	BackendSystem = "system"
	BackendFile   = "file"
	BackendNone   = "none"
)

// EnvFilePassword unlocks the file backend without prompting
const EnvFilePassword = "DAVSYNC_KEYRING_PASSWORD"

// ErrNotFound is returned by Get when no secret is stored for the key.
var ErrNotFound = errors.New("secret not found in keyring")

// Store is a get/set secret store keyed by (service, user).
type Store interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
}

// FromSettings opens the backend selected in the general section. It returns
// a nil Store for keyring_backend = none.
func FromSettings(general config.Section) (Store, error) {
	backend, _, err := general.String(config.KeyKeyringBackend)
	if err != nil {
		return nil, err
	}

	switch backend {
	case "", BackendSystem:
		return NewSystem(), nil
	case BackendFile:
		dir, _, err := general.String(config.KeyKeyringDir)
		if err != nil {
			return nil, err
		}
		if dir == "" {
			dir = defaultFileDir()
		}
		return OpenFile(dir, filePasswordFunc())
	case BackendNone:
		return nil, nil
	default:
		return nil, dserrors.ConfigError{
			Field:      "general." + config.KeyKeyringBackend,
			Value:      backend,
			Message:    "unknown keyring backend",
			Suggestion: fmt.Sprintf("Use one of %s, %s, %s", BackendSystem, BackendFile, BackendNone),
		}
	}
}

func defaultFileDir() string {
	return "~/.local/share/davsync/keyring"
}

func filePasswordFunc() func(string) (string, error) {
	if pw := os.Getenv(EnvFilePassword); pw != "" {
		return func(string) (string, error) { return pw, nil }
	}
	return nil
}
