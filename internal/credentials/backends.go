package credentials

import (
	"github.com/systmms/davsync/internal/netrc"
	"github.com/systmms/davsync/internal/prompt"
	"github.com/systmms/davsync/pkg/exec"
)

// PasswordKeyPrefix namespaces davsync entries in the shared OS keyring.
// The keyring service for a host is PasswordKeyPrefix + hostname.
const PasswordKeyPrefix = "davsync:"

// NetrcSource looks up netrc-style authenticators by hostname. A nil result
// with nil error means no entry.
type NetrcSource interface {
	Authenticators(host string) (*netrc.Authenticator, error)
}

// Keyring is a get/set secret store. Get returns keyring.ErrNotFound when
// nothing is stored.
type Keyring interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
}

// Prompter is the interactive input provider
type Prompter = prompt.Prompter

// Backends bundles the capabilities consulted by the Resolver. Netrc,
// Keyring and Prompt may be nil to disable that step; a nil Command uses
// the real executor.
type Backends struct {
	Netrc   NetrcSource
	Keyring Keyring
	Command exec.CommandExecutor
	Prompt  Prompter
}

// KeyringService returns the keyring service name for host
func KeyringService(host string) string {
	return PasswordKeyPrefix + host
}
