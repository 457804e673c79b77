package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/davsync/internal/config"
	"github.com/systmms/davsync/internal/credentials"
	"github.com/systmms/davsync/internal/keyring"
	"github.com/systmms/davsync/internal/logging"
	"github.com/systmms/davsync/internal/netrc"
	"github.com/systmms/davsync/internal/prompt"
	"github.com/systmms/davsync/pkg/exec"
)

// logger returns cfg.Logger, or a quiet logger when the root command did
// not set one (tests constructing a subcommand directly).
func logger(cfg *config.Config) *logging.Logger {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return cfg.Logger
}

// loadOptionalConfig loads cfg.Path, falling back to empty settings when
// the file does not exist. Credential lookups work without any config.
func loadOptionalConfig(cfg *config.Config) error {
	if _, err := os.Stat(cfg.Path); errors.Is(err, os.ErrNotExist) {
		logger(cfg).Debug("No configuration at %s, using defaults", cfg.Path)
		return cfg.LoadBytes([]byte("general: {}\n"))
	}
	return cfg.Load()
}

// newBackends wires the production credential sources. With stdin the
// prompt reads answers line by line from the command input instead of the
// terminal.
func newBackends(cmd *cobra.Command, cfg *config.Config, stdin bool) (credentials.Backends, error) {
	backends := credentials.Backends{
		Netrc:   netrc.New(""),
		Command: exec.DefaultExecutor(),
	}

	store, err := keyring.FromSettings(cfg.General())
	if err != nil {
		return credentials.Backends{}, err
	}
	if store != nil {
		backends.Keyring = store
	}

	switch {
	case cfg.NonInteractive:
		backends.Prompt = prompt.NonInteractive{}
	case stdin:
		backends.Prompt = prompt.NewStream(cmd.InOrStdin(), cmd.ErrOrStderr())
	default:
		backends.Prompt = prompt.Auto()
	}
	return backends, nil
}
