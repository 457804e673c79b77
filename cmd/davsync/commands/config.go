package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/systmms/davsync/internal/config"
	dserrors "github.com/systmms/davsync/internal/errors"
	"github.com/systmms/davsync/internal/fingerprint"
	"github.com/systmms/davsync/internal/keyring"
)

// NewConfigCommand groups configuration helpers.
func NewConfigCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration file",
	}

	cmd.AddCommand(newConfigCheckCommand(cfg))
	return cmd
}

func newConfigCheckCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and show the parsed general settings",
		Long: `Load and validate the configuration file.

Every value is shown with the type it was parsed as, so unquoted values that
turned into booleans or numbers are easy to spot. Storage fingerprints and
the keyring backend are checked as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			general := cfg.General()

			keys := make([]string, 0, len(general))
			for k := range general {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			fmt.Fprintln(out, "general:")
			for _, k := range keys {
				fmt.Fprintf(out, "  %s = %v (%s)\n", k, general[k], typeName(general[k]))
			}

			if _, err := keyring.FromSettings(general); err != nil {
				return err
			}

			names := make([]string, 0, len(cfg.Settings.Storages))
			for name := range cfg.Settings.Storages {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				opts, err := fingerprint.OptionsFromSection(cfg.Settings.Storages[name])
				if err == nil && opts.Fingerprint != "" {
					_, err = fingerprint.ParsePin(opts.Fingerprint, opts.Algorithm)
				}
				if err != nil {
					return dserrors.ConfigError{
						Field:   "storages." + name,
						Message: err.Error(),
						Err:     err,
					}
				}
			}

			fmt.Fprintf(out, "%d pairs, %d storages\n", len(cfg.Settings.Pairs), len(cfg.Settings.Storages))
			logger(cfg).Info("Configuration %s is valid", cfg.Path)
			return nil
		},
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	default:
		return "string"
	}
}
