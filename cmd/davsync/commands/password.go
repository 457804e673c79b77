package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/davsync/internal/config"
	"github.com/systmms/davsync/internal/credentials"
)

// NewPasswordCommand resolves a server password the way a sync run would.
func NewPasswordCommand(cfg *config.Config) *cobra.Command {
	var (
		check bool
		stdin bool
	)

	cmd := &cobra.Command{
		Use:   "password <username> <url>",
		Short: "Look up the password davsync would use for a server",
		Long: `Look up the password for a user at a server.

Sources are tried in order: ~/.netrc (or $NETRC), the keyring, the
'passwordeval' command from the general section, and finally an
interactive prompt. A prompted password can be saved to the keyring.

Examples:
  # Print the password
  davsync password bob https://dav.example.com/

  # Only show where it would come from
  davsync password --check bob https://dav.example.com/

  # Answer the prompts from a pipe
  printf 'secret\ny\n' | davsync password --stdin bob https://dav.example.com/`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, resourceURL := args[0], args[1]

			if err := loadOptionalConfig(cfg); err != nil {
				return err
			}

			backends, err := newBackends(cmd, cfg, stdin)
			if err != nil {
				return err
			}

			cache := credentials.NewCache()
			defer cache.Destroy()

			resolver := credentials.New(cfg, cache, backends)
			res, err := resolver.Lookup(context.Background(), username, resourceURL)
			if err != nil {
				return err
			}

			if check {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res.Source)
				logger(cfg).Info("Found password for %s at %s", username, res.Host)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Password)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Print the source of the password instead of the password")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "Read prompt answers from stdin instead of the terminal")

	return cmd
}
