package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/systmms/davsync/cmd/davsync/commands"
	"github.com/systmms/davsync/internal/config"
	"github.com/systmms/davsync/internal/credentials"
	dserrors "github.com/systmms/davsync/internal/errors"
	"github.com/systmms/davsync/internal/fingerprint"
	"github.com/systmms/davsync/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	memguard.CatchInterrupt()

	err := run()
	memguard.Purge()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", dserrors.SimplifyError(err))
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		configFile     string
		noColor        bool
		debug          bool
		nonInteractive bool
		metricsFile    string
	)

	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "davsync",
		Short: "Synchronize calendars and contacts with CalDAV/CardDAV servers",
		Long: `davsync synchronizes local calendar and contact collections with
CalDAV/CardDAV servers.

Server passwords are looked up in ~/.netrc, the system keyring and the
'passwordeval' command before davsync asks for them interactively.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Path = configFile
			cfg.Logger = logging.New(debug, noColor)
			cfg.NonInteractive = nonInteractive

			if metricsFile != "" {
				credentials.InitMetrics()
				fingerprint.InitMetrics()
			}
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if metricsFile == "" {
				return nil
			}
			if err := prometheus.WriteToTextfile(metricsFile, prometheus.DefaultGatherer); err != nil {
				return fmt.Errorf("failed to write metrics: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; fail when no stored password is found")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit (textfile collector format)")

	rootCmd.AddCommand(
		commands.NewPasswordCommand(cfg),
		commands.NewFingerprintCommand(cfg),
		commands.NewConfigCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
