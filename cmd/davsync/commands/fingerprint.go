package commands

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/davsync/internal/config"
	dserrors "github.com/systmms/davsync/internal/errors"
	"github.com/systmms/davsync/internal/fingerprint"
)

// NewFingerprintCommand prints or checks a server certificate fingerprint.
func NewFingerprintCommand(cfg *config.Config) *cobra.Command {
	var (
		algorithm string
		expect    string
		storage   string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fingerprint [url]",
		Short: "Show or check the certificate fingerprint of a server",
		Long: `Connect to a server without certificate validation and print the
fingerprint of the certificate it presents. Put the value in a storage's
'verify_fingerprint' setting to pin it.

With --expect (or --storage pointing at a storage that has
verify_fingerprint) the certificate is checked instead, and the command
fails when it does not match.

Examples:
  davsync fingerprint https://dav.example.com/
  davsync fingerprint --algorithm sha256 dav.example.com:8443
  davsync fingerprint --storage contacts_remote`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target string
			if len(args) == 1 {
				target = args[0]
			}

			alg, err := fingerprint.ParseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			// An explicit pin carries its own algorithm unless one was asked for
			if expect != "" && !cmd.Flags().Changed("algorithm") {
				alg = ""
			}

			if storage != "" {
				if err := cfg.Load(); err != nil {
					return err
				}
				section, err := cfg.GetStorage(storage)
				if err != nil {
					return err
				}
				if target == "" {
					if target, _, err = section.String("url"); err != nil {
						return err
					}
				}
				opts, err := fingerprint.OptionsFromSection(section)
				if err != nil {
					return err
				}
				if expect == "" && opts.Fingerprint != "" {
					expect = opts.Fingerprint
					alg = opts.Algorithm
				}
			}

			if target == "" {
				return dserrors.UserError{
					Message:    "No server given",
					Suggestion: "Pass a URL or use --storage <name> for a storage with a 'url' setting",
				}
			}

			addr, err := fingerprint.Address(target)
			if err != nil {
				return err
			}

			// A pin is checked during the handshake
			var (
				pin    fingerprint.Pin
				tlsCfg *tls.Config
			)
			if expect != "" {
				if pin, err = fingerprint.ParsePin(expect, alg); err != nil {
					return err
				}
				tlsCfg, err = fingerprint.TLSConfig(fingerprint.Options{Fingerprint: expect, Algorithm: pin.Algorithm})
				if err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			cert, err := fingerprint.PeerCertificate(ctx, addr, tlsCfg)
			if err != nil {
				if errors.Is(err, dserrors.ErrCertificateMismatch) {
					return err
				}
				return dserrors.UserError{
					Message:    fmt.Sprintf("Could not fetch the certificate of %s", addr),
					Details:    err.Error(),
					Suggestion: "Check that the server is reachable and speaks TLS on that port",
					Err:        err,
				}
			}
			logger(cfg).Debug("%s presented %q, valid until %s", addr, cert.Subject.String(), cert.NotAfter.Format(time.RFC3339))

			if expect != "" {
				fmt.Fprintln(cmd.OutOrStdout(), pin.String())
				logger(cfg).Info("Certificate of %s matches the pinned %s fingerprint", addr, pin.Algorithm)
				return nil
			}

			if alg == "" {
				alg = fingerprint.SHA1
			}
			fp, err := fingerprint.Compute(cert.Raw, alg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fp)
			return nil
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", string(fingerprint.SHA1), "Digest to print: sha1, md5 or sha256")
	cmd.Flags().StringVar(&expect, "expect", "", "Fail unless the certificate has this fingerprint")
	cmd.Flags().StringVar(&storage, "storage", "", "Take url and verify_fingerprint from this storage")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Connection timeout")

	return cmd
}
