package fingerprint

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"time"

	"github.com/systmms/davsync/internal/config"
	dserrors "github.com/systmms/davsync/internal/errors"
)

// Storage settings read by OptionsFromSection
const (
	KeyVerify               = "verify"
	KeyVerifyFingerprint    = "verify_fingerprint"
	KeyFingerprintAlgorithm = "fingerprint_algorithm"
)

// DefaultTimeout bounds a whole HTTP request made by NewHTTPClient
const DefaultTimeout = 30 * time.Second

// Options controls certificate checking for one storage connection
type Options struct {
	// Verify enables certificate-authority chain validation
	Verify bool
	// Fingerprint is the expected peer certificate digest, optional
	Fingerprint string
	// Algorithm of Fingerprint; inferred from its length when empty
	Algorithm Algorithm
	// RootCAs overrides the system pool when Verify is set
	RootCAs *x509.CertPool
	Timeout time.Duration
}

// OptionsFromSection reads verify (default true), verify_fingerprint and
// fingerprint_algorithm from a storage section.
func OptionsFromSection(s config.Section) (Options, error) {
	verify, err := s.Bool(KeyVerify, true)
	if err != nil {
		return Options{}, err
	}
	fp, _, err := s.String(KeyVerifyFingerprint)
	if err != nil {
		return Options{}, err
	}
	algName, _, err := s.String(KeyFingerprintAlgorithm)
	if err != nil {
		return Options{}, err
	}
	alg, err := ParseAlgorithm(algName)
	if err != nil {
		return Options{}, err
	}
	return Options{Verify: verify, Fingerprint: fp, Algorithm: alg}, nil
}

// TLSConfig builds the client TLS configuration for opts.
//
// With Verify the standard chain validation runs and a supplied fingerprint
// is enforced on top of it. Without Verify chain validation is skipped; the
// connection is accepted only if the peer certificate matches the
// fingerprint, or unconditionally when none was supplied.
func TLSConfig(opts Options) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		RootCAs:    opts.RootCAs,
	}

	if !opts.Verify {
		cfg.InsecureSkipVerify = true
	}

	if opts.Fingerprint == "" {
		return cfg, nil
	}

	pin, err := ParsePin(opts.Fingerprint, opts.Algorithm)
	if err != nil {
		return nil, err
	}
	cfg.VerifyConnection = VerifyConnection(pin)
	return cfg, nil
}

// VerifyConnection returns a tls.Config hook that checks the leaf
// certificate against pin.
func VerifyConnection(pin Pin) func(tls.ConnectionState) error {
	return func(cs tls.ConnectionState) error {
		if len(cs.PeerCertificates) == 0 {
			recordCheck(false)
			return &dserrors.CertificateMismatchError{
				Algorithm: string(pin.Algorithm),
				Expected:  pin.String(),
				Actual:    "no certificate",
			}
		}

		err := pin.Check(cs.PeerCertificates[0].Raw)
		recordCheck(err == nil)
		return err
	}
}

// NewTransport clones http.DefaultTransport with the pinned TLS config
func NewTransport(opts Options) (*http.Transport, error) {
	tlsCfg, err := TLSConfig(opts)
	if err != nil {
		return nil, err
	}

	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("unexpected default transport %T", http.DefaultTransport)
	}
	transport := base.Clone()
	transport.TLSClientConfig = tlsCfg
	return transport, nil
}

// NewHTTPClient returns a client whose connections are checked per opts
func NewHTTPClient(opts Options) (*http.Client, error) {
	transport, err := NewTransport(opts)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
