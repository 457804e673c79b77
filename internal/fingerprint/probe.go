package fingerprint

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/url"
	"strings"

	dserrors "github.com/systmms/davsync/internal/errors"
)

// Address turns a storage URL into host:port, defaulting to port 443.
func Address(rawURL string) (string, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "", dserrors.ConfigError{
			Field:      "url",
			Value:      rawURL,
			Message:    "invalid server URL",
			Suggestion: "Use a full URL such as https://dav.example.com/",
			Err:        err,
		}
	}
	if u.Scheme != "https" {
		return "", dserrors.ConfigError{
			Field:   "url",
			Value:   rawURL,
			Message: "only https URLs carry a certificate",
		}
	}

	port := u.Port()
	if port == "" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// PeerCertificate connects to addr and returns the leaf certificate the
// server presents. A nil cfg skips every certificate check; otherwise cfg
// (typically from TLSConfig) runs during the handshake and its error is
// returned as is.
func PeerCertificate(ctx context.Context, addr string, cfg *tls.Config) (*x509.Certificate, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	if cfg == nil {
		cfg = &tls.Config{
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS12,
		}
	} else {
		cfg = cfg.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}

	dialer := &tls.Dialer{Config: cfg}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, fmt.Errorf("%s presented no certificate", addr)
	}
	return certs[0], nil
}
