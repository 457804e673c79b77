package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// WriteFile writes content to name inside a fresh temp dir and returns the path.
func WriteFile(t *testing.T, name, content string, perm os.FileMode) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// WriteScript creates an executable /bin/sh script with the given body.
// Tests using it are skipped on Windows and should not call t.Parallel:
// a concurrent fork can inherit the write descriptor and make exec fail
// with ETXTBSY.
func WriteScript(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	return WriteFile(t, "helper.sh", "#!/bin/sh\n"+body+"\n", 0o755)
}

// WriteNetrc writes a netrc file readable only by the owner.
func WriteNetrc(t *testing.T, content string) string {
	t.Helper()
	return WriteFile(t, ".netrc", content, 0o600)
}

// WriteConfig writes a config.yaml and returns its path.
func WriteConfig(t *testing.T, content string) string {
	t.Helper()
	return WriteFile(t, "config.yaml", content, 0o600)
}

// SelfSignedCert returns a throwaway certificate for host together with its
// DER encoding, for pinning tests against httptest servers.
func SelfSignedCert(t *testing.T, host string) (tls.Certificate, []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: host},
		DNSNames:     []string{host},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("Failed to create certificate: %v", err)
	}

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, der
}
