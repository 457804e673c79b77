// Package fingerprint pins TLS server certificates by digest. It is used
// when a storage disables certificate-authority validation (verify: false)
// and restores tamper detection through verify_fingerprint.
package fingerprint

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	dserrors "github.com/systmms/davsync/internal/errors"
)

// Algorithm names a certificate digest
type Algorithm string

// Supported digests
const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
)

// ParseAlgorithm accepts md5, sha1 and sha256 in any case, with or without
// a dash (SHA-1). The empty string parses as "" and means "infer".
func ParseAlgorithm(name string) (Algorithm, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "")
	switch Algorithm(n) {
	case "":
		return "", nil
	case MD5, SHA1, SHA256:
		return Algorithm(n), nil
	}
	return "", dserrors.ConfigError{
		Field:      "fingerprint_algorithm",
		Value:      name,
		Message:    "unsupported fingerprint algorithm",
		Suggestion: "Use sha1, md5 or sha256",
	}
}

func (a Algorithm) newHash() (hash.Hash, bool) {
	switch a {
	case MD5:
		return md5.New(), true
	case SHA1:
		return sha1.New(), true
	case SHA256:
		return sha256.New(), true
	}
	return nil, false
}

// hexLen is the length of the digest in hex digits
func (a Algorithm) hexLen() int {
	switch a {
	case MD5:
		return 32
	case SHA1:
		return 40
	case SHA256:
		return 64
	}
	return 0
}

// DetectAlgorithm infers the digest from the length of fp
func DetectAlgorithm(fp string) (Algorithm, bool) {
	switch len(Normalize(fp)) {
	case 32:
		return MD5, true
	case 40:
		return SHA1, true
	case 64:
		return SHA256, true
	}
	return "", false
}

// Normalize strips colons and surrounding space and upper-cases fp.
func Normalize(fp string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(fp), ":", ""))
}

// Digest returns the uppercase hex digest of der without separators
func Digest(der []byte, alg Algorithm) (string, error) {
	h, ok := alg.newHash()
	if !ok {
		return "", dserrors.ConfigError{
			Field:      "fingerprint_algorithm",
			Value:      string(alg),
			Message:    "unsupported fingerprint algorithm",
			Suggestion: "Use sha1, md5 or sha256",
		}
	}
	h.Write(der)
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}

// Compute returns the display form of the digest: uppercase hex pairs
// joined by colons, as browsers and openssl print it.
func Compute(der []byte, alg Algorithm) (string, error) {
	d, err := Digest(der, alg)
	if err != nil {
		return "", err
	}
	return colonize(d), nil
}

// Verify reports whether the digest of der equals expected. expected may
// use any case and colon separators; anything else must match exactly.
func Verify(der []byte, expected string, alg Algorithm) bool {
	actual, err := Digest(der, alg)
	if err != nil {
		return false
	}
	want := Normalize(expected)
	if len(want) != len(actual) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(actual), []byte(want)) == 1
}

// Pin is a validated expected fingerprint
type Pin struct {
	Algorithm Algorithm
	// Hex is the normalized digest: uppercase, no colons
	Hex string
}

// ParsePin validates fp. With an empty alg the algorithm is inferred from
// the digest length.
func ParsePin(fp string, alg Algorithm) (Pin, error) {
	norm := Normalize(fp)
	if norm == "" {
		return Pin{}, dserrors.ConfigError{
			Field:   "verify_fingerprint",
			Message: "fingerprint is empty",
		}
	}
	if _, err := hex.DecodeString(norm); err != nil {
		return Pin{}, dserrors.ConfigError{
			Field:      "verify_fingerprint",
			Value:      fp,
			Message:    "fingerprint is not a hex string",
			Suggestion: "Copy the value printed by 'davsync fingerprint <url>'",
			Err:        err,
		}
	}

	if alg == "" {
		detected, ok := DetectAlgorithm(norm)
		if !ok {
			return Pin{}, dserrors.ConfigError{
				Field:      "verify_fingerprint",
				Value:      fp,
				Message:    fmt.Sprintf("cannot infer digest from %d hex digits", len(norm)),
				Suggestion: "Use a SHA-1 (40), MD5 (32) or SHA-256 (64 digit) fingerprint",
			}
		}
		alg = detected
	}

	if want := alg.hexLen(); want == 0 || len(norm) != want {
		return Pin{}, dserrors.ConfigError{
			Field:   "verify_fingerprint",
			Value:   fp,
			Message: fmt.Sprintf("%d hex digits do not form a %s fingerprint", len(norm), alg),
		}
	}

	return Pin{Algorithm: alg, Hex: norm}, nil
}

// Matches reports whether der hashes to the pin
func (p Pin) Matches(der []byte) bool {
	return Verify(der, p.Hex, p.Algorithm)
}

// Check is Matches returning *errors.CertificateMismatchError on failure
func (p Pin) Check(der []byte) error {
	actual, err := Digest(der, p.Algorithm)
	if err != nil {
		return err
	}
	if !p.Matches(der) {
		return &dserrors.CertificateMismatchError{
			Algorithm: string(p.Algorithm),
			Expected:  colonize(p.Hex),
			Actual:    colonize(actual),
		}
	}
	return nil
}

// String renders the pin in colon-separated form
func (p Pin) String() string {
	return colonize(p.Hex)
}

func colonize(h string) string {
	var b strings.Builder
	b.Grow(len(h) + len(h)/2)
	for i := 0; i < len(h); i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		end := i + 2
		if end > len(h) {
			end = len(h)
		}
		b.WriteString(h[i:end])
	}
	return b.String()
}
