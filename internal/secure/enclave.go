package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// SecureBuffer keeps a secret encrypted at rest in memory. It wraps a
// memguard.Enclave; plaintext only exists while a caller holds the result of
// Open or Reveal.
type SecureBuffer struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	empty     bool
	destroyed bool
}

// NewSecureBuffer seals data into an enclave. memguard wipes the source
// slice, so callers must not reuse it.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	if len(data) == 0 {
		// memguard refuses zero-length enclaves
		return &SecureBuffer{empty: true}, nil
	}
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}, nil
}

// NewSecureString seals a string. The string itself cannot be wiped; only
// the intermediate copy is.
func NewSecureString(s string) (*SecureBuffer, error) {
	return NewSecureBuffer([]byte(s))
}

// Open decrypts the enclave into a locked buffer. The caller must Destroy it.
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed || s.empty {
		return memguard.NewBufferFromBytes([]byte{}), nil
	}
	return s.enclave.Open()
}

// Reveal returns a plaintext copy of the secret.
func (s *SecureBuffer) Reveal() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed || s.empty {
		return "", nil
	}

	locked, err := s.enclave.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()

	return string(locked.Bytes()), nil
}

// Destroy drops the enclave. It is idempotent; later Open/Reveal calls
// return empty values.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enclave = nil
	s.destroyed = true
}

// IsDestroyed reports whether Destroy has been called
func (s *SecureBuffer) IsDestroyed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed
}
