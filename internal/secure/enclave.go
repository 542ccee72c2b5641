package secure

import (
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

// SecureBuffer holds a secret inside a memguard enclave.
//
// The zero value and a buffer created from empty data hold the empty secret.
type SecureBuffer struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	destroyed bool
}

// NewSecureBuffer moves data into a new enclave. memguard wipes data in the
// process, so callers must not reuse the slice.
func NewSecureBuffer(data []byte) *SecureBuffer {
	if len(data) == 0 {
		return &SecureBuffer{}
	}
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}
}

// NewSecureString stores a copy of s in a new enclave.
func NewSecureString(s string) *SecureBuffer {
	return NewSecureBuffer([]byte(s))
}

// Empty reports whether the buffer holds no secret.
func (s *SecureBuffer) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enclave == nil
}

// Reveal decrypts the secret and returns a copy of it as a string.
// A destroyed or empty buffer reveals "".
func (s *SecureBuffer) Reveal() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed || s.enclave == nil {
		return "", nil
	}

	locked, err := s.enclave.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open secure buffer: %w", err)
	}
	defer locked.Destroy()

	return string(locked.Bytes()), nil
}

// Destroy releases the enclave. It is idempotent; afterwards Reveal returns "".
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enclave = nil
	s.destroyed = true
}

// String keeps the secret out of fmt output.
func (s *SecureBuffer) String() string {
	return "[REDACTED]"
}

// Wipe zeroes b in place.
func Wipe(b []byte) {
	memguard.WipeBytes(b)
}
