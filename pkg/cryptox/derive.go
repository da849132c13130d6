package cryptox

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// MinSecretSize is the shortest PORTAL_SECRET accepted for key derivation.
const MinSecretSize = 32

var ErrWeakSecret = errors.New("cryptox: secret too short")

// DeriveKey expands secret into a size-byte key bound to purpose (HKDF-SHA256).
// Different purposes yield independent keys from the same secret.
func DeriveKey(secret []byte, purpose string, size int) ([]byte, error) {
	if len(secret) < MinSecretSize {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrWeakSecret, MinSecretSize, len(secret))
	}

	key := make([]byte, size)
	r := hkdf.New(sha256.New, secret, nil, []byte("fieldops/"+purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}
