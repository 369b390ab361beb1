// Package cryptox holds the password hashing used for stored credentials.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

var ErrEmptySalt = errors.New("password salt must not be empty")

// DeriveKey runs argon2id over password with the given salt.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// PasswordHasher turns plain passwords into stored digests. The salt is
// server-wide, so equal passwords produce equal digests; it acts as a pepper
// rather than a per-record salt.
type PasswordHasher struct {
	salt []byte
}

func NewPasswordHasher(salt string) (*PasswordHasher, error) {
	if salt == "" {
		return nil, ErrEmptySalt
	}
	return &PasswordHasher{salt: []byte(salt)}, nil
}

// Hash returns the hex-encoded digest of password.
func (h *PasswordHasher) Hash(password string) string {
	return hex.EncodeToString(DeriveKey([]byte(password), h.salt))
}

// Verify reports whether password matches the stored digest.
func (h *PasswordHasher) Verify(password, digest string) bool {
	want, err := hex.DecodeString(digest)
	if err != nil {
		return false
	}
	got := DeriveKey([]byte(password), h.salt)
	return subtle.ConstantTimeCompare(got, want) == 1
}
