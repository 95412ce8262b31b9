// Package passhash derives and verifies password hashes with
// PBKDF2-HMAC-SHA256. The parameters (100k iterations, 256-bit output) are
// deliberately slow; the KDF delay is backpressure against online brute
// force, not something to optimize away.
package passhash

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/pbkdf2"

	"github.com/fcdesk/credvault/internal/common"
)

const (
	// Iterations is the PBKDF2 iteration count.
	Iterations = 100_000

	// KeyLength is the derived key length in bytes (256 bits).
	KeyLength = 32

	// SaltLength is the length of freshly generated salts. Stored salts
	// shorter than this are rejected rather than used.
	SaltLength = 16
)

// ErrBadSalt is returned when a stored salt is shorter than SaltLength.
// A malformed salt is a hard error; there is no fallback to unsalted hashing.
var ErrBadSalt = errors.New("passhash: salt too short")

// NewSalt returns a fresh random salt of SaltLength bytes.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltLength)
}

// Derive computes the PBKDF2 hash of password under the caller-supplied
// salt. The salt is always caller-supplied: fresh on creation, the stored
// value on verification.
func Derive(password string, salt []byte) ([]byte, error) {
	if len(salt) < SaltLength {
		return nil, ErrBadSalt
	}
	return pbkdf2.Key([]byte(password), salt, Iterations, KeyLength, sha256.New), nil
}

// Verify derives the candidate hash and compares it against the stored one
// in constant time. Length mismatch counts as a mismatch, never as a panic.
func Verify(password string, salt, stored []byte) (bool, error) {
	derived, err := Derive(password, salt)
	if err != nil {
		return false, err
	}
	defer common.WipeByteArray(derived)
	return subtle.ConstantTimeCompare(derived, stored) == 1, nil
}
