// Package piicrypt encrypts PII fields at rest with AES-256-GCM and derives
// a separate keyed lookup hash for exact-match queries. Ciphertexts are
// stored as "base64(iv).base64(ciphertext)" together with the id of the key
// that produced them, so keys can be rotated without a flag-day
// re-encryption of the vault.
package piicrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/fcdesk/credvault/internal/common"
)

const (
	// KeyLength is the required AES key length (AES-256).
	KeyLength = 32

	// nonceSize is the GCM IV length; a fresh random IV is drawn per encrypt.
	nonceSize = 12
)

var (
	// ErrInvalidCiphertext is returned when the stored value has the wrong
	// format, invalid base64, or fails AEAD tag verification.
	ErrInvalidCiphertext = errors.New("piicrypt: invalid ciphertext")

	// ErrUnknownKeyVersion is returned when a vault row references a key id
	// the keyring does not hold.
	ErrUnknownKeyVersion = errors.New("piicrypt: unknown key version")
)

// Keyring holds the process-wide PII keys, one of which is current. Keys are
// loaded once at startup from deployment secrets and never regenerated
// during the process lifetime.
type Keyring struct {
	keys    map[int]cipher.AEAD
	current int
}

// NewKeyring builds a Keyring from raw 32-byte keys indexed by version.
// current must be present in keys.
func NewKeyring(current int, keys map[int][]byte) (*Keyring, error) {
	if len(keys) == 0 {
		return nil, errors.New("piicrypt: no keys")
	}
	aeads := make(map[int]cipher.AEAD, len(keys))
	for version, raw := range keys {
		if len(raw) != KeyLength {
			return nil, fmt.Errorf("piicrypt: key v%d has length %d, want %d", version, len(raw), KeyLength)
		}
		block, err := aes.NewCipher(raw)
		if err != nil {
			return nil, err
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		aeads[version] = aead
	}
	if _, ok := aeads[current]; !ok {
		return nil, fmt.Errorf("piicrypt: current key version %d not in keyring", current)
	}
	return &Keyring{keys: aeads, current: current}, nil
}

// CurrentVersion returns the id of the key used for new encryptions.
func (k *Keyring) CurrentVersion() int {
	return k.current
}

// Encrypt seals plaintext under the current key with a fresh random IV and
// returns the storage encoding plus the key version that produced it.
func (k *Keyring) Encrypt(plaintext string) (string, int, error) {
	aead := k.keys[k.current]
	iv := common.GenerateRandByteArray(nonceSize)
	ct := aead.Seal(nil, iv, []byte(plaintext), nil)
	value := base64.StdEncoding.EncodeToString(iv) + "." + base64.StdEncoding.EncodeToString(ct)
	return value, k.current, nil
}

// Decrypt opens a stored "ivB64.cipherB64" value with the key identified by
// version. Format, base64, and tag failures all map to ErrInvalidCiphertext;
// the caller never learns which layer rejected the value.
func (k *Keyring) Decrypt(value string, version int) (string, error) {
	aead, ok := k.keys[version]
	if !ok {
		return "", ErrUnknownKeyVersion
	}

	parts := strings.Split(value, ".")
	if len(parts) != 2 {
		return "", ErrInvalidCiphertext
	}
	iv, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(iv) != nonceSize {
		return "", ErrInvalidCiphertext
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	plain, err := aead.Open(nil, iv, ct, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plain), nil
}

// LookupHasher derives the deterministic, salted digest used for
// equality search on PII fields. The salt is independent from the AEAD key;
// knowing it alone cannot decrypt anything.
type LookupHasher struct {
	salt []byte
}

// MinLookupSaltLength is the minimum accepted lookup-hash salt length.
const MinLookupSaltLength = 16

// NewLookupHasher validates the static salt and returns a hasher.
func NewLookupHasher(salt []byte) (*LookupHasher, error) {
	if len(salt) < MinLookupSaltLength {
		return nil, fmt.Errorf("piicrypt: lookup salt has length %d, want >= %d", len(salt), MinLookupSaltLength)
	}
	return &LookupHasher{salt: salt}, nil
}

// Hash returns base64(SHA-256(plain || salt)).
func (h *LookupHasher) Hash(plain string) string {
	d := sha256.New()
	d.Write([]byte(plain))
	d.Write(h.salt)
	return base64.StdEncoding.EncodeToString(d.Sum(nil))
}
