// Package cryptox implements the credential primitives: random salts and
// salted password hashes.
//
// Two hash formats exist. The default is a hex encoded SHA-256 of
// password+salt, kept so credentials written by earlier deployments keep
// verifying. The argon2id format is prefixed with "argon2id$" and can be
// enabled through configuration; Verify recognises both.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/library/internal/common"
	"golang.org/x/crypto/argon2"
)

// Supported hash schemes.
const (
	SchemeSHA256   = "sha256"
	SchemeArgon2id = "argon2id"
)

const argon2Prefix = SchemeArgon2id + "$"

// GenerateSalt returns length bytes from crypto/rand, hex encoded.
func GenerateSalt(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid salt length %d", length)
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateHash returns hex(sha256(password + salt)).
func GenerateHash(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// GenerateUnsaltedHash returns hex(sha256(password)). Only used by the hash
// demo endpoint.
func GenerateUnsaltedHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// GenerateHashArgon2id derives a 32 byte argon2id key from password and salt.
func GenerateHashArgon2id(password, salt string) string {
	key := argon2.IDKey([]byte(password), []byte(salt), 1, 64*1024, 4, 32)
	defer common.WipeByteArray(key)
	return argon2Prefix + hex.EncodeToString(key)
}

// Hasher produces hashes in one configured scheme.
type Hasher struct {
	scheme string
}

// NewHasher validates scheme and returns a Hasher for it.
func NewHasher(scheme string) (*Hasher, error) {
	switch scheme {
	case SchemeSHA256, SchemeArgon2id:
		return &Hasher{scheme: scheme}, nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownHashScheme, scheme)
	}
}

// Scheme returns the configured scheme name.
func (h *Hasher) Scheme() string {
	return h.scheme
}

// Hash hashes password with salt in the configured scheme.
func (h *Hasher) Hash(password, salt string) string {
	if h.scheme == SchemeArgon2id {
		return GenerateHashArgon2id(password, salt)
	}
	return GenerateHash(password, salt)
}

// Verify recomputes the hash of password with salt in the scheme stored is
// written in and compares the two in constant time.
func (h *Hasher) Verify(stored, password, salt string) bool {
	var candidate string
	if strings.HasPrefix(stored, argon2Prefix) {
		candidate = GenerateHashArgon2id(password, salt)
	} else {
		candidate = GenerateHash(password, salt)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
