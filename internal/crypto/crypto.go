// Package crypto seals sensitive configuration values (database auth token,
// Twitter credentials) so they can live encrypted in a checked-in config
// file. Sealed values carry an "enc:" prefix and are unsealed at startup
// with a passphrase from the environment.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// SealedPrefix marks a config value as encrypted.
const SealedPrefix = "enc:"

const (
	iterations = 100000
	keySize    = 32 // AES-256
)

// Sealer encrypts and decrypts short config values with a key derived from
// a passphrase.
type Sealer struct {
	key []byte
}

// NewSealer derives a key from the passphrase. Returns nil for an empty
// passphrase so callers can treat "no key configured" as a nil Sealer.
func NewSealer(passphrase string) *Sealer {
	if passphrase == "" {
		return nil
	}

	// The salt is derived from the passphrase itself: config values are
	// short and low-volume, and a per-value salt would have to be stored
	// next to the ciphertext anyway.
	salt := sha256.Sum256([]byte("nextlive-secrets|" + passphrase))
	key := pbkdf2.Key([]byte(passphrase), salt[:], iterations, keySize, sha256.New)

	return &Sealer{key: key}
}

// Seal encrypts a value and returns it with the "enc:" prefix.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if s == nil {
		return "", errors.New("no sealing key configured")
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("creating GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Unseal decrypts a value produced by Seal. Values without the "enc:"
// prefix pass through unchanged, so plain and sealed values can be mixed in
// one config file.
func (s *Sealer) Unseal(value string) (string, error) {
	if !strings.HasPrefix(value, SealedPrefix) {
		return value, nil
	}
	if s == nil {
		return "", errors.New("sealed value present but no sealing key configured")
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("decoding sealed value: %w", err)
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("creating GCM: %w", err)
	}

	if len(raw) < gcm.NonceSize() {
		return "", errors.New("sealed value too short")
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("unsealing value: %w", err)
	}
	return string(plaintext), nil
}
