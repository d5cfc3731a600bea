package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Encryptor provides authenticated encryption for small payloads that leave
// the process boundary (server-held session records, stored secrets).
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type secretboxEncryptor struct {
	key [32]byte
}

// NewEncryptor creates an Encryptor from a secret of at least 32 bytes.
// The secretbox key is derived from the secret with SHA-256, so secrets longer
// than 32 bytes are accepted as-is.
func NewEncryptor(secret []byte) (Encryptor, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("encryption secret must be at least 32 bytes, got %d", len(secret))
	}
	e := &secretboxEncryptor{key: sha256.Sum256(secret)}
	return e, nil
}

// Encrypt seals plaintext with a random nonce and returns
// base64(nonce || ciphertext).
func (e *secretboxEncryptor) Encrypt(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &e.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Any tampering, truncation, or
// key mismatch yields an error.
func (e *secretboxEncryptor) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(raw) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	opened, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &e.key)
	if !ok {
		return "", fmt.Errorf("decryption failed")
	}
	return string(opened), nil
}
