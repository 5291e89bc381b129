// Package cryptox implements the reversible transform used to keep remote
// directory passwords encrypted at rest.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/graviox/roundcube-carddav/internal/common"
	"golang.org/x/crypto/argon2"
)

// keySalt is fixed so the same passphrase always yields the same key.
// Per-secret randomness comes from the GCM nonce.
var keySalt = []byte("carddav-server-credentials.v1")

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// DeriveKey stretches a passphrase into a 32-byte AES-256 key with Argon2id.
func DeriveKey(passphrase []byte) []byte {
	return argon2.IDKey(passphrase, keySalt, 1, 64*1024, 4, 32)
}

// AESCipher encrypts secrets with AES-256-GCM. The stored form is
// nonce || ciphertext.
type AESCipher struct {
	aead cipher.AEAD
}

// NewAESCipher derives the key from passphrase and prepares the AEAD.
func NewAESCipher(passphrase string) (*AESCipher, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: empty credential key", common.ErrorValidation)
	}

	key := DeriveKey([]byte(passphrase))
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESCipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *AESCipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a value produced by Encrypt. The caller owns the returned
// slice and should wipe it after use.
func (c *AESCipher) Decrypt(sealed []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(sealed) < n+c.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	return c.aead.Open(nil, sealed[:n], sealed[n:], nil)
}
