// Package token provides symmetric encryption for OAuth refresh tokens
// stored at rest.
package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrDecrypt is returned when stored ciphertext cannot be decrypted,
// either because it is corrupt or because the key is wrong.
var ErrDecrypt = errors.New("token: decrypt failed")

// Cipher encrypts and decrypts short secrets with AES-256-GCM.
// The random nonce is prepended to the ciphertext and the whole blob is
// base64 encoded for storage in a text column.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives an AEAD cipher from the configured key material.
func NewCipher(key string) (*Cipher, error) {
	if key == "" {
		return nil, errors.New("token: encryption key must be set")
	}
	sum := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext and returns the storable base64 blob.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("token: cannot encrypt empty data")
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a blob produced by Encrypt. Any malformed or tampered
// input yields ErrDecrypt.
func (c *Cipher) Decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return "", fmt.Errorf("%w: empty ciphertext", ErrDecrypt)
	}
	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(raw) < c.aead.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return string(plaintext), nil
}
