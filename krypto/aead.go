package krypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// NonceSize is the AES-GCM nonce length stored in every vault header.
const NonceSize = 12

var (
	// ErrAuthentication means the ciphertext failed its integrity check. A wrong
	// key and a tampered ciphertext both produce it and cannot be told apart.
	ErrAuthentication = errors.New("krypto: message authentication failed")
	// ErrInvalidKey is returned for keys that are not KeyLength bytes.
	ErrInvalidKey = errors.New("krypto: aes-gcm requires a 32-byte key")
	// ErrInvalidNonce is returned for nonces that are not NonceSize bytes.
	ErrInvalidNonce = errors.New("krypto: aes-gcm requires a 12-byte nonce")
)

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLength {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// Encrypt seals plaintext with AES-256-GCM under a nonce drawn from
// crypto/rand on every call. No associated data is bound.
func Encrypt(key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext = gcm.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Decrypt opens a ciphertext produced by Encrypt. The returned plaintext is
// owned by the caller.
func Decrypt(key, nonce, ciphertext []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, ErrInvalidNonce
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}
