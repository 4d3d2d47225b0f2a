package krypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Alphanumeric is the default alphabet for generated passwords.
const Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultPasswordLength is used when callers ask for a length of zero.
const DefaultPasswordLength = 16

// GeneratePassword returns length characters drawn uniformly from alphabet.
// The result is a secret and must be wiped by the caller.
func GeneratePassword(length int, alphabet string) ([]byte, error) {
	if length == 0 {
		length = DefaultPasswordLength
	}
	if length < 0 {
		return nil, errors.New("krypto: password length must be positive")
	}
	if alphabet == "" {
		alphabet = Alphanumeric
	}

	limit := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			for j := range out {
				out[j] = 0
			}
			return nil, fmt.Errorf("generate password: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return out, nil
}
