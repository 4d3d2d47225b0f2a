package vault

import (
	"fmt"
	"time"

	"github.com/Hussein-Mazeh/shroombrella/krypto"
)

// FormatVersion is the only container version this package reads and writes.
const FormatVersion uint32 = 1

// Header is the unencrypted metadata persisted in front of the ciphertext.
type Header struct {
	Version   uint32
	CreatedAt time.Time
	Salt      []byte
	Nonce     []byte
}

// File is the unit persisted to storage. It owns its slices.
type File struct {
	Header     Header
	Ciphertext []byte
}

// Vault is a loaded file together with the name and location it came from.
type Vault struct {
	Name string
	Path string
	File File
}

// Validate checks the invariants a loaded header must hold before any key
// derivation or decryption is attempted.
func (h Header) Validate() error {
	if h.Version != FormatVersion {
		return fmt.Errorf("%w: got %d", ErrUnsupportedVersion, h.Version)
	}
	if len(h.Salt) != krypto.SaltLength {
		return fmt.Errorf("%w: salt is %d bytes, want %d", ErrFormat, len(h.Salt), krypto.SaltLength)
	}
	if len(h.Nonce) != krypto.NonceSize {
		return fmt.Errorf("%w: nonce is %d bytes, want %d", ErrFormat, len(h.Nonce), krypto.NonceSize)
	}
	return nil
}
