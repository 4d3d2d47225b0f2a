package krypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters used for every vault. They are part of the on-disk
// contract: the container does not record them, so changing any of these
// makes existing vaults unopenable.
const (
	// KDFMemoryKiB is the Argon2id memory cost in KiB (19 MiB).
	KDFMemoryKiB uint32 = 19 * 1024
	// KDFIterations is the Argon2id time cost.
	KDFIterations uint32 = 2
	// KDFParallelism is the Argon2id lane count.
	KDFParallelism uint8 = 1
	// KeyLength is the derived key size in bytes (AES-256).
	KeyLength = 32
	// SaltLength is the enforced salt size in bytes.
	SaltLength = 16
)

// ErrInvalidSalt is returned when a salt does not have SaltLength bytes.
var ErrInvalidSalt = errors.New("krypto: salt must be 16 bytes")

// Argon2Params captures the Argon2id cost parameters.
type Argon2Params struct {
	MemoryKiB   uint32
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
}

// DefaultArgon2Params returns the fixed vault parameters.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		MemoryKiB:   KDFMemoryKiB,
		Time:        KDFIterations,
		Parallelism: KDFParallelism,
		KeyLen:      KeyLength,
	}
}

// DeriveKey turns a master password and salt into a 32-byte key.
// The password is borrowed; the returned key belongs to the caller, who must wipe it.
func DeriveKey(password, salt []byte) ([]byte, error) {
	return DeriveKeyArgon2id(password, salt, DefaultArgon2Params())
}

// DeriveKeyArgon2id derives a key using Argon2id with the provided parameters.
func DeriveKeyArgon2id(password, salt []byte, p Argon2Params) ([]byte, error) {
	if len(salt) != SaltLength {
		return nil, ErrInvalidSalt
	}
	if p.KeyLen == 0 {
		return nil, errors.New("krypto: key length must be positive")
	}
	if p.MemoryKiB == 0 {
		return nil, errors.New("krypto: memory parameter must be positive")
	}
	if p.Time == 0 {
		return nil, errors.New("krypto: time parameter must be positive")
	}
	if p.Parallelism == 0 {
		return nil, errors.New("krypto: parallelism must be positive")
	}

	key := argon2.IDKey(password, salt, p.Time, p.MemoryKiB, p.Parallelism, p.KeyLen)
	if uint32(len(key)) != p.KeyLen {
		return nil, fmt.Errorf("krypto: derived key has unexpected length %d", len(key))
	}
	return key, nil
}

// NewSalt returns a fresh random salt of SaltLength bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
