package krypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{0xAB}, SaltLength)

	k1, err := DeriveKey([]byte("correct horse battery staple"), salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	k2, err := DeriveKey([]byte("correct horse battery staple"), salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}

	if len(k1) != KeyLength {
		t.Fatalf("key length = %d, want %d", len(k1), KeyLength)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatal("expected identical keys for identical inputs")
	}
}

func TestDeriveKeyDiffersByPasswordAndSalt(t *testing.T) {
	salt1 := bytes.Repeat([]byte{0x01}, SaltLength)
	salt2 := bytes.Repeat([]byte{0x02}, SaltLength)

	base, err := DeriveKey([]byte("p1"), salt1)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	otherPassword, err := DeriveKey([]byte("p2"), salt1)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	otherSalt, err := DeriveKey([]byte("p1"), salt2)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}

	if bytes.Equal(base, otherPassword) {
		t.Fatal("different passwords produced the same key")
	}
	if bytes.Equal(base, otherSalt) {
		t.Fatal("different salts produced the same key")
	}
}

func TestDeriveKeyRejectsBadSalt(t *testing.T) {
	for _, n := range []int{0, 12, 15, 17, 32} {
		_, err := DeriveKey([]byte("pw"), make([]byte, n))
		if !errors.Is(err, ErrInvalidSalt) {
			t.Fatalf("salt of %d bytes: got %v, want ErrInvalidSalt", n, err)
		}
	}
}

func TestDeriveKeyArgon2idRejectsZeroParams(t *testing.T) {
	salt := make([]byte, SaltLength)
	p := DefaultArgon2Params()
	p.Time = 0
	if _, err := DeriveKeyArgon2id([]byte("pw"), salt, p); err == nil {
		t.Fatal("expected error for zero time cost")
	}
}

func TestNewSaltLengthAndRandomness(t *testing.T) {
	s1, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt: %v", err)
	}
	s2, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt: %v", err)
	}
	if len(s1) != SaltLength || len(s2) != SaltLength {
		t.Fatalf("salt lengths = %d, %d, want %d", len(s1), len(s2), SaltLength)
	}
	if bytes.Equal(s1, s2) {
		t.Fatal("expected salts to differ")
	}
}
