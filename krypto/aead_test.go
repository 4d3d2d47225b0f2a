package krypto

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := randBytes(t, KeyLength)

	for _, size := range []int{0, 1, 31, 4096} {
		pt := randBytes(t, size)
		ct, nonce, err := Encrypt(key, pt)
		require.NoError(t, err)
		require.Len(t, nonce, NonceSize)

		out, err := Decrypt(key, nonce, ct)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(pt, out), "size %d", size)
	}
}

func TestEncryptNeverRepeatsNonce(t *testing.T) {
	key := randBytes(t, KeyLength)
	seen := make(map[string]struct{}, 2000)

	for i := 0; i < 2000; i++ {
		_, nonce, err := Encrypt(key, []byte("payload"))
		require.NoError(t, err)
		_, dup := seen[string(nonce)]
		require.False(t, dup, "nonce reused after %d calls", i)
		seen[string(nonce)] = struct{}{}
	}
}

func TestDecryptDetectsEverySingleByteFlip(t *testing.T) {
	key := randBytes(t, KeyLength)
	ct, nonce, err := Encrypt(key, []byte(`[{"service":"github","login":"alice","password":"s3cr3t"}]`))
	require.NoError(t, err)

	for i := range ct {
		mut := append([]byte(nil), ct...)
		mut[i] ^= 0x01
		out, err := Decrypt(key, nonce, mut)
		require.ErrorIs(t, err, ErrAuthentication, "byte %d", i)
		require.Nil(t, out)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	ct, nonce, err := Encrypt(randBytes(t, KeyLength), []byte("hello"))
	require.NoError(t, err)

	_, err = Decrypt(randBytes(t, KeyLength), nonce, ct)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestDecryptTruncatedAndEmpty(t *testing.T) {
	key := randBytes(t, KeyLength)
	ct, nonce, err := Encrypt(key, []byte("hello"))
	require.NoError(t, err)

	_, err = Decrypt(key, nonce, ct[:len(ct)-1])
	assert.ErrorIs(t, err, ErrAuthentication)

	_, err = Decrypt(key, nonce, nil)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestInvalidKeyAndNonceLengths(t *testing.T) {
	_, _, err := Encrypt(make([]byte, 16), []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = Decrypt(make([]byte, KeyLength), make([]byte, 10), []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidNonce)

	_, err = Decrypt(make([]byte, 31), make([]byte, NonceSize), []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}
