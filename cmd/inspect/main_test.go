package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hussein-Mazeh/shroombrella/internal/secret"
	"github.com/Hussein-Mazeh/shroombrella/internal/service"
	"github.com/Hussein-Mazeh/shroombrella/internal/vault"
	"github.com/Hussein-Mazeh/shroombrella/store"
)

func TestDescribe(t *testing.T) {
	svc := service.New(store.Paths{Dir: t.TempDir()})
	v, err := svc.Create("work", secret.FromString("p1"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, describe(&out, v.Path))

	got := out.String()
	assert.Contains(t, got, "work | "+v.Path)
	assert.Contains(t, got, "version:    1")
	assert.Contains(t, got, "salt:       16 bytes")
	assert.Contains(t, got, "nonce:      12 bytes")
	assert.Contains(t, got, "ciphertext: 18 bytes", "empty set is [] plus the tag")
	assert.NotContains(t, got, "p1")
}

func TestDescribeRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.vault")
	require.NoError(t, os.WriteFile(path, []byte("not a vault"), 0o600))

	err := describe(&bytes.Buffer{}, path)
	assert.ErrorIs(t, err, vault.ErrFormat)
}
