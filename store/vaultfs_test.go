package store

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultPath(t *testing.T) {
	p := Paths{Dir: "/tmp/vaults"}
	got, err := p.VaultPath("work")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/vaults", "work.vault"), got)

	p.Ext = ".kdbx"
	got, err = p.VaultPath("home")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/vaults", "home.kdbx"), got)

	for _, bad := range []string{"", "  ", ".", "..", "a/b", `a\b`, "../etc"} {
		_, err := p.VaultPath(bad)
		assert.ErrorIs(t, err, ErrBadName, bad)
	}

	_, err = p.VaultPath("notes.kdbx")
	assert.ErrorIs(t, err, ErrBadName)
	got, err = p.VaultPath("notes.vault")
	require.NoError(t, err, "only the configured extension is reserved")
	assert.Equal(t, filepath.Join("/tmp/vaults", "notes.vault.kdbx"), got)

	_, err = Paths{}.VaultPath("work")
	assert.ErrorIs(t, err, ErrNoDir)
}

func TestNameFromPath(t *testing.T) {
	assert.Equal(t, "work", NameFromPath("/x/y/work.vault"))
	assert.Equal(t, "my.notes", NameFromPath("my.notes.vault"))
	assert.Equal(t, "plain", NameFromPath("plain"))
	assert.Equal(t, "vault", NameFromPath(".vault"))
	assert.Equal(t, "vault", NameFromPath(""))
}

func TestWriteAtomicReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "work.vault")

	require.NoError(t, WriteAtomic(path, []byte("first")))
	require.NoError(t, WriteAtomic(path, []byte("second")))

	data, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files may be left behind")
}

func TestWriteNewRefusesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "work.vault")

	require.NoError(t, WriteNew(path, []byte("first")))
	err := WriteNew(path, []byte("second"))
	assert.ErrorIs(t, err, os.ErrExist)

	data, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files may be left behind")
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.vault")

	ok, err := Exists(path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	ok, err = Exists(path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.vault"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	p := Paths{Dir: dir, Ext: "vault"}

	for _, name := range []string{"b.vault", "a.vault", "notes.txt", ".a.vault-123.tmp", ".hidden.vault"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.vault"), 0o700))

	got, err := p.List()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.vault"), filepath.Join(dir, "b.vault")}, got)

	missing := Paths{Dir: filepath.Join(dir, "nope")}
	got, err = missing.List()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, Paths{Dir: dir}.EnsureDir())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.ErrorIs(t, Paths{}.EnsureDir(), ErrNoDir)
}
