package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "vault", cfg.VaultExtension)
	assert.Equal(t, 10*time.Minute, cfg.AutoLock)
	assert.Equal(t, 30*time.Second, cfg.ClipboardTTL)
	assert.True(t, cfg.Journal)
	assert.False(t, cfg.CacheSessionKey)
	assert.NotEmpty(t, cfg.VaultDir)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, `
vault_dir = "`+filepath.ToSlash(dir)+`"
vault_extension = ".safe"
cache_session_key = true
journal = false
auto_lock = "2m"
clipboard_ttl = "0s"
min_password_score = 3

[log]
level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(dir), cfg.VaultDir)
	assert.Equal(t, "safe", cfg.VaultExtension)
	assert.True(t, cfg.CacheSessionKey)
	assert.False(t, cfg.Journal)
	assert.Equal(t, 2*time.Minute, cfg.AutoLock)
	assert.Zero(t, cfg.ClipboardTTL)
	assert.Equal(t, 3, cfg.MinPasswordScore)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, filepath.Join(filepath.ToSlash(dir), "journal.db"), cfg.JournalPath)

	p := cfg.Paths()
	assert.Equal(t, "safe", p.Ext)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, `
vault_dir = "/from/file"
breach_check = true
`)
	t.Setenv("SHROOMBRELLA_VAULT_DIR", "/from/env")
	t.Setenv("SHROOMBRELLA_BREACH_CHECK", "false")
	t.Setenv("SHROOMBRELLA_LOG_LEVEL", "error")
	t.Setenv("SHROOMBRELLA_AUTO_LOCK", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.VaultDir)
	assert.False(t, cfg.BreachCheck)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 90*time.Second, cfg.AutoLock)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, `vault_dir = `))
	assert.ErrorIs(t, err, ErrInvalidFile)

	_, err = Load(writeFile(t, `unknown_key = 1`))
	assert.ErrorIs(t, err, ErrInvalidFile)

	_, err = Load(writeFile(t, `min_password_score = 7`))
	assert.ErrorIs(t, err, ErrInvalidPolicyConfigs)

	_, err = Load(writeFile(t, `auto_lock = "-1m"`))
	assert.ErrorIs(t, err, ErrInvalidTimerConfigs)

	_, err = Load(writeFile(t, `vault_extension = "a/b"`))
	assert.ErrorIs(t, err, ErrInvalidStorageConfigs)

	_, err = Load(writeFile(t, "[log]\nlevel = \"chatty\""))
	assert.ErrorIs(t, err, ErrInvalidLogConfigs)

	t.Setenv("SHROOMBRELLA_AUTO_LOCK", "soon")
	_, err = Load(writeFile(t, ``))
	assert.Error(t, err)
}

func TestMergeAppliesNonZeroOverrides(t *testing.T) {
	cfg, err := Load(writeFile(t, `vault_dir = "/base"`+"\n"+`auto_lock = "5m"`))
	require.NoError(t, err)

	require.NoError(t, cfg.Merge(Config{VaultDir: "/flag", CacheSessionKey: true}))
	assert.Equal(t, "/flag", cfg.VaultDir)
	assert.True(t, cfg.CacheSessionKey)
	assert.Equal(t, 5*time.Minute, cfg.AutoLock, "unset override keeps loaded value")

	assert.ErrorIs(t, cfg.Merge(Config{MinPasswordScore: 9}), ErrInvalidPolicyConfigs)
}
