// Package config loads settings for the vault tools.
//
// Sources are layered: built-in defaults, then the TOML file, then
// SHROOMBRELLA_* environment variables. Command-line flags are applied last
// with Merge. A key that a source does not mention keeps its earlier value.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/Hussein-Mazeh/shroombrella/store"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SHROOMBRELLA_"

// FileName is the config file looked up in the application directory.
const FileName = "config.toml"

// Config holds every tunable of the CLI and GUI.
type Config struct {
	// VaultDir is where vault files live.
	// Env: SHROOMBRELLA_VAULT_DIR
	VaultDir string `toml:"vault_dir" env:"VAULT_DIR"`

	// VaultExtension is the vault file suffix, without the dot.
	// Env: SHROOMBRELLA_VAULT_EXTENSION
	VaultExtension string `toml:"vault_extension" env:"VAULT_EXTENSION"`

	// CacheSessionKey keeps the derived key (in locked memory) for the
	// lifetime of a session instead of re-deriving it on every save.
	// Env: SHROOMBRELLA_CACHE_SESSION_KEY
	CacheSessionKey bool `toml:"cache_session_key" env:"CACHE_SESSION_KEY"`

	// Journal enables the sqlite event journal.
	// Env: SHROOMBRELLA_JOURNAL
	Journal bool `toml:"journal" env:"JOURNAL"`

	// JournalPath is the journal database; empty means <VaultDir>/journal.db.
	// Env: SHROOMBRELLA_JOURNAL_PATH
	JournalPath string `toml:"journal_path" env:"JOURNAL_PATH"`

	Log Log `toml:"log" envPrefix:"LOG_"`

	// AutoLock closes an idle GUI session; zero disables it.
	// Env: SHROOMBRELLA_AUTO_LOCK
	AutoLock time.Duration `toml:"auto_lock" env:"AUTO_LOCK"`

	// ClipboardTTL clears a copied password after this long; zero keeps it.
	// Env: SHROOMBRELLA_CLIPBOARD_TTL
	ClipboardTTL time.Duration `toml:"clipboard_ttl" env:"CLIPBOARD_TTL"`

	// MinPasswordScore is the zxcvbn score (0-4) new master passwords need.
	// Env: SHROOMBRELLA_MIN_PASSWORD_SCORE
	MinPasswordScore int `toml:"min_password_score" env:"MIN_PASSWORD_SCORE"`

	// BreachCheck looks new master passwords up in Pwned Passwords.
	// Env: SHROOMBRELLA_BREACH_CHECK
	BreachCheck bool `toml:"breach_check" env:"BREACH_CHECK"`

	// Biometric consults the Touch ID toggle before unlocking.
	// Env: SHROOMBRELLA_BIOMETRIC
	Biometric bool `toml:"biometric" env:"BIOMETRIC"`
}

// Log configures the zerolog output.
type Log struct {
	// Level is a zerolog level name.
	// Env: SHROOMBRELLA_LOG_LEVEL
	Level string `toml:"level" env:"LEVEL"`
	// File receives log lines; empty means stderr.
	// Env: SHROOMBRELLA_LOG_FILE
	File string `toml:"file" env:"FILE"`
}

// Default returns the built-in configuration.
func Default() Config {
	dir, err := store.DefaultDir()
	if err != nil {
		dir = filepath.Join(".", store.AppDirName)
	}
	return Config{
		VaultDir:       dir,
		VaultExtension: store.DefaultExt,
		Journal:        true,
		Log:            Log{Level: "warn"},
		AutoLock:       10 * time.Minute,
		ClipboardTTL:   30 * time.Second,
		BreachCheck:    false,
		Biometric:      true,
	}
}

// DefaultPath returns <user config dir>/shroombrella/config.toml.
func DefaultPath() string {
	dir, err := store.DefaultDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, FileName)
}

// Load builds the configuration. An empty path means DefaultPath, which may
// be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := parseEnv(&cfg); err != nil {
		return nil, err
	}

	cfg.fillDerived()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrInvalidFile, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w: %s: unknown key %q", ErrInvalidFile, path, undecoded[0].String())
	}
	return nil
}

func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	return nil
}

func (c *Config) fillDerived() {
	if c.JournalPath == "" && c.VaultDir != "" {
		c.JournalPath = filepath.Join(c.VaultDir, "journal.db")
	}
}

// Paths returns the vault storage layout.
func (c *Config) Paths() store.Paths {
	return store.Paths{Dir: c.VaultDir, Ext: c.VaultExtension}
}
