package config

import (
	"fmt"
	"strings"

	"github.com/Hussein-Mazeh/shroombrella/internal/logger"
)

func (c *Config) validate() error {
	if strings.TrimSpace(c.VaultDir) == "" {
		return fmt.Errorf("%w: vault_dir is empty", ErrInvalidStorageConfigs)
	}
	ext := strings.TrimPrefix(c.VaultExtension, ".")
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		return fmt.Errorf("%w: vault_extension %q", ErrInvalidStorageConfigs, c.VaultExtension)
	}
	c.VaultExtension = ext

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLogConfigs, err)
	}
	if c.AutoLock < 0 || c.ClipboardTTL < 0 {
		return ErrInvalidTimerConfigs
	}
	if c.MinPasswordScore < 0 || c.MinPasswordScore > 4 {
		return fmt.Errorf("%w: min_password_score %d", ErrInvalidPolicyConfigs, c.MinPasswordScore)
	}
	return nil
}
