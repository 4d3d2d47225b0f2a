package config

import (
	"fmt"

	"dario.cat/mergo"
)

// Merge applies overrides on top of c. Only non-zero override fields win,
// which is what command-line flags need: an unset flag leaves the loaded
// value alone.
func (c *Config) Merge(overrides Config) error {
	if err := mergo.Merge(c, overrides, mergo.WithOverride); err != nil {
		return fmt.Errorf("error merging configs: %w", err)
	}
	c.fillDerived()
	return c.validate()
}
