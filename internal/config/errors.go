package config

import "errors"

// Validation errors returned by Load and Merge.
var (
	// ErrInvalidFile indicates the TOML file could not be parsed or holds
	// keys this version does not know.
	ErrInvalidFile = errors.New("invalid configuration file")
	// ErrInvalidStorageConfigs indicates an empty vault directory or a bad
	// file extension.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidLogConfigs indicates an unknown log level.
	ErrInvalidLogConfigs = errors.New("invalid log configuration")
	// ErrInvalidTimerConfigs indicates a negative auto-lock or clipboard duration.
	ErrInvalidTimerConfigs = errors.New("invalid timer configuration")
	// ErrInvalidPolicyConfigs indicates a password score outside 0-4.
	ErrInvalidPolicyConfigs = errors.New("invalid password policy configuration")
)
