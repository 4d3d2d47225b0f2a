// Package toggle keeps the per-vault "require Touch ID to unlock" switch and
// runs the biometric prompt. Only macOS is supported; other platforms report
// ErrUnsupported.
package toggle

import (
	"errors"
	"time"
)

// State captures the biometric toggle state for a vault file.
type State struct {
	Enabled   bool      `json:"enabled"`
	EnabledAt time.Time `json:"enabledAt,omitempty"`
}

var (
	// ErrUnsupported signals that biometric toggling is not available on this platform.
	ErrUnsupported = errors.New("biometric toggle not supported on this platform")
	// ErrAuthFailed is returned when the user fails or cancels the prompt.
	ErrAuthFailed = errors.New("biometric authentication failed")
)
