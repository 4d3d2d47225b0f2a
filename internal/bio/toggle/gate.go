package toggle

import (
	"errors"
	"fmt"
)

const unlockReason = "unlock the vault"

// Gate asks for Touch ID before a vault with the toggle enabled is
// decrypted. Where biometrics are unsupported every unlock is allowed.
type Gate struct {
	status       func(vaultPath string) (State, error)
	authenticate func(reason string) error
}

// NewGate returns a gate backed by the Keychain toggle and the system prompt.
func NewGate() *Gate {
	return &Gate{status: Status, authenticate: Authenticate}
}

// Authorize implements service.UnlockGate.
func (g *Gate) Authorize(vaultPath string) error {
	st, err := g.status(vaultPath)
	if err != nil {
		if errors.Is(err, ErrUnsupported) {
			return nil
		}
		return fmt.Errorf("biometric status: %w", err)
	}
	if !st.Enabled {
		return nil
	}
	if err := g.authenticate(unlockReason); err != nil {
		if errors.Is(err, ErrUnsupported) {
			return nil
		}
		return err
	}
	return nil
}
