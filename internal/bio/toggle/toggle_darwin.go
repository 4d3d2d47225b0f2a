//go:build darwin

// Biometric toggle storage on macOS Keychain.
//
// Each vault file maps to one Keychain generic password item. The account is
// the file's absolute, symlink-resolved path, so renaming a vault turns the
// toggle off rather than moving it. The item is device-local, never synced,
// and readable only while the device is unlocked; editing a file on disk
// cannot switch biometrics off behind the user's back.

package toggle

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	keychain "github.com/keybase/go-keychain"
)

const (
	keychainService = "com.shroombrella.bio.toggle"
	keychainLabel   = "Shroombrella biometric unlock"
)

// accountForVault canonicalizes a vault file path into the Keychain account.
//
// The file must exist and must not be a directory. Symlinks are resolved when
// possible so two spellings of the same file share one toggle.
func accountForVault(vaultPath string) (string, error) {
	vaultPath = strings.TrimSpace(vaultPath)
	if vaultPath == "" {
		return "", errors.New("vault path is required")
	}

	absolutePath, err := filepath.Abs(vaultPath)
	if err != nil {
		return "", fmt.Errorf("resolve vault path: %w", err)
	}

	info, err := os.Stat(absolutePath)
	if err != nil {
		return "", fmt.Errorf("stat vault: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("not a vault file: %s", absolutePath)
	}

	if resolved, err := filepath.EvalSymlinks(absolutePath); err == nil && resolved != "" {
		absolutePath = resolved
	}
	return absolutePath, nil
}

// storeState writes st under account, replacing any existing item.
//
// Security attributes:
//   - SynchronizableNo: the toggle never leaves the device.
//   - AccessibleWhenUnlockedThisDeviceOnly: readable only while the Mac is unlocked.
func storeState(account string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode biometric toggle: %w", err)
	}

	item := keychain.NewGenericPassword(keychainService, account, keychainLabel, data, "")
	item.SetSynchronizable(keychain.SynchronizableNo)
	item.SetAccessible(keychain.AccessibleWhenUnlockedThisDeviceOnly)

	err = keychain.AddItem(item)
	if err == nil {
		return nil
	}
	if err != keychain.ErrorDuplicateItem {
		return fmt.Errorf("add biometric toggle to keychain: %w", err)
	}

	query := keychain.NewGenericPassword(keychainService, account, "", nil, "")
	update := keychain.NewItem()
	update.SetData(data)
	if err := keychain.UpdateItem(query, update); err != nil {
		return fmt.Errorf("update biometric toggle: %w", err)
	}
	return nil
}

// Enable turns on biometric unlock for the vault file.
func Enable(vaultPath string) error {
	account, err := accountForVault(vaultPath)
	if err != nil {
		return err
	}
	return storeState(account, State{Enabled: true, EnabledAt: time.Now().UTC()})
}

// Disable removes the toggle. A missing item is not an error.
func Disable(vaultPath string) error {
	account, err := accountForVault(vaultPath)
	if err != nil {
		return err
	}
	query := keychain.NewGenericPassword(keychainService, account, "", nil, "")
	if err := keychain.DeleteItem(query); err != nil && err != keychain.ErrorItemNotFound {
		return fmt.Errorf("remove biometric toggle from keychain: %w", err)
	}
	return nil
}

// Status reads the toggle for the vault file. No item means disabled.
func Status(vaultPath string) (State, error) {
	account, err := accountForVault(vaultPath)
	if err != nil {
		return State{}, err
	}
	data, err := keychain.GetGenericPassword(keychainService, account, "", "")
	if err != nil {
		return State{}, fmt.Errorf("read biometric toggle: %w", err)
	}
	if len(data) == 0 {
		return State{Enabled: false}, nil
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode biometric toggle: %w", err)
	}
	return st, nil
}
