package vault

import (
	"errors"
	"fmt"
)

// Failure kinds. Callers match them with errors.Is; concrete errors wrap one
// of these together with the underlying cause.
var (
	// ErrFormat marks a malformed container or payload.
	ErrFormat = errors.New("vault: invalid format")
	// ErrUnsupportedVersion marks a container with an unknown version.
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported version", ErrFormat)
	// ErrAuthentication means decryption failed: wrong password or tampered data.
	ErrAuthentication = errors.New("vault: authentication failed")
	// ErrStorage marks a read, write or create failure on the vault file.
	ErrStorage = errors.New("vault: storage failure")
	// ErrVaultExists is returned when creating over an existing vault file.
	ErrVaultExists = fmt.Errorf("%w: vault already exists", ErrStorage)
	// ErrInvalidName rejects vault names that cannot be used as a file name.
	ErrInvalidName = errors.New("vault: invalid vault name")
	// ErrEmptyPassword rejects an empty master password.
	ErrEmptyPassword = errors.New("vault: master password is empty")
	// ErrIncompleteCredential rejects a credential with an empty field.
	ErrIncompleteCredential = errors.New("vault: service, login and password are required")
	// ErrLocked is returned by session operations after the session was closed.
	ErrLocked = errors.New("vault: session is locked")
	// ErrBusy is returned when another vault operation is still in flight.
	ErrBusy = errors.New("vault: another operation is in progress")
	// ErrUnlockDenied is returned when the unlock gate refused the attempt.
	ErrUnlockDenied = errors.New("vault: unlock not authorized")
	// ErrNoSuchEntry is returned for an out-of-range credential index.
	ErrNoSuchEntry = errors.New("vault: no such entry")
)
