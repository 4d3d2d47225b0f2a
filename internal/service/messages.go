package service

import (
	"errors"

	"github.com/Hussein-Mazeh/shroombrella/internal/vault"
)

// Messages shown to users for each failure kind.
const (
	MsgBusy               = "Another vault operation is still running. Try again when it finishes."
	MsgUnlockDenied       = "Unlock was not authorized."
	MsgAuthentication     = "Wrong master password, or the vault file has been modified."
	MsgUnsupportedVersion = "This vault was written by a newer version and cannot be opened."
	MsgFormat             = "The vault file is damaged or not a vault."
	MsgVaultExists        = "A vault with this name already exists."
	MsgStorage            = "The vault file could not be read or written."
	MsgInvalidName        = "The vault name is not valid."
	MsgEmptyPassword      = "The master password cannot be empty."
	MsgIncomplete         = "Service, login and password are all required."
	MsgLocked             = "The vault is locked. Unlock it again to continue."
	MsgNoSuchEntry        = "That entry does not exist."
	MsgUnexpected         = "Unexpected error."
)

var userMessages = []struct {
	err error
	msg string
}{
	{vault.ErrBusy, MsgBusy},
	{vault.ErrUnlockDenied, MsgUnlockDenied},
	{vault.ErrAuthentication, MsgAuthentication},
	{vault.ErrUnsupportedVersion, MsgUnsupportedVersion},
	{vault.ErrFormat, MsgFormat},
	{vault.ErrVaultExists, MsgVaultExists},
	{vault.ErrInvalidName, MsgInvalidName},
	{vault.ErrStorage, MsgStorage},
	{vault.ErrEmptyPassword, MsgEmptyPassword},
	{vault.ErrIncompleteCredential, MsgIncomplete},
	{vault.ErrLocked, MsgLocked},
	{vault.ErrNoSuchEntry, MsgNoSuchEntry},
}

// UserMessage maps an error returned by this package to a message fit for
// display. It returns "" for nil.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return MsgUnexpected
}

// outcome is the short label recorded in the journal.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, vault.ErrUnlockDenied):
		return "denied"
	case errors.Is(err, vault.ErrAuthentication):
		return "auth_failed"
	case errors.Is(err, vault.ErrFormat):
		return "format_error"
	case errors.Is(err, vault.ErrStorage):
		return "storage_error"
	default:
		return "error"
	}
}
