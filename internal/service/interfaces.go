package service

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// Recorder receives one event per vault operation. Events name the vault,
// the action and the outcome; they never carry secrets. A failing Recorder
// is logged and does not fail the operation.
type Recorder interface {
	Record(vaultName, action, outcome string) error
}

// UnlockGate is consulted before any key derivation for an unlock. A non-nil
// error refuses the unlock.
type UnlockGate interface {
	Authorize(vaultPath string) error
}
