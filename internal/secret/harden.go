package secret

import "github.com/awnumar/memguard"

// Harden prepares the process for holding secrets: core dumps are disabled
// where the platform allows it, and an interrupt wipes all locked memory
// before exiting.
func Harden() error {
	memguard.CatchInterrupt()
	return disableCoreDumps()
}

// Purge wipes every memguard allocation. Call it on the way out of main.
func Purge() {
	memguard.Purge()
}
