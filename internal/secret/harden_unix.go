//go:build linux || darwin || freebsd || openbsd || netbsd

package secret

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func disableCoreDumps() error {
	rlim := unix.Rlimit{Cur: 0, Max: 0}
	if err := unix.Setrlimit(unix.RLIMIT_CORE, &rlim); err != nil {
		return fmt.Errorf("disable core dumps: %w", err)
	}
	return nil
}
