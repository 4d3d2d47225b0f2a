package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Hussein-Mazeh/shroombrella/internal/bio/toggle"
	"github.com/Hussein-Mazeh/shroombrella/store"
)

var errBioUnsupported = userError{msg: "biometric unlock is only supported on macOS"}

func runBio(args []string) error {
	if len(args) == 0 {
		return userError{msg: "missing bio subcommand"}
	}

	switch args[0] {
	case "enable":
		return runBioEnable(args[1:])
	case "disable":
		return runBioDisable(args[1:])
	case "status":
		return runBioStatus(args[1:])
	default:
		return userError{msg: "unknown bio subcommand"}
	}
}

// bioTarget parses the flags shared by the bio subcommands and returns the
// vault file they apply to.
func bioTarget(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var common commonFlags
	var target string
	common.bind(fs)
	fs.StringVar(&target, "vault", "", "vault name or path")

	if err := fs.Parse(args); err != nil {
		return "", userError{msg: "invalid arguments"}
	}
	if fs.NArg() != 0 {
		return "", userError{msg: "unexpected positional arguments"}
	}

	a, err := newApp(common)
	if err != nil {
		return "", err
	}
	defer a.close()

	path, err := vaultPath(a.paths, target)
	if err != nil {
		return "", err
	}
	if err := ensureVaultFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// runBioEnable turns on the Touch ID requirement for one vault file. The
// user must pass the prompt first so the toggle cannot be set silently.
func runBioEnable(args []string) error {
	path, err := bioTarget("bio enable", args)
	if err != nil {
		return err
	}

	if err := toggle.Authenticate("enable biometric unlock"); err != nil {
		if errors.Is(err, toggle.ErrUnsupported) {
			return errBioUnsupported
		}
		return fmt.Errorf("biometric authentication failed: %w", err)
	}
	if err := toggle.Enable(path); err != nil {
		if errors.Is(err, toggle.ErrUnsupported) {
			return errBioUnsupported
		}
		return fmt.Errorf("enable biometric unlock: %w", err)
	}

	fmt.Printf("Biometric unlock enabled for %s\n", store.NameFromPath(path))
	return nil
}

func runBioDisable(args []string) error {
	path, err := bioTarget("bio disable", args)
	if err != nil {
		return err
	}

	if err := toggle.Authenticate("disable biometric unlock"); err != nil {
		if errors.Is(err, toggle.ErrUnsupported) {
			return errBioUnsupported
		}
		return fmt.Errorf("biometric authentication failed: %w", err)
	}
	if err := toggle.Disable(path); err != nil {
		if errors.Is(err, toggle.ErrUnsupported) {
			return errBioUnsupported
		}
		return fmt.Errorf("disable biometric unlock: %w", err)
	}

	fmt.Printf("Biometric unlock disabled for %s\n", store.NameFromPath(path))
	return nil
}

func runBioStatus(args []string) error {
	path, err := bioTarget("bio status", args)
	if err != nil {
		return err
	}

	status, err := toggle.Status(path)
	if err != nil {
		if errors.Is(err, toggle.ErrUnsupported) {
			return errBioUnsupported
		}
		return fmt.Errorf("read biometric status: %w", err)
	}

	if status.Enabled {
		fmt.Printf("Biometric unlock: enabled since %s\n", status.EnabledAt.Local().Format("2006-01-02 15:04"))
	} else {
		fmt.Println("Biometric unlock: disabled")
	}
	return nil
}

func ensureVaultFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return userError{msg: fmt.Sprintf("vault not found: %s", path)}
		}
		return fmt.Errorf("stat vault file: %w", err)
	}
	if info.IsDir() {
		return userError{msg: fmt.Sprintf("expected a vault file: %s", path)}
	}
	return nil
}
