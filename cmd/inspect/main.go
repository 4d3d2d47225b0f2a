// Command inspect prints the container metadata of vault files without
// asking for a password or decrypting anything.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Hussein-Mazeh/shroombrella/internal/config"
	"github.com/Hussein-Mazeh/shroombrella/internal/vault"
	"github.com/Hussein-Mazeh/shroombrella/store"
)

func main() {
	cfgPath := flag.String("config", "", "config file")
	dir := flag.String("dir", "", "vault directory (default from config)")
	file := flag.String("file", "", "inspect a single vault file")
	flag.Parse()

	var files []string
	if *file != "" {
		files = []string{*file}
	} else {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		if err := cfg.Merge(config.Config{VaultDir: *dir}); err != nil {
			fmt.Fprintf(os.Stderr, "apply flags: %v\n", err)
			os.Exit(1)
		}
		files, err = cfg.Paths().List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "list vaults: %v\n", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Printf("no vaults in %s\n", cfg.VaultDir)
			return
		}
	}

	failed := false
	for _, f := range files {
		if err := describe(os.Stdout, f); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", f, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// describe writes what can be learned about the vault at path without the
// master password.
func describe(w io.Writer, path string) error {
	data, err := store.Read(path)
	if err != nil {
		return err
	}
	f, err := vault.UnmarshalFile(data)
	if err != nil {
		return err
	}

	hdr := f.Header
	fmt.Fprintf(w, "%s | %s\n", store.NameFromPath(path), path)
	fmt.Fprintf(w, "  version:    %d\n", hdr.Version)
	fmt.Fprintf(w, "  created:    %s\n", hdr.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(w, "  salt:       %d bytes\n", len(hdr.Salt))
	fmt.Fprintf(w, "  nonce:      %d bytes\n", len(hdr.Nonce))
	fmt.Fprintf(w, "  ciphertext: %d bytes\n", len(f.Ciphertext))
	return nil
}
