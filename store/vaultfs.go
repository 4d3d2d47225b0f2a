package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// AppDirName is the directory created under the user configuration directory.
	AppDirName = "shroombrella"
	// DefaultExt is the vault file suffix, without the dot.
	DefaultExt = "vault"
	// fallbackName is used when a path yields no usable vault name.
	fallbackName = "vault"
)

var (
	// ErrNoDir indicates Paths has no directory configured.
	ErrNoDir = errors.New("vault directory not specified")
	// ErrBadName rejects names that are empty or would escape the directory.
	ErrBadName = errors.New("invalid vault name")
)

// Paths locates vault files on disk: one file per vault, <name>.<ext>, in Dir.
type Paths struct {
	Dir string
	Ext string
}

// DefaultPaths returns the per-user location for vault files.
func DefaultPaths() (Paths, error) {
	dir, err := DefaultDir()
	if err != nil {
		return Paths{}, err
	}
	return Paths{Dir: dir, Ext: DefaultExt}, nil
}

// DefaultDir returns <user config dir>/shroombrella.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(base, AppDirName), nil
}

// Extension returns the vault file suffix without the dot.
func (p Paths) Extension() string {
	if p.Ext == "" {
		return DefaultExt
	}
	return strings.TrimPrefix(p.Ext, ".")
}

// ValidateName checks that name can be used as a vault file name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrBadName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrBadName, name)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrBadName, name)
	}
	return nil
}

// VaultPath resolves the file for the named vault.
func (p Paths) VaultPath(name string) (string, error) {
	if p.Dir == "" {
		return "", ErrNoDir
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	// A name that already ends in the extension reads as a file path to
	// every caller that accepts either form.
	if strings.HasSuffix(name, "."+p.Extension()) {
		return "", fmt.Errorf("%w: %q already ends in .%s", ErrBadName, name, p.Extension())
	}
	return filepath.Join(p.Dir, name+"."+p.Extension()), nil
}

// NameFromPath derives the vault name from its file name by dropping the
// extension.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fallbackName
	}
	return name
}

// EnsureDir creates the vault directory with owner-only permissions.
func (p Paths) EnsureDir() error {
	if p.Dir == "" {
		return ErrNoDir
	}
	if err := os.MkdirAll(p.Dir, 0o700); err != nil {
		return fmt.Errorf("create vault directory: %w", err)
	}
	return nil
}

// Exists reports whether path exists. Errors other than not-exist are
// returned so callers do not mistake an unreadable file for a free slot.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}

// Read returns the raw contents of a vault file.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vault file: %w", err)
	}
	return data, nil
}

// WriteAtomic replaces path with data. The bytes are written to a temp file
// in the same directory, synced, then renamed over the target, so a crash
// leaves either the old file or the new one.
func WriteAtomic(path string, data []byte) error {
	tmpPath, err := writeTemp(path, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace vault: %w", err)
	}

	syncDir(filepath.Dir(path))
	return nil
}

// WriteNew writes data to path only if nothing exists there. The temp file
// is hard-linked into place, which fails instead of replacing a file that
// appeared after the caller checked. An occupied path matches os.ErrExist.
func WriteNew(path string, data []byte) error {
	tmpPath, err := writeTemp(path, data)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	if err := os.Link(tmpPath, path); err != nil {
		return fmt.Errorf("create vault: %w", err)
	}

	syncDir(filepath.Dir(path))
	return nil
}

// writeTemp writes data, owner-only and synced, to a temp file next to path.
func writeTemp(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create vault directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp vault: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write temp vault: %w", err)
	}

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("chmod temp vault: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("sync temp vault: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp vault: %w", err)
	}
	return tmpPath, nil
}

// syncDir flushes the rename. Not every platform supports it, so failures
// are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// List returns the vault files in Dir, sorted by name. A missing directory
// is an empty list.
func (p Paths) List() ([]string, error) {
	if p.Dir == "" {
		return nil, ErrNoDir
	}
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list vault directory: %w", err)
	}

	suffix := "." + p.Extension()
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, filepath.Join(p.Dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
