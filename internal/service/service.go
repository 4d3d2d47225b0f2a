// Package service is the only path between a master password and plaintext
// credentials. Collaborators (CLI, GUI) create, load, unlock and save vaults
// through a Service and keep decrypted state in a Session.
package service

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Hussein-Mazeh/shroombrella/internal/logger"
	"github.com/Hussein-Mazeh/shroombrella/internal/secret"
	"github.com/Hussein-Mazeh/shroombrella/internal/vault"
	"github.com/Hussein-Mazeh/shroombrella/krypto"
	"github.com/Hussein-Mazeh/shroombrella/store"
)

// Journal actions.
const (
	ActionCreate       = "create"
	ActionLoad         = "load"
	ActionUnlock       = "unlock"
	ActionSave         = "save"
	ActionChangeMaster = "change-master"
	ActionLock         = "lock"
)

// Service exposes high-level vault operations for CLI/GUI.
//
// Every operation, including those made through a Session, holds mu for its
// whole duration. A caller that arrives while another operation is running
// gets vault.ErrBusy instead of waiting.
type Service struct {
	mu       sync.Mutex
	paths    store.Paths
	log      *logger.Logger
	rec      Recorder
	gate     UnlockGate
	cacheKey bool
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRecorder sends an event to r after every operation.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.rec = r }
}

// WithUnlockGate requires g to authorize every unlock.
func WithUnlockGate(g UnlockGate) Option {
	return func(s *Service) { s.gate = g }
}

// WithSessionKeyCache makes sessions keep the derived key, in locked memory,
// instead of the master password. Saves then skip Argon2 and reuse the salt;
// the key is zeroed and unmapped when the session closes.
func WithSessionKeyCache(enabled bool) Option {
	return func(s *Service) { s.cacheKey = enabled }
}

// WithClock overrides the time source for creation dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a service bound to the vault directory in paths.
func New(paths store.Paths, opts ...Option) *Service {
	s := &Service{
		paths: paths,
		log:   logger.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Paths returns the storage layout the service writes to.
func (s *Service) Paths() store.Paths { return s.paths }

func (s *Service) acquire() error {
	if !s.mu.TryLock() {
		return vault.ErrBusy
	}
	return nil
}

// Create writes a new vault holding an empty credential set. master is
// borrowed. An existing file with the same name is never overwritten.
func (s *Service) Create(name string, master *secret.Buffer) (v *vault.Vault, err error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	defer s.finish(name, ActionCreate, time.Now(), &err)

	if master.Empty() {
		return nil, vault.ErrEmptyPassword
	}
	path, err := s.paths.VaultPath(name)
	if err != nil {
		if errors.Is(err, store.ErrBadName) {
			return nil, fmt.Errorf("%w: %w", vault.ErrInvalidName, err)
		}
		return nil, fmt.Errorf("%w: %w", vault.ErrStorage, err)
	}

	exists, err := store.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vault.ErrStorage, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", vault.ErrVaultExists, path)
	}
	if err := s.paths.EnsureDir(); err != nil {
		return nil, fmt.Errorf("%w: %w", vault.ErrStorage, err)
	}

	key, salt, err := deriveFresh(master)
	if err != nil {
		return nil, err
	}
	defer secret.Wipe(key)

	f, data, err := seal(s.now().UTC(), nil, key, salt)
	if err != nil {
		return nil, err
	}
	if err := store.WriteNew(path, data); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", vault.ErrVaultExists, path)
		}
		return nil, fmt.Errorf("%w: %w", vault.ErrStorage, err)
	}
	return &vault.Vault{Name: name, Path: path, File: f}, nil
}

// Load reads and parses a vault file without decrypting it. The vault is
// discovered but not open.
func (s *Service) Load(path string) (v *vault.Vault, err error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	name := store.NameFromPath(path)
	defer s.finish(name, ActionLoad, time.Now(), &err)

	return load(path)
}

func load(path string) (*vault.Vault, error) {
	data, err := store.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vault.ErrStorage, err)
	}
	f, err := vault.UnmarshalFile(data)
	if err != nil {
		return nil, err
	}
	return &vault.Vault{Name: store.NameFromPath(path), Path: path, File: f}, nil
}

// Unlock decrypts v with master and returns the credential set, which the
// caller owns and must Wipe. master is borrowed. Collaborators that edit the
// set should use Open instead.
func (s *Service) Unlock(v *vault.Vault, master *secret.Buffer) (set vault.CredentialSet, err error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	defer s.finish(vaultName(v), ActionUnlock, time.Now(), &err)

	set, key, err := s.decrypt(v, master)
	secret.Wipe(key)
	return set, err
}

func vaultName(v *vault.Vault) string {
	if v == nil {
		return ""
	}
	return v.Name
}

// decrypt is the single path from a password to plaintext. On success the
// caller owns both the set and the derived key.
func (s *Service) decrypt(v *vault.Vault, master *secret.Buffer) (vault.CredentialSet, []byte, error) {
	if v == nil {
		return nil, nil, fmt.Errorf("%w: no vault loaded", vault.ErrFormat)
	}
	if s.gate != nil {
		if err := s.gate.Authorize(v.Path); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", vault.ErrUnlockDenied, err)
		}
	}
	hdr := v.File.Header
	if err := hdr.Validate(); err != nil {
		return nil, nil, err
	}

	key, err := krypto.DeriveKey(master.Bytes(), hdr.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("derive key: %w", err)
	}

	plain, err := krypto.Decrypt(key, hdr.Nonce, v.File.Ciphertext)
	if err != nil {
		secret.Wipe(key)
		if errors.Is(err, krypto.ErrAuthentication) {
			return nil, nil, vault.ErrAuthentication
		}
		return nil, nil, fmt.Errorf("%w: %w", vault.ErrFormat, err)
	}
	defer secret.Wipe(plain)

	set, err := vault.DecodePayload(plain)
	if err != nil {
		secret.Wipe(key)
		return nil, nil, err
	}
	return set, key, nil
}

// Save encrypts set under master and atomically replaces the target vault.
// target is a vault name or a path to a vault file. A fresh salt and nonce
// are drawn on every call; the creation date of an existing file is kept.
// set and master are borrowed.
func (s *Service) Save(target string, set vault.CredentialSet, master *secret.Buffer) (v *vault.Vault, err error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	path, name, err := s.resolve(target)
	defer s.finish(name, ActionSave, time.Now(), &err)
	if err != nil {
		return nil, err
	}
	if master.Empty() {
		return nil, vault.ErrEmptyPassword
	}

	key, salt, err := deriveFresh(master)
	if err != nil {
		return nil, err
	}
	defer secret.Wipe(key)

	return s.write(path, name, s.createdAt(path), set, key, salt)
}

func (s *Service) resolve(target string) (path, name string, err error) {
	if strings.ContainsAny(target, `/\`) || strings.HasSuffix(target, "."+s.paths.Extension()) {
		return target, store.NameFromPath(target), nil
	}
	path, err = s.paths.VaultPath(target)
	if err != nil {
		if errors.Is(err, store.ErrBadName) {
			return "", target, fmt.Errorf("%w: %w", vault.ErrInvalidName, err)
		}
		return "", target, fmt.Errorf("%w: %w", vault.ErrStorage, err)
	}
	return path, target, nil
}

// createdAt keeps the creation date of an existing, readable vault file.
func (s *Service) createdAt(path string) time.Time {
	if old, err := load(path); err == nil {
		return old.File.Header.CreatedAt
	}
	return s.now().UTC()
}

// write encrypts set under key and replaces path. key and salt are borrowed.
func (s *Service) write(path, name string, created time.Time, set vault.CredentialSet, key, salt []byte) (*vault.Vault, error) {
	f, data, err := seal(created, set, key, salt)
	if err != nil {
		return nil, err
	}
	if err := store.WriteAtomic(path, data); err != nil {
		return nil, fmt.Errorf("%w: %w", vault.ErrStorage, err)
	}
	return &vault.Vault{Name: name, Path: path, File: f}, nil
}

// seal encrypts set under key with a fresh nonce and encodes the container.
func seal(created time.Time, set vault.CredentialSet, key, salt []byte) (vault.File, []byte, error) {
	plain := vault.EncodePayload(set)
	defer secret.Wipe(plain)

	ciphertext, nonce, err := krypto.Encrypt(key, plain)
	if err != nil {
		return vault.File{}, nil, fmt.Errorf("encrypt vault: %w", err)
	}

	f := vault.File{
		Header: vault.Header{
			Version:   vault.FormatVersion,
			CreatedAt: created,
			Salt:      bytes.Clone(salt),
			Nonce:     nonce,
		},
		Ciphertext: ciphertext,
	}
	data, err := vault.MarshalFile(f)
	if err != nil {
		return vault.File{}, nil, err
	}
	return f, data, nil
}

// deriveFresh draws a new salt and derives a key from master. The caller
// owns the key and must wipe it.
func deriveFresh(master *secret.Buffer) (key, salt []byte, err error) {
	salt, err = krypto.NewSalt()
	if err != nil {
		return nil, nil, err
	}
	key, err = krypto.DeriveKey(master.Bytes(), salt)
	if err != nil {
		return nil, nil, fmt.Errorf("derive key: %w", err)
	}
	return key, salt, nil
}

// finish logs the outcome of an operation and records it in the journal.
func (s *Service) finish(name, action string, started time.Time, errp *error) {
	err := *errp
	if errors.Is(err, vault.ErrBusy) {
		return
	}
	ev := s.log.Info()
	if err != nil {
		ev = s.log.Warn().Err(err)
	}
	ev.Str("vault", name).
		Str("action", action).
		Dur("took", time.Since(started)).
		Msg("vault operation")

	if s.rec == nil {
		return
	}
	if rerr := s.rec.Record(name, action, outcome(err)); rerr != nil {
		s.log.Error().Err(rerr).Str("vault", name).Str("action", action).Msg("journal write failed")
	}
}
