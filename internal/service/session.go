package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Hussein-Mazeh/shroombrella/internal/secret"
	"github.com/Hussein-Mazeh/shroombrella/internal/vault"
)

// State is the lifecycle position of a vault session.
type State int

const (
	// StateDiscovered is a vault that was loaded but never unlocked.
	StateDiscovered State = iota
	// StateUnlocked holds decrypted credentials.
	StateUnlocked
	// StateLocked is terminal; a fresh Open is required.
	StateLocked
)

func (st State) String() string {
	switch st {
	case StateDiscovered:
		return "discovered"
	case StateUnlocked:
		return "unlocked"
	case StateLocked:
		return "locked"
	default:
		return fmt.Sprintf("State(%d)", int(st))
	}
}

// Entry is the non-secret view of a credential used for listings.
type Entry struct {
	Index   int
	Service string
	Login   string
}

// Session owns the decrypted credentials of one open vault. Close wipes every
// secret it holds or handed out.
type Session struct {
	svc   *Service
	id    string
	vault *vault.Vault
	state State
	creds vault.CredentialSet
	dirty bool

	// Exactly one of master and key is set while unlocked.
	master *secret.Buffer
	key    *secret.Buffer
	salt   []byte

	copies secret.Tracker
}

// Open unlocks v and returns a session that owns the decrypted credentials.
// master is borrowed; the session keeps its own copy, or only the derived
// key when the service caches session keys.
func (s *Service) Open(v *vault.Vault, master *secret.Buffer) (sess *Session, err error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	defer s.finish(vaultName(v), ActionUnlock, time.Now(), &err)

	set, key, err := s.decrypt(v, master)
	if err != nil {
		return nil, err
	}

	sess = &Session{
		svc:   s,
		id:    uuid.NewString(),
		vault: v,
		state: StateUnlocked,
		creds: set,
	}
	if s.cacheKey {
		sess.key = secret.New(key)
		sess.salt = bytes.Clone(v.File.Header.Salt)
	} else {
		secret.Wipe(key)
		sess.master = master.Clone()
	}

	s.log.Debug().Str("vault", v.Name).Str("session", sess.id).Bool("key_cached", s.cacheKey).Msg("session opened")
	return sess, nil
}

// begin guards a session operation: it fails with ErrBusy when another
// operation is running and with ErrLocked after Close.
func (ss *Session) begin() error {
	if err := ss.svc.acquire(); err != nil {
		return err
	}
	if ss.state != StateUnlocked {
		ss.svc.mu.Unlock()
		return vault.ErrLocked
	}
	return nil
}

func (ss *Session) end() { ss.svc.mu.Unlock() }

// ID identifies the session in logs.
func (ss *Session) ID() string { return ss.id }

// Name returns the vault name.
func (ss *Session) Name() string { return ss.vault.Name }

// Path returns the vault file location.
func (ss *Session) Path() string { return ss.vault.Path }

// Vault returns the file the session was last saved to or opened from.
func (ss *Session) Vault() *vault.Vault { return ss.vault }

// State reports the lifecycle state.
func (ss *Session) State() State {
	ss.svc.mu.Lock()
	defer ss.svc.mu.Unlock()
	return ss.state
}

// Dirty reports whether there are unsaved changes.
func (ss *Session) Dirty() bool {
	ss.svc.mu.Lock()
	defer ss.svc.mu.Unlock()
	return ss.dirty
}

// Entries lists services and logins in stored order.
func (ss *Session) Entries() ([]Entry, error) {
	if err := ss.begin(); err != nil {
		return nil, err
	}
	defer ss.end()

	out := make([]Entry, len(ss.creds))
	for i, c := range ss.creds {
		out[i] = Entry{Index: i, Service: c.Service, Login: c.Login}
	}
	return out, nil
}

// Reveal returns a copy of the password at index i for display. The copy is
// tracked: the caller may Destroy it early, and Close destroys it regardless.
func (ss *Session) Reveal(i int) (*secret.Buffer, error) {
	if err := ss.begin(); err != nil {
		return nil, err
	}
	defer ss.end()

	if i < 0 || i >= len(ss.creds) {
		return nil, fmt.Errorf("%w: %d", vault.ErrNoSuchEntry, i)
	}
	return ss.copies.Track(ss.creds[i].Password.Clone()), nil
}

// Draft is an edit buffer for one credential. Its password is tracked by the
// session that produced it.
type Draft struct {
	Service string
	Login   string

	password *secret.Buffer
	copies   *secret.Tracker
}

// Password borrows the draft's password.
func (d *Draft) Password() *secret.Buffer { return d.password }

// SetPassword replaces the draft's password, taking ownership of pw. The
// previous value is destroyed.
func (d *Draft) SetPassword(pw *secret.Buffer) {
	d.password.Destroy()
	d.password = d.copies.Track(pw)
}

// Cancel discards the draft and wipes its password.
func (d *Draft) Cancel() {
	d.password.Destroy()
	d.password = nil
	d.Service = ""
	d.Login = ""
}

func (d *Draft) credential() (vault.Credential, error) {
	c := vault.Credential{Service: d.Service, Login: d.Login, Password: d.password}
	if !c.Complete() {
		return vault.Credential{}, vault.ErrIncompleteCredential
	}
	return vault.Credential{Service: d.Service, Login: d.Login, Password: d.password.Clone()}, nil
}

// NewDraft returns an empty edit buffer.
func (ss *Session) NewDraft() (*Draft, error) {
	if err := ss.begin(); err != nil {
		return nil, err
	}
	defer ss.end()
	return &Draft{copies: &ss.copies}, nil
}

// EditDraft returns an edit buffer prefilled from the credential at index i.
func (ss *Session) EditDraft(i int) (*Draft, error) {
	if err := ss.begin(); err != nil {
		return nil, err
	}
	defer ss.end()

	if i < 0 || i >= len(ss.creds) {
		return nil, fmt.Errorf("%w: %d", vault.ErrNoSuchEntry, i)
	}
	c := ss.creds[i]
	return &Draft{
		Service:  c.Service,
		Login:    c.Login,
		password: ss.copies.Track(c.Password.Clone()),
		copies:   &ss.copies,
	}, nil
}

// Add appends the draft as a new credential and consumes the draft. Every
// field must be filled in.
func (ss *Session) Add(d *Draft) error {
	if err := ss.begin(); err != nil {
		return err
	}
	defer ss.end()

	c, err := d.credential()
	if err != nil {
		return err
	}
	ss.creds = append(ss.creds, c)
	ss.dirty = true
	d.Cancel()
	return nil
}

// Update replaces the credential at index i with the draft and consumes the
// draft. The old password is wiped.
func (ss *Session) Update(i int, d *Draft) error {
	if err := ss.begin(); err != nil {
		return err
	}
	defer ss.end()

	if i < 0 || i >= len(ss.creds) {
		return fmt.Errorf("%w: %d", vault.ErrNoSuchEntry, i)
	}
	c, err := d.credential()
	if err != nil {
		return err
	}
	ss.creds[i].Wipe()
	ss.creds[i] = c
	ss.dirty = true
	d.Cancel()
	return nil
}

// Delete removes the credential at index i and wipes its password. Later
// entries shift down by one.
func (ss *Session) Delete(i int) error {
	if err := ss.begin(); err != nil {
		return err
	}
	defer ss.end()

	if i < 0 || i >= len(ss.creds) {
		return fmt.Errorf("%w: %d", vault.ErrNoSuchEntry, i)
	}
	ss.creds[i].Wipe()
	copy(ss.creds[i:], ss.creds[i+1:])
	ss.creds[len(ss.creds)-1] = vault.Credential{}
	ss.creds = ss.creds[:len(ss.creds)-1]
	ss.dirty = true
	return nil
}

// Save re-encrypts the full credential set with a fresh nonce and
// atomically replaces the vault file.
func (ss *Session) Save() (err error) {
	if err := ss.begin(); err != nil {
		return err
	}
	defer ss.end()
	defer ss.svc.finish(ss.vault.Name, ActionSave, time.Now(), &err)

	created := ss.vault.File.Header.CreatedAt
	var v *vault.Vault
	if ss.key != nil {
		v, err = ss.svc.write(ss.vault.Path, ss.vault.Name, created, ss.creds, ss.key.Bytes(), ss.salt)
	} else {
		key, salt, derr := deriveFresh(ss.master)
		if derr != nil {
			return derr
		}
		defer secret.Wipe(key)
		v, err = ss.svc.write(ss.vault.Path, ss.vault.Name, created, ss.creds, key, salt)
	}
	if err != nil {
		return err
	}
	ss.vault = v
	ss.dirty = false
	return nil
}

// ChangeMasterPassword re-encrypts the vault under newMaster with a fresh
// salt and nonce. newMaster is borrowed.
func (ss *Session) ChangeMasterPassword(newMaster *secret.Buffer) (err error) {
	if err := ss.begin(); err != nil {
		return err
	}
	defer ss.end()
	defer ss.svc.finish(ss.vault.Name, ActionChangeMaster, time.Now(), &err)

	if newMaster.Empty() {
		return vault.ErrEmptyPassword
	}
	key, salt, err := deriveFresh(newMaster)
	if err != nil {
		return err
	}
	defer secret.Wipe(key)

	v, err := ss.svc.write(ss.vault.Path, ss.vault.Name, ss.vault.File.Header.CreatedAt, ss.creds, key, salt)
	if err != nil {
		return err
	}
	ss.vault = v
	ss.dirty = false

	if ss.key != nil {
		ss.key.Destroy()
		ss.key = secret.New(bytes.Clone(key))
		ss.salt = bytes.Clone(salt)
	} else {
		ss.master.Destroy()
		ss.master = newMaster.Clone()
	}
	return nil
}

// Close wipes the credentials, the master password or cached key, and every
// copy handed out by Reveal or drafts. It waits for an in-flight operation
// and is safe to call more than once.
func (ss *Session) Close() {
	ss.svc.mu.Lock()
	defer ss.svc.mu.Unlock()

	if ss.state == StateLocked {
		return
	}
	ss.creds.Wipe()
	ss.creds = nil
	ss.master.Destroy()
	ss.master = nil
	ss.key.Destroy()
	ss.key = nil
	secret.Wipe(ss.salt)
	ss.salt = nil
	ss.copies.Wipe()
	ss.state = StateLocked

	ss.svc.log.Debug().Str("vault", ss.vault.Name).Str("session", ss.id).Msg("session locked")
	if ss.svc.rec != nil {
		if err := ss.svc.rec.Record(ss.vault.Name, ActionLock, "ok"); err != nil {
			ss.svc.log.Error().Err(err).Str("vault", ss.vault.Name).Msg("journal write failed")
		}
	}
}
