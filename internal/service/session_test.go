package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hussein-Mazeh/shroombrella/internal/secret"
	"github.com/Hussein-Mazeh/shroombrella/internal/service"
	"github.com/Hussein-Mazeh/shroombrella/internal/vault"
)

func openSession(t *testing.T, opts ...service.Option) (*service.Service, *service.Session) {
	t.Helper()
	svc, _ := newService(t, opts...)
	v, err := svc.Create("work", pw("p1"))
	require.NoError(t, err)
	sess, err := svc.Open(v, pw("p1"))
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return svc, sess
}

func addEntry(t *testing.T, sess *service.Session, svcName, login, password string) {
	t.Helper()
	d, err := sess.NewDraft()
	require.NoError(t, err)
	d.Service, d.Login = svcName, login
	d.SetPassword(pw(password))
	require.NoError(t, sess.Add(d))
}

func TestSessionEditsPreserveOrder(t *testing.T) {
	_, sess := openSession(t)
	addEntry(t, sess, "a", "1", "pa")
	addEntry(t, sess, "b", "2", "pb")
	addEntry(t, sess, "c", "3", "pc")
	addEntry(t, sess, "a", "1", "duplicate")

	require.NoError(t, sess.Delete(1))
	entries, err := sess.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, service.Entry{Index: 0, Service: "a", Login: "1"}, entries[0])
	assert.Equal(t, service.Entry{Index: 1, Service: "c", Login: "3"}, entries[1])
	assert.Equal(t, service.Entry{Index: 2, Service: "a", Login: "1"}, entries[2])

	got, err := sess.Reveal(2)
	require.NoError(t, err)
	assert.Equal(t, "duplicate", string(got.Bytes()))
}

func TestEditDraftAndCancel(t *testing.T) {
	_, sess := openSession(t)
	addEntry(t, sess, "github", "alice", "old")

	d, err := sess.EditDraft(0)
	require.NoError(t, err)
	assert.Equal(t, "github", d.Service)
	assert.Equal(t, "old", string(d.Password().Bytes()))

	copyBuf := d.Password()
	d.Cancel()
	assert.False(t, copyBuf.Alive(), "cancel wipes the edit copy")

	cur, err := sess.Reveal(0)
	require.NoError(t, err)
	assert.Equal(t, "old", string(cur.Bytes()), "cancel leaves the stored record alone")

	d, err = sess.EditDraft(0)
	require.NoError(t, err)
	d.SetPassword(pw("new"))
	require.NoError(t, sess.Update(0, d))

	cur, err = sess.Reveal(0)
	require.NoError(t, err)
	assert.Equal(t, "new", string(cur.Bytes()))
}

func TestIncompleteDraftRejected(t *testing.T) {
	_, sess := openSession(t)

	d, err := sess.NewDraft()
	require.NoError(t, err)
	d.Service = "github"
	d.SetPassword(pw("x"))
	assert.ErrorIs(t, sess.Add(d), vault.ErrIncompleteCredential)

	d.Login = "alice"
	d.SetPassword(secret.FromString(""))
	assert.ErrorIs(t, sess.Add(d), vault.ErrIncompleteCredential)

	entries, err := sess.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIndexOutOfRange(t *testing.T) {
	_, sess := openSession(t)

	_, err := sess.Reveal(0)
	assert.ErrorIs(t, err, vault.ErrNoSuchEntry)
	_, err = sess.EditDraft(-1)
	assert.ErrorIs(t, err, vault.ErrNoSuchEntry)
	assert.ErrorIs(t, sess.Delete(3), vault.ErrNoSuchEntry)

	d, err := sess.NewDraft()
	require.NoError(t, err)
	assert.ErrorIs(t, sess.Update(0, d), vault.ErrNoSuchEntry)
}

func TestCloseWipesEverythingAndLocks(t *testing.T) {
	_, sess := openSession(t)
	addEntry(t, sess, "github", "alice", "s3cr3t")

	shown, err := sess.Reveal(0)
	require.NoError(t, err)
	draft, err := sess.EditDraft(0)
	require.NoError(t, err)
	editing := draft.Password()

	assert.Equal(t, service.StateUnlocked, sess.State())
	sess.Close()

	assert.Equal(t, service.StateLocked, sess.State())
	assert.False(t, shown.Alive())
	assert.False(t, editing.Alive())

	_, err = sess.Entries()
	assert.ErrorIs(t, err, vault.ErrLocked)
	assert.ErrorIs(t, sess.Save(), vault.ErrLocked)
	_, err = sess.Reveal(0)
	assert.ErrorIs(t, err, vault.ErrLocked)

	sess.Close()
}

func TestReopenAfterLockNeedsUnlock(t *testing.T) {
	svc, sess := openSession(t)
	addEntry(t, sess, "github", "alice", "s3cr3t")
	require.NoError(t, sess.Save())
	v := sess.Vault()
	sess.Close()

	_, err := svc.Open(v, pw("wrong"))
	assert.ErrorIs(t, err, vault.ErrAuthentication)

	again, err := svc.Open(v, pw("p1"))
	require.NoError(t, err)
	defer again.Close()
	entries, err := again.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSessionSaveWithKeyCache(t *testing.T) {
	svc, sess := openSession(t, service.WithSessionKeyCache(true))
	salt := append([]byte(nil), sess.Vault().File.Header.Salt...)
	nonce := append([]byte(nil), sess.Vault().File.Header.Nonce...)

	addEntry(t, sess, "github", "alice", "s3cr3t")
	require.NoError(t, sess.Save())

	hdr := sess.Vault().File.Header
	assert.Equal(t, salt, hdr.Salt, "cached key reuses the salt")
	assert.NotEqual(t, nonce, hdr.Nonce, "every save draws a new nonce")

	reloaded, err := svc.Load(sess.Path())
	require.NoError(t, err)
	sess.Close()

	set, err := svc.Unlock(reloaded, pw("p1"))
	require.NoError(t, err)
	defer set.Wipe()
	require.Len(t, set, 1)
	assert.Equal(t, "s3cr3t", string(set[0].Password.Bytes()))
}

func TestSessionSaveRederivesWithFreshSalt(t *testing.T) {
	_, sess := openSession(t)
	salt := append([]byte(nil), sess.Vault().File.Header.Salt...)

	require.NoError(t, sess.Save())
	assert.NotEqual(t, salt, sess.Vault().File.Header.Salt)
}

func TestChangeMasterPassword(t *testing.T) {
	for _, cached := range []bool{false, true} {
		svc, sess := openSession(t, service.WithSessionKeyCache(cached))
		addEntry(t, sess, "github", "alice", "s3cr3t")

		assert.ErrorIs(t, sess.ChangeMasterPassword(pw("")), vault.ErrEmptyPassword)
		require.NoError(t, sess.ChangeMasterPassword(pw("p2")))
		assert.False(t, sess.Dirty())

		require.NoError(t, sess.Save(), "later saves use the new password")

		v, err := svc.Load(sess.Path())
		require.NoError(t, err)
		_, err = svc.Unlock(v, pw("p1"))
		assert.ErrorIs(t, err, vault.ErrAuthentication)

		set, err := svc.Unlock(v, pw("p2"))
		require.NoError(t, err)
		require.Len(t, set, 1)
		set.Wipe()
		sess.Close()
	}
}

func TestSessionOperationRejectedWhileServiceBusy(t *testing.T) {
	gate := &blockingGate{entered: make(chan struct{}), release: make(chan struct{})}
	svc, paths := newService(t)
	v, err := svc.Create("work", pw("p1"))
	require.NoError(t, err)
	sess, err := svc.Open(v, pw("p1"))
	require.NoError(t, err)
	defer sess.Close()

	gated := service.New(paths, service.WithUnlockGate(gate))
	other, err := gated.Load(v.Path)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		s2, err := gated.Open(other, pw("p1"))
		if err == nil {
			s2.Close()
		}
		done <- err
	}()
	<-gate.entered

	_, err = gated.Load(v.Path)
	assert.ErrorIs(t, err, vault.ErrBusy)

	_, err = sess.Entries()
	assert.NoError(t, err, "an unrelated service is not blocked")

	close(gate.release)
	require.NoError(t, <-done)
}
