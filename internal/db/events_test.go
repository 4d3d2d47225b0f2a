package db_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Hussein-Mazeh/shroombrella/internal/db"
	"github.com/Hussein-Mazeh/shroombrella/internal/service"
)

var _ service.Recorder = (*db.Journal)(nil)

func TestOpenCreatesDatabaseFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "journal.db")

	d, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		db.Close(d)
	})

	info, err := os.Stat(dbPath)
	if err != nil {
		t.Fatalf("expected database file to exist at %q: %v", dbPath, err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected mode 0600, got %o", perm)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := db.Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestJournalRecordsAndLists(t *testing.T) {
	j, err := db.OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })

	steps := []struct{ vault, action, outcome string }{
		{"work", "create", "ok"},
		{"work", "unlock", "auth_failed"},
		{"home", "create", "ok"},
		{"work", "unlock", "ok"},
	}
	for _, s := range steps {
		if err := j.Record(s.vault, s.action, s.outcome); err != nil {
			t.Fatalf("Record(%v): %v", s, err)
		}
	}

	work, err := j.Events("work", 0)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(work) != 3 {
		t.Fatalf("expected 3 events for work, got %d", len(work))
	}
	if work[0].Action != "unlock" || work[0].Outcome != "ok" {
		t.Fatalf("expected newest event first, got %+v", work[0])
	}
	if work[2].Action != "create" {
		t.Fatalf("expected oldest event last, got %+v", work[2])
	}
	if work[0].CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	all, err := j.Events("", 2)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(all))
	}
	if all[1].Vault != "home" {
		t.Fatalf("expected home as second newest, got %q", all[1].Vault)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close(d) })

	for i := 0; i < 2; i++ {
		if err := db.Migrate(d); err != nil {
			t.Fatalf("Migrate #%d: %v", i+1, err)
		}
	}
	if _, err := db.InsertEvent(d, "work", "save", "ok"); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}
}

func TestNilHandle(t *testing.T) {
	if err := db.Migrate(nil); err == nil {
		t.Fatal("expected error for nil handle")
	}
	if _, err := db.ListEvents(nil, "", 0); err == nil {
		t.Fatal("expected error for nil handle")
	}
	if err := db.Close(nil); err != nil {
		t.Fatalf("Close(nil): %v", err)
	}
}
