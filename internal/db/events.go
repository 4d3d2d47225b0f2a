package db

import (
	"fmt"
	"time"
)

// Event is one journal row.
type Event struct {
	ID        int64
	Vault     string
	Action    string
	Outcome   string
	CreatedAt time.Time
}

// InsertEvent appends an event and returns its database ID.
func InsertEvent(d *DB, vault, action, outcome string) (int64, error) {
	if d == nil || d.sql == nil {
		return 0, fmt.Errorf("database handle is nil")
	}

	res, err := d.sql.Exec(
		`INSERT INTO events (vault, action, outcome, created_at) VALUES (?, ?, ?, ?)`,
		vault, action, outcome, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetch insert id: %w", err)
	}

	return id, nil
}

// ListEvents returns the most recent events, newest first. An empty vault
// lists every vault; limit <= 0 means no limit.
func ListEvents(d *DB, vault string, limit int) ([]Event, error) {
	if d == nil || d.sql == nil {
		return nil, fmt.Errorf("database handle is nil")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := d.sql.Query(
		`SELECT id, vault, action, outcome, created_at
		   FROM events
		  WHERE ? = '' OR vault = ?
		  ORDER BY id DESC
		  LIMIT ?`,
		vault, vault, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.Vault, &ev.Action, &ev.Outcome, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Journal records vault operations in the events table.
type Journal struct {
	db *DB
}

// OpenJournal opens (and migrates) the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	d, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(d); err != nil {
		Close(d)
		return nil, err
	}
	return &Journal{db: d}, nil
}

// Record implements service.Recorder.
func (j *Journal) Record(vault, action, outcome string) error {
	_, err := InsertEvent(j.db, vault, action, outcome)
	return err
}

// Events lists recent events for vault.
func (j *Journal) Events(vault string, limit int) ([]Event, error) {
	return ListEvents(j.db, vault, limit)
}

// Close releases the database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return Close(j.db)
}
