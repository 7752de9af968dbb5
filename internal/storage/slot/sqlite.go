package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteDB is a key/value table of slots in a local SQLite file.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the slot database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; the Store serializes anyway.
	db.SetMaxOpenConns(1)

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS slots (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			db.Close()
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
	}
	return &SQLiteDB{db: db}, nil
}

// Close closes the database.
func (d *SQLiteDB) Close() error {
	return d.db.Close()
}

// Slot returns the named slot.
func (d *SQLiteDB) Slot(name string) *SQLiteSlot {
	return &SQLiteSlot{db: d.db, name: name}
}

// SQLiteSlot is one row of the slots table.
type SQLiteSlot struct {
	db   *sql.DB
	name string
}

// Read returns the slot value, or nil if the row does not exist.
func (s *SQLiteSlot) Read(ctx context.Context) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE name = ?`, s.name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", s.name, err)
	}
	return []byte(value), nil
}

// Write upserts the slot value.
func (s *SQLiteSlot) Write(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slots (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.name, string(data))
	if err != nil {
		return fmt.Errorf("write slot %s: %w", s.name, err)
	}
	return nil
}

var _ Slot = (*SQLiteSlot)(nil)
