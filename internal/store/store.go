// Package store is a pure-Go sqlite-backed snapshot of a session's symbol
// tree and cross-reference index (spec.md §4.2/§4.9). Grounded on the
// shape of a code-analysis sqlite store (other_examples' canopy store.go:
// a `Store` wrapping *sql.DB, an idempotent schemaDDL migration, WAL mode)
// and the teacher's own modernc.org/sqlite require, which no
// funvibe-funxy package actually imports — this gives it one: a
// cppsem-dump snapshot a later run can reload and diff against, without
// re-running C2-C9 from source.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is the sqlite-backed snapshot database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) a sqlite database at path with WAL mode
// and foreign keys enabled, and applies the snapshot schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping snapshot database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate snapshot schema: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS snapshots (
	id           INTEGER PRIMARY KEY,
	label        TEXT NOT NULL UNIQUE,
	created_unix INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS symbols (
	uid            TEXT NOT NULL,
	snapshot_id    INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	parent_uid     TEXT,
	name           TEXT NOT NULL,
	kind           TEXT NOT NULL,
	qualified_name TEXT NOT NULL,
	type_string    TEXT,
	PRIMARY KEY (snapshot_id, uid)
);
CREATE INDEX IF NOT EXISTS idx_symbols_snapshot_parent ON symbols (snapshot_id, parent_uid);
CREATE INDEX IF NOT EXISTS idx_symbols_snapshot_qualified ON symbols (snapshot_id, qualified_name);

CREATE TABLE IF NOT EXISTS xrefs (
	snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	kind        TEXT NOT NULL,
	file        TEXT NOT NULL,
	line        INTEGER NOT NULL,
	offset      INTEGER NOT NULL,
	count       INTEGER NOT NULL,
	symbol_uid  TEXT NOT NULL,
	seq         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_xrefs_snapshot_span ON xrefs (snapshot_id, file, line, offset);
CREATE INDEX IF NOT EXISTS idx_xrefs_snapshot_symbol ON xrefs (snapshot_id, symbol_uid);
`
