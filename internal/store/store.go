// Package store provides the SQLite-backed slot store for Infinity state.
//
// Application state lives in named slots, each holding the whole collection
// as one JSON document. Every mutation runs through Apply, which serializes
// writers behind a process-wide mutex and wraps the operation in a single
// SQL transaction, so a logical operation commits atomically across every
// slot it touches. A worlds mirror table (with optional FTS5 behind the
// sqlite_fts5 build tag) is refreshed alongside the websites slot and
// serves marketplace search.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS slots (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS worlds (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	owner       TEXT NOT NULL DEFAULT '',
	value       INTEGER NOT NULL DEFAULT 0,
	listed      INTEGER NOT NULL DEFAULT 0,
	sale_price  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_worlds_owner ON worlds(owner);
CREATE INDEX IF NOT EXISTS idx_worlds_listed ON worlds(listed);
`

// DB wraps a sql.DB with slot-store operations.
type DB struct {
	conn *sql.DB

	// mu is the single-writer boundary: one logical operation at a time.
	mu sync.Mutex
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Apply runs fn inside the single-writer boundary. All slot reads and
// writes inside fn belong to one SQL transaction; if fn returns an error
// the transaction rolls back and no slot changes.
func (db *DB) Apply(fn func(tx *Txn) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	sqlTx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	tx := &Txn{sqlTx: sqlTx}
	if err := fn(tx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// View runs fn against a read-only snapshot. Writes inside fn are rejected
// at commit by SQLite; callers should treat the Txn as read-only.
func (db *DB) View(fn func(tx *Txn) error) error {
	sqlTx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin view: %w", err)
	}
	defer sqlTx.Rollback() //nolint:errcheck // view is never committed

	return fn(&Txn{sqlTx: sqlTx})
}
