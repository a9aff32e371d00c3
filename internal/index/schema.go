// Package index is the SQLite store behind the annotation service, with
// optional FTS5 search over annotation messages.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS annotations (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL UNIQUE,
	file_id         TEXT NOT NULL,
	file_version_id TEXT NOT NULL,
	type            TEXT NOT NULL,
	location_type   TEXT NOT NULL,
	location_value  INTEGER NOT NULL,
	target          TEXT NOT NULL,
	message         TEXT NOT NULL DEFAULT '',
	created_by      TEXT NOT NULL DEFAULT '{}',
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	permissions     TEXT NOT NULL DEFAULT '{}',
	source          TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_annotations_file ON annotations(file_id, file_version_id, seq);
CREATE INDEX IF NOT EXISTS idx_annotations_source ON annotations(source);

CREATE TABLE IF NOT EXISTS collaborators (
	file_id     TEXT NOT NULL,
	id          TEXT NOT NULL,
	name        TEXT NOT NULL,
	login       TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL,
	is_uploader INTEGER NOT NULL DEFAULT 0,
	seq         INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (file_id, id)
);

CREATE TABLE IF NOT EXISTS imports (
	path        TEXT PRIMARY KEY,
	checksum    TEXT NOT NULL,
	file_id     TEXT NOT NULL,
	imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps a sql.DB with annotation-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
