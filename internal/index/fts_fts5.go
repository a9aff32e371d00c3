//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS annotations_fts USING fts5(
			id UNINDEXED,
			file_id UNINDEXED,
			message,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, fileID, message string) error {
	_, _ = tx.Exec(`DELETE FROM annotations_fts WHERE id = ?`, id)
	if message == "" {
		return nil
	}
	_, err := tx.Exec(`INSERT INTO annotations_fts (id, file_id, message) VALUES (?, ?, ?)`, id, fileID, message)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM annotations_fts WHERE id = ?`, id)
}

func ftsDeleteSource(tx *sql.Tx, source string) {
	_, _ = tx.Exec(`DELETE FROM annotations_fts WHERE id IN (SELECT id FROM annotations WHERE source = ?)`, source)
}

// Search performs an FTS5 match over annotation messages and returns snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT f.id,
		       f.file_id,
		       a.type,
		       snippet(annotations_fts, 2, '<b>', '</b>', '...', 32)
		FROM annotations_fts f
		JOIN annotations a ON a.id = f.id
		WHERE annotations_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.FileID, &r.Type, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
