package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/vellum/internal/apperr"
	"github.com/starford/vellum/internal/models"
)

// AnnotationRow is an annotation together with the columns that are not part
// of the API representation.
type AnnotationRow struct {
	Annotation models.Annotation
	FileID     string
	// Source is the inbox path the row was imported from, or "" for rows
	// created through the API.
	Source string
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	FileID  string `json:"file_id"`
	Type    string `json:"type"`
	Snippet string `json:"snippet"`
}

const annotationColumns = `seq, id, file_id, file_version_id, type, target, message, created_by, created_at, permissions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnnotation(s rowScanner) (models.Annotation, string, int64, error) {
	var (
		a                                  models.Annotation
		seq                                int64
		fileID, target, message, by, perms string
	)
	err := s.Scan(&seq, &a.ID, &fileID, &a.FileVersion.ID, &a.Type, &target, &message, &by, &a.CreatedAt, &perms)
	if err != nil {
		return a, "", 0, err
	}
	if err := json.Unmarshal([]byte(target), &a.Target); err != nil {
		return a, "", 0, fmt.Errorf("index: decode target %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(by), &a.CreatedBy); err != nil {
		return a, "", 0, fmt.Errorf("index: decode created_by %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(perms), &a.Permissions); err != nil {
		return a, "", 0, fmt.Errorf("index: decode permissions %s: %w", a.ID, err)
	}
	if message != "" {
		a.Description = &models.Description{Message: message}
	}
	return a, fileID, seq, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

// upsertAnnotation writes r inside tx. With replace unset, an existing id is
// reported as apperr.ErrAlreadyExists. With replace set, only a row from the
// same source is overwritten; an id owned by the API or by another import is
// reported as apperr.ErrAlreadyExists.
func upsertAnnotation(tx *sql.Tx, r AnnotationRow, replace bool) error {
	a := r.Annotation
	target, err := json.Marshal(a.Target)
	if err != nil {
		return fmt.Errorf("index: encode target: %w", err)
	}
	by, _ := json.Marshal(a.CreatedBy)
	perms, _ := json.Marshal(a.Permissions)

	q := `
		INSERT INTO annotations (id, file_id, file_version_id, type, location_type, location_value,
			target, message, created_by, created_at, permissions, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if replace {
		q += `
		ON CONFLICT(id) DO UPDATE SET
			file_id         = excluded.file_id,
			file_version_id = excluded.file_version_id,
			type            = excluded.type,
			location_type   = excluded.location_type,
			location_value  = excluded.location_value,
			target          = excluded.target,
			message         = excluded.message,
			created_by      = excluded.created_by,
			permissions     = excluded.permissions,
			source          = excluded.source
		WHERE annotations.source = excluded.source`
	}
	res, err := tx.Exec(q, a.ID, r.FileID, a.FileVersion.ID, a.Type,
		string(a.Target.Location.Type), a.Target.Location.Value,
		string(target), a.Message(), string(by), a.CreatedAt.UTC(), string(perms), r.Source)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("index: upsert annotation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("index: upsert annotation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("index: annotation %s belongs to another source: %w", a.ID, apperr.ErrAlreadyExists)
	}
	return ftsUpsert(tx, a.ID, r.FileID, a.Message())
}

// InsertAnnotation stores a new annotation. A duplicate id yields
// apperr.ErrAlreadyExists.
func (db *DB) InsertAnnotation(r AnnotationRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := upsertAnnotation(tx, r, false); err != nil {
		return err
	}
	return tx.Commit()
}

// GetAnnotation returns the annotation with id and the file it belongs to.
func (db *DB) GetAnnotation(id string) (*models.Annotation, string, error) {
	row := db.conn.QueryRow(`SELECT `+annotationColumns+` FROM annotations WHERE id = ?`, id)
	a, fileID, _, err := scanAnnotation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", apperr.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("index: get annotation: %w", err)
	}
	return &a, fileID, nil
}

// ListAnnotations returns up to limit annotations of fileID created after the
// sequence marker after, oldest first. An empty versionID matches every
// version. next is the marker for the following page, or 0 when this page is
// the last one.
func (db *DB) ListAnnotations(fileID, versionID string, limit int, after int64) (out []models.Annotation, next int64, err error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.conn.Query(`
		SELECT `+annotationColumns+`
		FROM annotations
		WHERE file_id = ? AND (? = '' OR file_version_id = ?) AND seq > ?
		ORDER BY seq
		LIMIT ?
	`, fileID, versionID, versionID, after, limit+1)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list annotations: %w", err)
	}
	defer rows.Close()

	var last int64
	for rows.Next() {
		a, _, seq, err := scanAnnotation(rows)
		if err != nil {
			return nil, 0, err
		}
		if len(out) == limit {
			next = last
			break
		}
		out = append(out, a)
		last = seq
	}
	return out, next, rows.Err()
}

// DeleteAnnotation removes the annotation with id.
func (db *DB) DeleteAnnotation(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	res, err := tx.Exec(`DELETE FROM annotations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("index: delete annotation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return tx.Commit()
}

// ReplaceImport swaps every annotation previously imported from path for rows
// and records the file's checksum.
func (db *DB) ReplaceImport(path, checksum, fileID string, rows []AnnotationRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeleteSource(tx, path)
	if _, err := tx.Exec(`DELETE FROM annotations WHERE source = ?`, path); err != nil {
		return fmt.Errorf("index: clear import: %w", err)
	}
	for _, r := range rows {
		r.Source = path
		if err := upsertAnnotation(tx, r, true); err != nil {
			return err
		}
	}
	_, err = tx.Exec(`
		INSERT INTO imports (path, checksum, file_id, imported_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum    = excluded.checksum,
			file_id     = excluded.file_id,
			imported_at = excluded.imported_at
	`, path, checksum, fileID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("index: record import: %w", err)
	}
	return tx.Commit()
}

// DeleteImport removes an import record and every annotation it produced.
func (db *DB) DeleteImport(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeleteSource(tx, path)
	if _, err := tx.Exec(`DELETE FROM annotations WHERE source = ?`, path); err != nil {
		return fmt.Errorf("index: clear import: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM imports WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete import record: %w", err)
	}
	return tx.Commit()
}

// ImportChecksum returns the checksum recorded for path, or "" if it was never
// imported.
func (db *DB) ImportChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM imports WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllImportChecksums maps every imported path to its checksum.
func (db *DB) AllImportChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM imports`)
	if err != nil {
		return nil, fmt.Errorf("index: all imports: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// UpsertCollaborator adds or updates a collaborator of fileID. Listing order
// follows first insertion.
func (db *DB) UpsertCollaborator(fileID string, c models.Collaborator) error {
	_, err := db.conn.Exec(`
		INSERT INTO collaborators (file_id, id, name, login, type, is_uploader, seq)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM collaborators WHERE file_id = ?))
		ON CONFLICT(file_id, id) DO UPDATE SET
			name        = excluded.name,
			login       = excluded.login,
			type        = excluded.type,
			is_uploader = excluded.is_uploader
	`, fileID, c.ID, c.Name, c.Login, c.Type, c.IsUploader, fileID)
	if err != nil {
		return fmt.Errorf("index: upsert collaborator: %w", err)
	}
	return nil
}

// ListCollaborators returns the collaborators of fileID. Groups and the
// uploader are left out unless opts asks for them.
func (db *DB) ListCollaborators(fileID string, opts models.CollaboratorsOptions) ([]models.Collaborator, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, login, type, is_uploader
		FROM collaborators
		WHERE file_id = ?
		  AND (? OR type != 'group')
		  AND (? OR is_uploader = 0)
		ORDER BY seq
	`, fileID, opts.IncludeGroups, opts.IncludeUploaderCollabs)
	if err != nil {
		return nil, fmt.Errorf("index: list collaborators: %w", err)
	}
	defer rows.Close()

	out := []models.Collaborator{}
	for rows.Next() {
		var c models.Collaborator
		if err := rows.Scan(&c.ID, &c.Name, &c.Login, &c.Type, &c.IsUploader); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
