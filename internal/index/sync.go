package index

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/starford/vellum/internal/checksum"
	"github.com/starford/vellum/internal/models"
	"github.com/starford/vellum/internal/parser"
	"github.com/starford/vellum/internal/storage"
)

// Importer is the author recorded for batch entries that do not name one.
var Importer = models.User{ID: "importer", Name: "Importer", Type: models.CollaboratorUser}

// Sync walks the inbox and brings the imported annotations up to date:
//   - new/changed batch files are parsed and their annotations replaced
//   - files removed from disk have their annotations deleted
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllImportChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if n, err := ImportFile(db, m.Path, data); err != nil {
			logger.Warn("sync: import failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: imported", slog.String("path", m.Path), slog.Int("annotations", n))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteImport(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// ImportFile parses a batch and replaces the annotations imported from path.
// It returns the number of annotations written.
func ImportFile(db AnnotationIndex, path string, data []byte) (int, error) {
	batch, err := parser.Parse(data)
	if err != nil {
		return 0, err
	}
	rows := BatchRows(path, batch, time.Now())
	if err := db.ReplaceImport(path, checksum.Sum(data), batch.FileID, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// BatchRows converts a parsed batch into rows. Entries without an id get one
// derived from path and position, so re-importing a file keeps ids stable.
func BatchRows(path string, batch *parser.Batch, now time.Time) []AnnotationRow {
	author := Importer
	if batch.CreatedBy != nil {
		author = *batch.CreatedBy
	}
	payloads := batch.Payloads()
	rows := make([]AnnotationRow, 0, len(payloads))
	for i, p := range payloads {
		id := batch.Annotations[i].ID
		if id == "" {
			id = uuid.NewSHA1(uuid.NameSpaceURL, []byte("vellum:"+path+"#"+strconv.Itoa(i))).String()
		}
		rows = append(rows, AnnotationRow{
			Annotation: models.Annotation{
				ID:          id,
				Type:        p.Type,
				Target:      p.Target,
				Description: p.Description,
				FileVersion: p.FileVersion,
				CreatedBy:   author,
				CreatedAt:   now,
				Permissions: models.Permissions{CanDelete: true, CanEdit: true, CanReply: true, CanResolve: true},
			},
			FileID: batch.FileID,
			Source: path,
		})
	}
	return rows
}
