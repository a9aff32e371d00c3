package index

import "github.com/starford/vellum/internal/models"

// AnnotationIndex defines the persistence operations of the annotation
// service. Consumers depend on this interface rather than on *DB.
type AnnotationIndex interface {
	InsertAnnotation(r AnnotationRow) error
	GetAnnotation(id string) (*models.Annotation, string, error)
	ListAnnotations(fileID, versionID string, limit int, after int64) ([]models.Annotation, int64, error)
	DeleteAnnotation(id string) error
	Search(query string, limit int) ([]SearchResult, error)
	UpsertCollaborator(fileID string, c models.Collaborator) error
	ListCollaborators(fileID string, opts models.CollaboratorsOptions) ([]models.Collaborator, error)
	ReplaceImport(path, checksum, fileID string, rows []AnnotationRow) error
	DeleteImport(path string) error
	ImportChecksum(path string) (string, error)
	AllImportChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies AnnotationIndex at compile time.
var _ AnnotationIndex = (*DB)(nil)
