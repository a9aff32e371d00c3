// Package service coordinates validation, persistence and event publication
// for annotations, collaborators and inbox imports.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/starford/vellum/internal/apperr"
	"github.com/starford/vellum/internal/index"
	"github.com/starford/vellum/internal/models"
	"github.com/starford/vellum/internal/parser"
	"github.com/starford/vellum/internal/storage"
)

// Page size bounds for ListAnnotations.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Publisher receives change notifications. *sse.Broker implements it.
type Publisher interface {
	PublishAnnotationEvent(kind, id, fileID string)
	PublishImportEvent(kind, path string)
}

// Event kinds passed to Publisher.
const (
	kindCreated  = "created"
	kindDeleted  = "deleted"
	kindImported = "imported"
	kindRemoved  = "removed"
)

type nopPublisher struct{}

func (nopPublisher) PublishAnnotationEvent(string, string, string) {}
func (nopPublisher) PublishImportEvent(string, string)             {}

// Service coordinates the index, the inbox and event publication.
type Service struct {
	db     index.AnnotationIndex
	store  storage.Provider
	events Publisher
	now    func() time.Time
}

// NewService creates a service. events may be nil.
func NewService(db index.AnnotationIndex, store storage.Provider, events Publisher) *Service {
	if events == nil {
		events = nopPublisher{}
	}
	return &Service{db: db, store: store, events: events, now: time.Now}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
}

// CreateAnnotation validates in and stores it as a new annotation of fileID
// authored by author. The author receives full permissions.
func (s *Service) CreateAnnotation(_ context.Context, fileID string, author models.User, in models.NewAnnotation) (*models.Annotation, error) {
	if fileID == "" {
		return nil, invalid(errors.New("file id is required"))
	}
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	target := in.Target
	if target.Type == "" {
		target.Type = in.Type
	}
	a := models.Annotation{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Target:      target,
		Description: in.Description,
		FileVersion: in.FileVersion,
		CreatedBy:   author,
		CreatedAt:   s.now().UTC(),
		Permissions: models.Permissions{CanDelete: true, CanEdit: true, CanReply: true, CanResolve: true},
	}
	if err := s.db.InsertAnnotation(index.AnnotationRow{Annotation: a, FileID: fileID}); err != nil {
		return nil, err
	}
	s.events.PublishAnnotationEvent(kindCreated, a.ID, fileID)
	return &a, nil
}

// GetAnnotation returns one annotation.
func (s *Service) GetAnnotation(_ context.Context, id string) (*models.Annotation, error) {
	a, _, err := s.db.GetAnnotation(id)
	return a, err
}

// ListAnnotations returns one page of fileID's annotations. marker is the
// opaque next_marker of the previous page, or "" for the first page.
func (s *Service) ListAnnotations(_ context.Context, fileID, versionID string, limit int, marker string) (*models.AnnotationPage, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	var after int64
	if marker != "" {
		n, err := strconv.ParseInt(marker, 10, 64)
		if err != nil || n < 0 {
			return nil, invalid(fmt.Errorf("bad marker %q", marker))
		}
		after = n
	}
	entries, next, err := s.db.ListAnnotations(fileID, versionID, limit, after)
	if err != nil {
		return nil, err
	}
	page := &models.AnnotationPage{Entries: nonNilSlice(entries), Limit: limit}
	if next > 0 {
		m := strconv.FormatInt(next, 10)
		page.NextMarker = &m
	}
	return page, nil
}

// DeleteAnnotation removes an annotation the stored permissions allow to be
// deleted.
func (s *Service) DeleteAnnotation(_ context.Context, id string) error {
	a, fileID, err := s.db.GetAnnotation(id)
	if err != nil {
		return err
	}
	if !a.Permissions.CanDelete {
		return apperr.ErrForbidden
	}
	if err := s.db.DeleteAnnotation(id); err != nil {
		return err
	}
	s.events.PublishAnnotationEvent(kindDeleted, id, fileID)
	return nil
}

// Search matches annotation messages.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	res, err := s.db.Search(query, limit)
	return nonNilSlice(res), err
}

// ListCollaborators returns the collaborators of fileID filtered by opts.
func (s *Service) ListCollaborators(_ context.Context, fileID string, opts models.CollaboratorsOptions) ([]models.Collaborator, error) {
	return s.db.ListCollaborators(fileID, opts)
}

// AddCollaborator validates and stores a collaborator of fileID.
func (s *Service) AddCollaborator(_ context.Context, fileID string, c models.Collaborator) error {
	if err := c.Validate(); err != nil {
		return invalid(err)
	}
	return s.db.UpsertCollaborator(fileID, c)
}

// ListImports returns the batch files currently in the inbox.
func (s *Service) ListImports(_ context.Context) ([]storage.FileMeta, error) {
	metas, err := s.store.List("")
	return nonNilSlice(metas), err
}

// ImportBatch validates data, writes it into the inbox as name and imports
// it. It returns the number of annotations imported.
func (s *Service) ImportBatch(_ context.Context, name string, data []byte) (int, error) {
	if err := storage.CheckName(name); err != nil {
		return 0, invalid(err)
	}
	if _, err := parser.Parse(data); err != nil {
		return 0, invalid(err)
	}
	if _, err := s.store.Read(name); err == nil {
		return 0, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(name, data); err != nil {
		return 0, err
	}
	n, err := index.ImportFile(s.db, name, data)
	if err != nil {
		_ = s.store.Delete(name)
		return 0, err
	}
	s.events.PublishImportEvent(kindImported, name)
	return n, nil
}

// DeleteImport removes a batch file from the inbox together with its
// annotations.
func (s *Service) DeleteImport(_ context.Context, name string) error {
	if err := storage.CheckName(name); err != nil {
		return invalid(err)
	}
	if err := s.store.Delete(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	if err := s.db.DeleteImport(name); err != nil {
		return err
	}
	s.events.PublishImportEvent(kindRemoved, name)
	return nil
}
