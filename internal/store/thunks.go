package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/vellum/internal/action"
	"github.com/starford/vellum/internal/models"
)

// AnnotationsAPI is the annotation service as the store needs it.
type AnnotationsAPI interface {
	CreateAnnotation(ctx context.Context, fileID, fileVersionID string, payload models.NewAnnotation) (*models.Annotation, error)
	GetAnnotations(ctx context.Context, fileID, fileVersionID string, limit int, fetchAll bool) (*models.AnnotationPage, error)
	DeleteAnnotation(ctx context.Context, id string) error
	Destroy()
}

// CollaboratorsAPI lists the people and groups with access to a file.
type CollaboratorsAPI interface {
	GetFileCollaborators(ctx context.Context, fileID string, opts models.CollaboratorsOptions) ([]models.Collaborator, error)
	Destroy()
}

// fetchLimit is the page size used when loading every annotation.
const fetchLimit = 1000

// CreateAnnotation commits payload. The outcome is always reported through
// pending/fulfilled/rejected actions; the returned error is for callers that
// want it directly.
func (s *Store) CreateAnnotation(ctx context.Context, api AnnotationsAPI, payload models.NewAnnotation) (*models.Annotation, error) {
	opts := s.State().Options
	if payload.FileVersion.ID == "" {
		payload.FileVersion.ID = opts.FileVersionID
	}

	s.Dispatch(action.CreateAnnotationPending{Arg: payload})

	created, err := api.CreateAnnotation(ctx, opts.FileID, payload.FileVersion.ID, payload)
	if err != nil {
		s.logger.Warn("store: create annotation failed", slog.String("error", err.Error()))
		s.Dispatch(action.CreateAnnotationRejected{Arg: payload, Error: models.SerializeError(err)})
		return nil, fmt.Errorf("store: create annotation: %w", err)
	}

	s.Dispatch(action.CreateAnnotationFulfilled{Arg: payload, Annotation: *created})
	return created, nil
}

// FetchAnnotations loads every annotation for the configured file version.
func (s *Store) FetchAnnotations(ctx context.Context, api AnnotationsAPI) error {
	opts := s.State().Options
	s.Dispatch(action.FetchAnnotationsPending{})

	page, err := api.GetAnnotations(ctx, opts.FileID, opts.FileVersionID, fetchLimit, true)
	if err != nil {
		s.Dispatch(action.FetchAnnotationsRejected{Error: models.SerializeError(err)})
		return fmt.Errorf("store: fetch annotations: %w", err)
	}

	s.Dispatch(action.FetchAnnotationsFulfilled{Page: *page})
	return nil
}

// DeleteAnnotation removes id from the service, then from the store.
func (s *Store) DeleteAnnotation(ctx context.Context, api AnnotationsAPI, id string) error {
	if err := api.DeleteAnnotation(ctx, id); err != nil {
		return fmt.Errorf("store: delete annotation %s: %w", id, err)
	}
	s.Dispatch(action.RemoveAnnotation{ID: id})
	return nil
}

// FetchCollaborators loads the file collaborators through a client made by
// newAPI for this fetch alone. The client is destroyed once the request
// returns, so a cancelled fetch aborts its own request before the rejection
// is dispatched and leaves every other client usable.
func (s *Store) FetchCollaborators(ctx context.Context, newAPI func() CollaboratorsAPI) error {
	opts := s.State().Options
	s.Dispatch(action.FetchCollaboratorsPending{})

	api := newAPI()
	entries, err := api.GetFileCollaborators(ctx, opts.FileID, models.CollaboratorsOptions{
		IncludeGroups:          true,
		IncludeUploaderCollabs: false,
	})
	api.Destroy()
	if err != nil {
		s.Dispatch(action.FetchCollaboratorsRejected{Error: models.SerializeError(err)})
		return fmt.Errorf("store: fetch collaborators: %w", err)
	}

	s.Dispatch(action.FetchCollaboratorsFulfilled{Entries: entries})
	return nil
}
