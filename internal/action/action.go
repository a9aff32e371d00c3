// Package action declares the actions that more than one store slice reacts
// to. Slice-local actions live next to their reducers.
package action

import "github.com/starford/vellum/internal/models"

// Action is anything that can be dispatched to the store. Type returns a
// stable "slice/name" identifier used in logs.
type Action interface {
	Type() string
}

// CreateAnnotationPending is dispatched when a create request starts.
type CreateAnnotationPending struct {
	Arg models.NewAnnotation
}

// CreateAnnotationFulfilled carries the annotation the service persisted.
type CreateAnnotationFulfilled struct {
	Arg        models.NewAnnotation
	Annotation models.Annotation
}

// CreateAnnotationRejected carries the reason a create request failed.
type CreateAnnotationRejected struct {
	Arg   models.NewAnnotation
	Error *models.ErrorInfo
}

// FetchAnnotationsPending is dispatched when a listing starts.
type FetchAnnotationsPending struct{}

// FetchAnnotationsFulfilled carries a page (or all pages) of annotations.
type FetchAnnotationsFulfilled struct {
	Page models.AnnotationPage
}

// FetchAnnotationsRejected carries the reason a listing failed.
type FetchAnnotationsRejected struct {
	Error *models.ErrorInfo
}

// FetchCollaboratorsPending is dispatched when a collaborators request starts.
type FetchCollaboratorsPending struct{}

// FetchCollaboratorsFulfilled carries the file collaborators.
type FetchCollaboratorsFulfilled struct {
	Entries []models.Collaborator
}

// FetchCollaboratorsRejected carries the reason a collaborators request failed.
type FetchCollaboratorsRejected struct {
	Error *models.ErrorInfo
}

// RemoveAnnotation drops an annotation from the store.
type RemoveAnnotation struct {
	ID string
}

// ResetCreator cancels creation and any promotion in progress.
type ResetCreator struct{}

// SetIsPromoting toggles promotion mode.
type SetIsPromoting struct {
	IsPromoting bool
}

func (CreateAnnotationPending) Type() string     { return "annotations/createAnnotation/pending" }
func (CreateAnnotationFulfilled) Type() string   { return "annotations/createAnnotation/fulfilled" }
func (CreateAnnotationRejected) Type() string    { return "annotations/createAnnotation/rejected" }
func (FetchAnnotationsPending) Type() string     { return "annotations/fetchAnnotations/pending" }
func (FetchAnnotationsFulfilled) Type() string   { return "annotations/fetchAnnotations/fulfilled" }
func (FetchAnnotationsRejected) Type() string    { return "annotations/fetchAnnotations/rejected" }
func (FetchCollaboratorsPending) Type() string   { return "users/fetchCollaborators/pending" }
func (FetchCollaboratorsFulfilled) Type() string { return "users/fetchCollaborators/fulfilled" }
func (FetchCollaboratorsRejected) Type() string  { return "users/fetchCollaborators/rejected" }
func (RemoveAnnotation) Type() string            { return "annotations/removeAnnotation" }
func (ResetCreator) Type() string                { return "creator/resetCreator" }
func (SetIsPromoting) Type() string              { return "promoter/setIsPromoting" }
