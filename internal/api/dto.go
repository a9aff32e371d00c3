package api

import (
	"github.com/starford/vellum/internal/index"
	"github.com/starford/vellum/internal/models"
	"github.com/starford/vellum/internal/storage"
)

// CreateAnnotationRequest is the request body for creating an annotation.
type CreateAnnotationRequest = models.NewAnnotation

// AnnotationListResponse is one page of annotations.
type AnnotationListResponse = models.AnnotationPage

// ErrorResponse is the body of every error reply.
type ErrorResponse = models.APIError

// CollaboratorsResponse wraps a collaborators listing.
type CollaboratorsResponse struct {
	Entries []models.Collaborator `json:"entries" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// ImportListResponse lists the batch files in the inbox.
type ImportListResponse struct {
	Entries []storage.FileMeta `json:"entries" validate:"required"`
}

// ImportUploadResponse is returned after a batch file has been imported.
type ImportUploadResponse struct {
	Filename    string `json:"filename" example:"review.yaml" validate:"required"`
	Size        int    `json:"size" example:"512" validate:"required"`
	Annotations int    `json:"annotations" example:"3" validate:"required"`
}
