package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vellum/internal/apperr"
	"github.com/starford/vellum/internal/models"
	"github.com/starford/vellum/internal/service"
)

const (
	maxBodyBytes   = 10 << 20 // 10 MB
	maxUploadBytes = 10 << 20
)

// Handler holds API route handlers.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// writeServiceError maps service errors onto HTTP replies.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, r, http.StatusNotFound, codeNotFound, "not found")
	case errors.Is(err, apperr.ErrInvalid):
		writeError(w, r, http.StatusBadRequest, codeBadRequest, err.Error())
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, codeConflict, "already exists")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(w, r, http.StatusForbidden, codeForbidden, "forbidden")
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

// ListAnnotations handles GET /files/{fileID}/annotations.
//
//	@Summary		List annotations of a file version
//	@Tags			annotations
//	@Produce		json
//	@Param			fileID		path		string	true	"File ID"
//	@Param			version_id	query		string	false	"File version ID"
//	@Param			limit		query		int		false	"Page size"
//	@Param			marker		query		string	false	"next_marker of the previous page"
//	@Success		200			{object}	AnnotationListResponse
//	@Failure		400			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/files/{fileID}/annotations [get]
func (h *Handler) ListAnnotations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, err := h.svc.ListAnnotations(r.Context(), chi.URLParam(r, "fileID"), q.Get("version_id"), limit, q.Get("marker"))
	if err != nil {
		writeServiceError(w, r, "list annotations", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreateAnnotation handles POST /files/{fileID}/annotations.
//
//	@Summary		Create an annotation
//	@Tags			annotations
//	@Accept			json
//	@Produce		json
//	@Param			fileID	path		string					true	"File ID"
//	@Param			body	body		CreateAnnotationRequest	true	"Annotation to create"
//	@Success		201		{object}	models.Annotation
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/files/{fileID}/annotations [post]
func (h *Handler) CreateAnnotation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateAnnotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	a, err := h.svc.CreateAnnotation(r.Context(), chi.URLParam(r, "fileID"), requestUser(r), req)
	if err != nil {
		writeServiceError(w, r, "create annotation", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// GetAnnotation handles GET /annotations/{id}.
//
//	@Summary		Get a single annotation
//	@Tags			annotations
//	@Produce		json
//	@Param			id	path		string	true	"Annotation ID"
//	@Success		200	{object}	models.Annotation
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/annotations/{id} [get]
func (h *Handler) GetAnnotation(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetAnnotation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, "get annotation", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DeleteAnnotation handles DELETE /annotations/{id}.
//
//	@Summary		Delete an annotation
//	@Tags			annotations
//	@Param			id	path	string	true	"Annotation ID"
//	@Success		204	"Annotation deleted"
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/annotations/{id} [delete]
func (h *Handler) DeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAnnotation(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, "delete annotation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCollaborators handles GET /files/{fileID}/collaborators.
//
//	@Summary		List the collaborators of a file
//	@Tags			collaborators
//	@Produce		json
//	@Param			fileID						path		string	true	"File ID"
//	@Param			include_groups				query		bool	false	"Include groups"
//	@Param			include_uploader_collabs	query		bool	false	"Include the uploader"
//	@Success		200							{object}	CollaboratorsResponse
//	@Security		BearerAuth
//	@Router			/files/{fileID}/collaborators [get]
func (h *Handler) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := models.CollaboratorsOptions{}
	opts.IncludeGroups, _ = strconv.ParseBool(q.Get("include_groups"))
	opts.IncludeUploaderCollabs, _ = strconv.ParseBool(q.Get("include_uploader_collabs"))

	entries, err := h.svc.ListCollaborators(r.Context(), chi.URLParam(r, "fileID"), opts)
	if err != nil {
		writeServiceError(w, r, "list collaborators", err)
		return
	}
	writeJSON(w, http.StatusOK, CollaboratorsResponse{Entries: entries})
}

// AddCollaborator handles POST /files/{fileID}/collaborators.
//
//	@Summary		Add or update a collaborator
//	@Tags			collaborators
//	@Accept			json
//	@Produce		json
//	@Param			fileID	path		string				true	"File ID"
//	@Param			body	body		models.Collaborator	true	"Collaborator"
//	@Success		201		{object}	models.Collaborator
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/files/{fileID}/collaborators [post]
func (h *Handler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var c models.Collaborator
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, "invalid JSON body")
		return
	}
	if err := h.svc.AddCollaborator(r.Context(), chi.URLParam(r, "fileID"), c); err != nil {
		writeServiceError(w, r, "add collaborator", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Search handles GET /search.
//
//	@Summary		Search annotation messages
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// ListImports handles GET /imports.
//
//	@Summary		List batch files in the inbox
//	@Tags			imports
//	@Produce		json
//	@Success		200	{object}	ImportListResponse
//	@Security		BearerAuth
//	@Router			/imports [get]
func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	metas, err := h.svc.ListImports(r.Context())
	if err != nil {
		writeServiceError(w, r, "list imports", err)
		return
	}
	writeJSON(w, http.StatusOK, ImportListResponse{Entries: metas})
}

// UploadImport handles POST /imports (multipart/form-data, field "file").
//
//	@Summary		Upload and import an annotation batch file
//	@Tags			imports
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"YAML or JSON batch"
//	@Success		201		{object}	ImportUploadResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/imports [post]
func (h *Handler) UploadImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, "file too large or invalid multipart")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, "missing 'file' field in multipart form")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, "failed to read file")
		return
	}

	n, err := h.svc.ImportBatch(r.Context(), header.Filename, data)
	if err != nil {
		writeServiceError(w, r, "import batch", err)
		return
	}
	writeJSON(w, http.StatusCreated, ImportUploadResponse{
		Filename:    header.Filename,
		Size:        len(data),
		Annotations: n,
	})
}

// DeleteImport handles DELETE /imports/{name}.
//
//	@Summary		Remove a batch file and its annotations
//	@Tags			imports
//	@Param			name	path	string	true	"Batch file name"
//	@Success		204		"Import removed"
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/imports/{name} [delete]
func (h *Handler) DeleteImport(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteImport(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeServiceError(w, r, "delete import", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
