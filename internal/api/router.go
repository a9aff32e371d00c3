package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vellum/internal/service"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *service.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/files/{fileID}", func(r chi.Router) {
		r.Get("/annotations", h.ListAnnotations)
		r.Post("/annotations", h.CreateAnnotation)
		r.Get("/collaborators", h.ListCollaborators)
		r.Post("/collaborators", h.AddCollaborator)
	})

	r.Get("/annotations/{id}", h.GetAnnotation)
	r.Delete("/annotations/{id}", h.DeleteAnnotation)

	r.Get("/search", h.Search)

	// Inbox batch files.
	r.Get("/imports", h.ListImports)
	r.Post("/imports", h.UploadImport)
	r.Delete("/imports/{name}", h.DeleteImport)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
