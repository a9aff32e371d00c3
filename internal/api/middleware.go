// Package api implements the Vellum annotation REST API using chi.
package api

import (
	"net/http"
	"strings"

	"github.com/starford/vellum/internal/models"
)

// Headers identifying the caller. Authentication proves access to the
// service; these only attribute authorship.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserName = "X-User-Name"
)

// AuthMiddleware returns middleware that validates a Bearer token.
// If enabled is false, all requests pass through (disabled mode).
// If enabled is true, requests must carry a valid "Authorization: Bearer <token>" header.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				writeError(w, r, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestUser builds the author of a write from the caller headers.
func requestUser(r *http.Request) models.User {
	id := strings.TrimSpace(r.Header.Get(HeaderUserID))
	name := strings.TrimSpace(r.Header.Get(HeaderUserName))
	if id == "" {
		id = "anonymous"
	}
	if name == "" {
		name = id
	}
	return models.User{ID: id, Name: name, Type: models.CollaboratorUser}
}
