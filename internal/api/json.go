package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/vellum/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// Error codes carried in the error body.
const (
	codeBadRequest   = "bad_request"
	codeUnauthorized = "unauthorized"
	codeForbidden    = "forbidden"
	codeNotFound     = "not_found"
	codeConflict     = "conflict"
	codeInternal     = "internal_error"
)

// writeError writes the standard error body, tagged with the request id when
// the RequestID middleware is installed.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	reqID := middleware.GetReqID(r.Context())
	if reqID != "" {
		w.Header().Set("X-Request-Id", reqID)
	}
	writeJSON(w, status, models.APIError{
		Type:      "error",
		Code:      code,
		Message:   msg,
		Status:    status,
		RequestID: reqID,
	})
}
