package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"viewportd/internal/lazy"
	"viewportd/internal/pool"
	"viewportd/internal/scheduler"
	"viewportd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeServiceError maps well-known component errors to HTTP status codes
// and writes the JSON error payload.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case scheduler.IsSessionNotFound(err),
		lazy.IsViewportNotFound(err),
		pool.IsSlotNotFound(err):
		status = http.StatusNotFound
	case scheduler.IsSessionExists(err):
		status = http.StatusConflict
	case scheduler.IsInvalidRequest(err), pool.IsNotInUse(err):
		status = http.StatusBadRequest
	case lazy.IsActivationTimeout(err):
		status = http.StatusGatewayTimeout
	default:
		if he, ok := err.(HTTPError); ok {
			status = he.StatusCode()
		}
	}
	writeJSONError(w, status, err.Error())

	if zlog != nil {
		z := zlog.Info().Str("path", r.URL.Path).Int("status", status)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		z.Err(err).Msg("request failed")
	}
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
