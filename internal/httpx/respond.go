// Package httpx holds the JSON response helpers shared by the handlers and
// the auth middleware.
package httpx

import (
	"net/http"

	"github.com/goccy/go-json"

	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/logger"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// MessageResponse carries a plain informational message
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	// operator messages such as "must be one of [=, >, <]" stay readable
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		logger.Log.Warnw("encode response", "error", err)
	}
}

// WriteError maps err onto its status code and client-facing message.
// Internal failures are logged with their cause and answered generically.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	if e.Kind == apperr.KindInternal {
		logger.Log.Errorw("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	WriteJSON(w, e.Kind.Status(), ErrorResponse{Message: e.Message, Path: e.Path})
}
