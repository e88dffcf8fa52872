package internal

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"computer-inventory-api/internal/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// RequestIDKey is the context key for the request id
const RequestIDKey contextKey = "requestID"

// RequestIDFromContext returns the id assigned by RequestLogger, or ""
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestLogger assigns each request an id (reusing a well-formed
// X-Request-ID from the client) and logs it once it completes
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.New().String()
		}

		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		w.Header().Set("X-Request-ID", reqID)
		r = r.WithContext(context.WithValue(r.Context(), RequestIDKey, reqID))

		next.ServeHTTP(rw, r)

		logger.Log.Infow("request",
			"request_id", reqID,
			"method", r.Method,
			"uri", r.RequestURI,
			"status", rw.code,
			"response_size", rw.size,
			"duration", time.Since(start),
		)
	})
}
