package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/httpx"
	"computer-inventory-api/internal/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims of bearer requests
	ClaimsKey contextKey = "claims"
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey contextKey = "userID"
)

// ClaimsFromContext extracts the JWT claims from the request context.
// Session-authenticated requests carry no claims.
func ClaimsFromContext(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*Claims); ok {
		return claims
	}
	return nil
}

// UserIDFromContext extracts the user ID from the request context
func UserIDFromContext(ctx context.Context) int64 {
	if v := ctx.Value(UserIDKey); v != nil {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// WithUserID returns ctx carrying the authenticated user ID
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

// sendTokenExpirationWarning adds a warning header when token expires soon
func sendTokenExpirationWarning(w http.ResponseWriter, claims *Claims) {
	if claims.ExpiresAt == nil || !claims.IsExpiringSoon(time.Hour) {
		return
	}
	if timeUntilExpiry := time.Until(claims.ExpiresAt.Time); timeUntilExpiry > 0 {
		w.Header().Set("X-Token-Expires-At", claims.ExpiresAt.Time.Format(time.RFC3339))
		w.Header().Set("X-Token-Expires-In", timeUntilExpiry.String())
	}
}

// validateTokenFormat performs basic token format validation
func validateTokenFormat(tokenString string) error {
	if len(tokenString) == 0 {
		return errors.New("token cannot be empty")
	}
	if len(tokenString) > 8192 { // 8KB limit
		return errors.New("token size exceeds maximum allowed")
	}
	// Basic JWT format validation (3 parts separated by dots)
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return errors.New("invalid JWT token format")
	}
	return nil
}

// Authenticator gates routes behind a session or a bearer token
type Authenticator struct {
	sessions *SessionManager
	jwt      *JWTManager
}

// NewAuthenticator builds the gate. jwtManager may be nil to disable bearer tokens.
func NewAuthenticator(sm *SessionManager, jwtManager *JWTManager) *Authenticator {
	return &Authenticator{sessions: sm, jwt: jwtManager}
}

// RequireLogin rejects requests without a valid session or bearer token
// with the fixed unauthenticated message
func (a *Authenticator) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			a.serveBearer(w, r, next, authHeader)
			return
		}

		userID, ok := a.sessions.UserID(r)
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthenticated())
			return
		}
		if err := a.sessions.Refresh(w, r); err != nil {
			logger.Log.Warnw("session refresh failed", "user_id", userID, "error", err)
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func (a *Authenticator) serveBearer(w http.ResponseWriter, r *http.Request, next http.Handler, authHeader string) {
	if a.jwt == nil || !strings.HasPrefix(authHeader, "Bearer ") {
		httpx.WriteError(w, r, apperr.Unauthenticated())
		return
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if err := validateTokenFormat(tokenString); err != nil {
		logger.Log.Debugw("rejected bearer token", "error", err)
		httpx.WriteError(w, r, apperr.Unauthenticated())
		return
	}

	claims, err := a.jwt.ValidateToken(tokenString)
	if err != nil || claims.UserID <= 0 {
		logger.Log.Debugw("rejected bearer token", "error", err)
		httpx.WriteError(w, r, apperr.Unauthenticated())
		return
	}

	ctx := context.WithValue(r.Context(), ClaimsKey, claims)
	ctx = WithUserID(ctx, claims.UserID)
	sendTokenExpirationWarning(w, claims)

	next.ServeHTTP(w, r.WithContext(ctx))
}
