package internal

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/auth"
	"computer-inventory-api/internal/config"
	"computer-inventory-api/internal/httpx"
	"computer-inventory-api/internal/inventory"
	"computer-inventory-api/internal/logger"
	"computer-inventory-api/internal/store"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

type Server struct {
	Config     *config.Config
	DB         *store.DB
	Router     *chi.Mux
	Sessions   *auth.SessionManager
	JWTManager *auth.JWTManager
	Metrics    *Metrics
	Inventory  *inventory.Service
}

// NewServer wires the routes around already opened stores. The caller owns
// db and the session backend and closes them on shutdown.
func NewServer(cfg *config.Config, db *store.DB, sm *auth.SessionManager) *Server {
	metrics := NewMetrics()

	var jwtManager *auth.JWTManager
	if cfg.JWT.Secret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Expiry)
	}

	s := &Server{
		Config:     cfg,
		DB:         db,
		Router:     chi.NewRouter(),
		Sessions:   sm,
		JWTManager: jwtManager,
		Metrics:    metrics,
		Inventory:  inventory.NewService(db, inventory.WithRecorder(metrics)),
	}

	s.Router.Use(middleware.Recoverer)
	s.Router.Use(RequestLogger)
	if cfg.EnableMetrics {
		s.Router.Use(s.Metrics.Middleware())
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	// public routes
	s.Router.Post("/users", s.createUser)
	s.Router.Post("/users/login", s.loginUser)
	s.Router.Post("/users/logout", s.logoutUser)
	s.Router.Post("/qr", s.renderQR)

	authn := auth.NewAuthenticator(sm, jwtManager)
	s.Router.Group(func(r chi.Router) {
		r.Use(authn.RequireLogin)
		s.mountProtectedRoutes(r)
	})

	s.Router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, apperr.NotFound("The route was not found."))
	})

	return s
}

func (s *Server) mountProtectedRoutes(r chi.Router) {
	r.Get("/users/{id}", s.getUser)

	r.Post("/inventory", s.upsertEntry)
	r.Post("/inventory/search", s.searchEntries)
	r.Post("/inventory/import", s.importEntries)
	r.Get("/inventory/{id}", s.getEntry)
}

// Close releases the database handle
func (s *Server) Close(ctx context.Context) error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// readBody reads a bounded JSON request body
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation("", "request body is too large")
		}
		logger.Log.Debugw("read request body", "error", err)
		return nil, apperr.Validation("", "request body could not be read")
	}
	return body, nil
}
