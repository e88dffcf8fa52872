package internal

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/httpx"
	"computer-inventory-api/internal/logger"
	"computer-inventory-api/internal/models"
	"computer-inventory-api/internal/store"
	"computer-inventory-api/internal/validation"
)

const (
	msgUsernameTaken      = "An account with that username already exists."
	msgInvalidCredentials = "Invalid username or password."
	msgUserNotFound       = "The user was not found."
)

// createUser registers a new account
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	req, err := validation.DecodeRegister(body)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.Config.PasswordCost)
	if err != nil {
		httpx.WriteError(w, r, apperr.Internal(err))
		return
	}

	user := &models.User{
		Username:     *req.Username,
		Name:         *req.Name,
		PasswordHash: string(hash),
	}
	if err := s.DB.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			httpx.WriteError(w, r, apperr.Conflict(msgUsernameTaken))
			return
		}
		httpx.WriteError(w, r, apperr.Internal(err))
		return
	}

	logger.Log.Infow("user registered", "user_id", user.ID, "username", user.Username)
	httpx.WriteJSON(w, http.StatusCreated, user.Redacted())
}

// loginUser verifies credentials and starts a session
func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	req, err := validation.DecodeLogin(body)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	user, err := s.DB.UserByUsername(r.Context(), *req.Username)
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, r, apperr.Validation("", msgInvalidCredentials))
		return
	}
	if err != nil {
		httpx.WriteError(w, r, apperr.Internal(err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*req.Password)); err != nil {
		httpx.WriteError(w, r, apperr.Validation("", msgInvalidCredentials))
		return
	}

	if err := s.Sessions.Login(w, r, user.ID); err != nil {
		httpx.WriteError(w, r, apperr.Internal(err))
		return
	}

	logger.Log.Infow("user logged in", "user_id", user.ID)
	httpx.WriteJSON(w, http.StatusOK, user.Redacted())
}

// logoutUser ends the current session, if any
func (s *Server) logoutUser(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Logout(w, r); err != nil {
		httpx.WriteError(w, r, apperr.Internal(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getUser returns a user by id
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := validation.ParseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	user, err := s.DB.UserByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, r, apperr.NotFound(msgUserNotFound))
		return
	}
	if err != nil {
		httpx.WriteError(w, r, apperr.Internal(err))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user.Redacted())
}
