package internal

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"computer-inventory-api/internal/auth"
	"computer-inventory-api/internal/httpx"
	"computer-inventory-api/internal/inventory"
	"computer-inventory-api/internal/logger"
	"computer-inventory-api/internal/query"
	"computer-inventory-api/internal/validation"
)

// upsertEntry creates an entry or updates the one with the same number
func (s *Server) upsertEntry(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	entry, err := validation.DecodeEntry(body)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	res, err := s.Inventory.Upsert(r.Context(), entry)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	logger.Log.Infow("inventory upsert",
		"user_id", auth.UserIDFromContext(r.Context()),
		"number", res.Entry.Number,
		"result", res.Outcome,
		"changes", len(res.Changes),
	)

	if res.Outcome == inventory.Created {
		httpx.WriteJSON(w, http.StatusCreated, res.Entry)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.MessageResponse{Message: res.Message()})
}

// getEntry returns an entry by id
func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := validation.ParseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	entry, err := s.Inventory.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entry)
}

// searchEntries returns one page of entries matching the body filters
func (s *Server) searchEntries(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	spec, err := query.ParseSpec(body)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	entries, err := s.Inventory.Search(r.Context(), spec)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}
