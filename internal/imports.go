package internal

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/auth"
	"computer-inventory-api/internal/httpx"
	"computer-inventory-api/internal/logger"
	"computer-inventory-api/pkg/importer"
)

// ImportResponse is the body of a completed or aborted import
type ImportResponse struct {
	Data  importer.ImportSummary `json:"data"`
	Error string                 `json:"error,omitempty"`
	Meta  ImportMeta             `json:"meta"`
}

type ImportMeta struct {
	Timestamp string `json:"timestamp"`
	Filename  string `json:"filename"`
}

// importEntries handles Excel uploads of inventory entries
func (s *Server) importEntries(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.Config.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		httpx.WriteError(w, r, apperr.Validation("", "content-type must be multipart/form-data"))
		return
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteError(w, r, apperr.Validation("file", "file is too large"))
			return
		}
		httpx.WriteError(w, r, apperr.Validation("", "invalid multipart form"))
		return
	}

	opts := importer.ImportOptions{MaxErrors: importer.DefaultMaxErrors}
	if v := r.FormValue("dry_run"); v != "" {
		dryRun, err := strconv.ParseBool(v)
		if err != nil {
			httpx.WriteError(w, r, apperr.Validation("dry_run", "dry_run must be a boolean"))
			return
		}
		opts.DryRun = dryRun
	}
	if v := r.FormValue("max_errors"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httpx.WriteError(w, r, apperr.Validation("max_errors", "max_errors must be a positive number"))
			return
		}
		opts.MaxErrors = n
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, r, apperr.Validation("file", "file is required"))
		return
	}
	defer file.Close()

	if !isXLSX(header) {
		httpx.WriteError(w, r, apperr.Validation("file", "only .xlsx files are accepted"))
		return
	}

	start := time.Now()
	sum, impErr := importer.ImportExcel(r.Context(), s.Inventory, file, opts)
	resp := ImportResponse{
		Data: sum,
		Meta: ImportMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Filename:  header.Filename,
		},
	}

	logger.Log.Infow("inventory import",
		"user_id", auth.UserIDFromContext(r.Context()),
		"filename", header.Filename,
		"dry_run", sum.DryRun,
		"created", sum.Created,
		"updated", sum.Updated,
		"unchanged", sum.Unchanged,
		"errors", sum.Errors,
		"duration", time.Since(start),
		"error", impErr,
	)

	if impErr != nil {
		// partial results are still reported
		resp.Error = impErr.Error()
		httpx.WriteJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// isXLSX checks if the uploaded file is an Excel .xlsx file
func isXLSX(h *multipart.FileHeader) bool {
	return strings.HasSuffix(strings.ToLower(h.Filename), ".xlsx")
}
