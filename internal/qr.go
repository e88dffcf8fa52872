package internal

import (
	"net/http"
	"strconv"

	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/httpx"
	"computer-inventory-api/internal/logger"
	"computer-inventory-api/internal/qr"
	"computer-inventory-api/internal/validation"
)

// renderQR turns an agent payload into a QR code PNG of the canonical label
func (s *Server) renderQR(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	obj, err := validation.DecodeObject(body, "")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	payload, err := obj.String("payload")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if payload == nil {
		httpx.WriteError(w, r, apperr.Validation("payload", "payload is required"))
		return
	}
	if err := obj.Only("payload"); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	label, err := qr.Parse(*payload, "payload")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	png, err := label.Render()
	if err != nil {
		httpx.WriteError(w, r, apperr.Internal(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		logger.Log.Warnw("write qr image", "error", err)
	}
}
