package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/glamsite/glamsite/internal/domain"
	"github.com/glamsite/glamsite/internal/logger"
)

// Client-facing error messages.
const (
	msgSectionNotFound  = "Section not found"
	msgUnauthorized     = "Unauthorized"
	msgBlobUnconfigured = "Blob token not configured"
	msgInvalidJSON      = "Invalid JSON"
	msgBodyTooLarge     = "Request body too large"
	msgInternal         = "Internal server error"
)

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

// readBody reads the raw request body with a size limit. On failure it has
// already written the error response.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		} else {
			writeError(w, http.StatusBadRequest, msgInvalidJSON)
		}
		return nil, false
	}
	return data, true
}

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request, limit int64) (T, bool) {
	var v T
	data, ok := readBody(w, r, limit)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return v, false
	}
	return v, true
}

// urlParam is a short alias for chi.URLParam.
func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// writeRawJSON writes an already-encoded JSON document unchanged.
func writeRawJSON(w http.ResponseWriter, status int, doc []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(doc)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps a domain sentinel to its HTTP status and message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, msgSectionNotFound)
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, domain.ErrMisconfigured):
		writeError(w, http.StatusInternalServerError, msgBlobUnconfigured)
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  msgInvalidJSON,
			Detail: strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": "),
		})
	case errors.Is(err, domain.ErrUpstreamWrite):
		writeError(w, http.StatusInternalServerError, strings.TrimPrefix(err.Error(), domain.ErrUpstreamWrite.Error()+": "))
	default:
		logger.FromContext(r.Context()).Error("unhandled domain error", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
