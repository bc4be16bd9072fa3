package http

import (
	"net/http"

	"github.com/glamsite/glamsite/internal/service"
)

// CookieConfig describes the admin session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Handlers holds the services the HTTP surface delegates to.
type Handlers struct {
	Content    *service.ContentService
	Session    *service.SessionService
	Cookie     CookieConfig
	MaxBody    int64
	BlobDriver string
	Static     http.Handler
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"blob_driver": h.BlobDriver,
	})
}
