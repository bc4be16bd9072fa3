package http

import (
	"net/http"

	"github.com/glamsite/glamsite/internal/middleware"
)

// ListSections handles GET /api/content
func (h *Handlers) ListSections(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sections": h.Content.Sections()})
}

// GetContent handles GET /api/content/{section}
func (h *Handlers) GetContent(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Content.Read(r.Context(), urlParam(r, "section"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeRawJSON(w, http.StatusOK, doc)
}

// PutContent handles PUT /api/content/{section}
func (h *Handlers) PutContent(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r, h.MaxBody)
	if !ok {
		return
	}

	token := middleware.SessionToken(r, h.Cookie.Name)
	doc, err := h.Content.Write(r.Context(), urlParam(r, "section"), body, token)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeRawJSON(w, http.StatusOK, doc)
}

// ContentOptions handles OPTIONS /api/content/{section}
func (h *Handlers) ContentOptions(w http.ResponseWriter, _ *http.Request) {
	writeRawJSON(w, http.StatusOK, []byte(`{}`))
}
