package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/glamsite/glamsite/internal/domain"
	"github.com/glamsite/glamsite/internal/logger"
	"github.com/glamsite/glamsite/internal/middleware"
)

type loginRequest struct {
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[loginRequest](w, r, h.MaxBody)
	if !ok {
		return
	}

	sess, err := h.Session.Login(r.Context(), req.Password)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	case errors.Is(err, domain.ErrMisconfigured):
		logger.FromContext(r.Context()).Error("admin login unavailable", "error", err)
		writeError(w, http.StatusInternalServerError, "Admin login not configured")
		return
	case err != nil:
		logger.FromContext(r.Context()).Error("admin login failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	http.SetCookie(w, h.sessionCookie(sess.Token, sess.ExpiresAt))
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, ExpiresAt: &sess.ExpiresAt})
}

// Logout handles POST /api/auth/logout
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Logout(r.Context(), middleware.SessionToken(r, h.Cookie.Name)); err != nil {
		logger.FromContext(r.Context()).Error("session revoke failed", "error", err)
	}
	http.SetCookie(w, h.sessionCookie("", time.Time{}))
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
}

// SessionStatus handles GET /api/auth/session
func (h *Handlers) SessionStatus(w http.ResponseWriter, r *http.Request) {
	ok := h.Session.IsAuthorized(r.Context(), middleware.SessionToken(r, h.Cookie.Name))
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: ok})
}

// sessionCookie builds the session cookie. An empty token clears it.
func (h *Handlers) sessionCookie(token string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		c.MaxAge = -1
	} else {
		c.Expires = expires
	}
	return c
}
