package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/glamsite/glamsite/internal/middleware"
)

// LoginPath is where the dashboard gate sends callers without a session.
const LoginPath = "/login"

// MountRoutes registers all routes on the given chi router. login throttles
// password attempts.
func MountRoutes(r chi.Router, h *Handlers, login *middleware.RateLimiter) {
	r.Get("/health", h.Health)

	r.Route("/api/content", func(r chi.Router) {
		r.Use(ContentHeaders)
		r.Get("/", h.ListSections)
		r.Get("/{section}", h.GetContent)
		r.Put("/{section}", h.PutContent)
		r.Options("/{section}", h.ContentOptions)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(login.Handler).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/session", h.SessionStatus)
	})

	gate := middleware.DashboardGate(h.Session, h.Cookie.Name, LoginPath)
	r.With(gate).Handle("/dashboard", h.Static)
	r.With(gate).Handle("/dashboard/*", h.Static)
	r.Handle(LoginPath, h.Static)
	r.Handle(LoginPath+"/*", h.Static)
}
