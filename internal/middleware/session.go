package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/glamsite/glamsite/internal/logger"
)

// Authorizer validates an admin session token.
type Authorizer interface {
	IsAuthorized(ctx context.Context, token string) bool
}

// SessionToken returns the session token carried by r: the named cookie
// first, then an "Authorization: Bearer" header. Empty when neither is set.
func SessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// DashboardGate redirects requests without a valid session cookie to
// loginPath. Authorized requests pass through unmodified. Only the cookie is
// consulted; bearer headers are for the API.
func DashboardGate(gate Authorizer, cookieName, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(cookieName); err == nil {
				token = c.Value
			}
			if !gate.IsAuthorized(r.Context(), token) {
				logger.FromContext(r.Context()).Info("dashboard access denied", "path", r.URL.Path)
				http.Redirect(w, r, loginPath, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
