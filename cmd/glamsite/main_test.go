package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	gshttp "github.com/glamsite/glamsite/internal/adapter/http"
	"github.com/glamsite/glamsite/internal/adapter/memblob"
	"github.com/glamsite/glamsite/internal/config"
	"github.com/glamsite/glamsite/internal/middleware"
	"github.com/glamsite/glamsite/internal/service"
)

func newTestRouter(t *testing.T, trustProxy bool) http.Handler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Defaults()
	cfg.Server.TrustProxy = trustProxy
	cfg.Auth.AdminPasswordHash = string(hash)

	sessions := service.NewSessionService(cfg.Auth, nil)
	h := &gshttp.Handlers{
		Content:    service.NewContentService(memblob.New(), sessions),
		Session:    sessions,
		Cookie:     gshttp.CookieConfig{Name: cfg.Auth.CookieName},
		MaxBody:    cfg.Server.MaxBodyBytes,
		BlobDriver: config.BlobDriverMemory,
		Static:     gshttp.NewStaticHandler(""),
	}
	limiter := middleware.NewRateLimiter(0.001, cfg.Rate.Burst)
	return newRouter(&cfg, h, limiter)
}

func TestLoginLimiter_ForwardedFor(t *testing.T) {
	const attempts = 20

	tests := []struct {
		name        string
		trustProxy  bool
		wantReached int
	}{
		{name: "untrusted header is ignored", trustProxy: false, wantReached: 5},
		{name: "trusted proxy keys on forwarded IP", trustProxy: true, wantReached: attempts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, tt.trustProxy)

			reached, limited := 0, 0
			for i := range attempts {
				req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"guess"}`))
				req.RemoteAddr = "203.0.113.7:51000"
				req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, req)

				switch rec.Code {
				case http.StatusUnauthorized:
					reached++
				case http.StatusTooManyRequests:
					limited++
				default:
					t.Fatalf("attempt %d: unexpected status %d: %s", i, rec.Code, rec.Body.String())
				}
			}

			if reached != tt.wantReached {
				t.Errorf("expected %d attempts to reach the password check, got %d", tt.wantReached, reached)
			}
			if reached+limited != attempts {
				t.Errorf("expected %d responses, got %d", attempts, reached+limited)
			}
		})
	}
}
