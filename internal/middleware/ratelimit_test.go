package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func doFrom(h http.Handler, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", http.NoBody)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(1, 5)
	handler := rl.Handler(okHandler())

	for i := range 5 {
		if rec := doFrom(handler, "192.168.1.1:5000"); rec.Code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimiterRejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(0.2, 3)
	handler := rl.Handler(okHandler())

	for range 3 {
		doFrom(handler, "192.168.1.1:5000")
	}
	rec := doFrom(handler, "192.168.1.1:5000")

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "5" {
		t.Errorf("expected Retry-After 5, got %q", got)
	}
	if rec.Body.String() != `{"error":"Too many requests"}` {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	handler := rl.Handler(okHandler())

	if rec := doFrom(handler, "10.0.0.1:1"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := doFrom(handler, "10.0.0.1:1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	now = now.Add(time.Second)
	if rec := doFrom(handler, "10.0.0.1:1"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after refill, got %d", rec.Code)
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(0.1, 2)
	handler := rl.Handler(okHandler())

	for range 2 {
		doFrom(handler, "10.0.0.1:1")
	}
	if rec := doFrom(handler, "10.0.0.1:2"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("IP 10.0.0.1: expected 429, got %d", rec.Code)
	}
	if rec := doFrom(handler, "10.0.0.2:1"); rec.Code != http.StatusOK {
		t.Errorf("IP 10.0.0.2: expected 200, got %d", rec.Code)
	}
}

func TestRateLimiterEvictIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	handler := rl.Handler(okHandler())

	doFrom(handler, "10.0.0.1:1")
	now = now.Add(time.Minute)
	doFrom(handler, "10.0.0.2:1")

	rl.evictIdle(30 * time.Second)
	if rl.Len() != 1 {
		t.Fatalf("expected 1 tracked client after eviction, got %d", rl.Len())
	}
}

func TestRateLimiterCapacity(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.maxClients = 1
	handler := rl.Handler(okHandler())

	doFrom(handler, "10.0.0.1:1")
	if rec := doFrom(handler, "10.0.0.2:1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 at capacity, got %d", rec.Code)
	}
}
