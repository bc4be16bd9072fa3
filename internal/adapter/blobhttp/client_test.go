package blobhttp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glamsite/glamsite/internal/port/blob/blobtest"
	"github.com/glamsite/glamsite/internal/resilience"
)

// objectServer is an in-memory object store speaking the GET/PUT protocol.
type objectServer struct {
	mu      sync.Mutex
	objects map[string][]byte
	token   string
}

func newObjectServer(token string) *httptest.Server {
	s := &objectServer{objects: make(map[string][]byte), token: token}
	return httptest.NewServer(s)
}

func (s *objectServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		data, ok := s.objects[key]
		s.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	case http.MethodPut:
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}
		data, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.objects[key] = data
		s.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestClient_Compliance(t *testing.T) {
	srv := newObjectServer("secret")
	defer srv.Close()

	blobtest.RunComplianceTests(t, NewClient(srv.URL, "secret", 5*time.Second))
}

func TestClient_GetMissIsNotFound(t *testing.T) {
	srv := newObjectServer("secret")
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	data, found, err := c.Get(context.Background(), "content/home.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || data != nil {
		t.Fatalf("expected miss, got found=%v data=%q", found, data)
	}
}

func TestClient_GetSendsNoStore(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Cache-Control")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "", 5*time.Second)
	if _, _, err := c.Get(context.Background(), "content/home.json"); err != nil {
		t.Fatal(err)
	}
	if got != "no-store" {
		t.Fatalf("expected Cache-Control no-store, got %q", got)
	}
}

func TestClient_GetServerErrorIsFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	_, found, err := c.Get(context.Background(), "content/home.json")
	if err == nil {
		t.Fatal("expected error for 502")
	}
	if found {
		t.Fatal("expected found=false on error")
	}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected StatusError 502, got %v", err)
	}
}

func TestClient_PutWithoutTokenFails(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	if c.Writable() {
		t.Fatal("expected client without token to be read-only")
	}
	err := c.Put(context.Background(), "content/home.json", []byte(`{}`))
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
	if called {
		t.Fatal("expected no request without a token")
	}
}

func TestClient_PutSendsHeaders(t *testing.T) {
	var auth, ctype, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		ctype = r.Header.Get("Content-Type")
		method = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 5*time.Second)
	if err := c.Put(context.Background(), "content/about.json", []byte(`{"about":{}}`)); err != nil {
		t.Fatal(err)
	}
	if method != http.MethodPut {
		t.Errorf("expected PUT, got %s", method)
	}
	if auth != "Bearer tok" {
		t.Errorf("expected bearer token, got %q", auth)
	}
	if ctype != "application/json" {
		t.Errorf("expected application/json, got %q", ctype)
	}
}

func TestClient_PutRejectedCarriesBackendDetail(t *testing.T) {
	srv := newObjectServer("right")
	defer srv.Close()

	c := NewClient(srv.URL, "wrong", 5*time.Second)
	err := c.Put(context.Background(), "content/home.json", []byte(`{}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "invalid token" {
		t.Fatalf("expected backend detail, got %q", err.Error())
	}
}

func TestStatusError_EmptyBody(t *testing.T) {
	err := &StatusError{Method: http.MethodPut, StatusCode: 500}
	if err.Error() != "blob put: status 500" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 5*time.Second)
	b := resilience.NewBreaker(2, time.Minute)
	c.SetBreaker(b)

	for range 3 {
		_ = c.Put(context.Background(), "content/home.json", []byte(`{}`))
	}
	if hits != 2 {
		t.Fatalf("expected 2 requests before the circuit opened, got %d", hits)
	}
	if b.State() != resilience.StateOpen {
		t.Fatalf("expected open breaker, got %s", b.State())
	}
}

func TestClient_TokenSourceRotation(t *testing.T) {
	srv := newObjectServer("second")
	defer srv.Close()

	current := "first"
	c := NewClient(srv.URL, "", 5*time.Second)
	c.SetTokenSource(func() string { return current })

	if err := c.Put(context.Background(), "content/home.json", []byte(`{}`)); err == nil {
		t.Fatal("expected rejection with the stale token")
	}
	current = "second"
	if err := c.Put(context.Background(), "content/home.json", []byte(`{}`)); err != nil {
		t.Fatalf("expected rotated token to be used: %v", err)
	}
}
