package otel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glamsite/glamsite/internal/adapter/memblob"
	"github.com/glamsite/glamsite/internal/config"
	"github.com/glamsite/glamsite/internal/port/blob/blobtest"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.OTEL{Enabled: false})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestNewMetrics_RecordOnNoopProvider(t *testing.T) {
	m, err := NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	ctx := context.Background()
	m.RecordRead(ctx, "home", "absent")
	m.RecordWrite(ctx, "home", "ok")
	m.RecordBlob(ctx, "get", 0.01)
}

func TestMetrics_NilReceiverSafe(t *testing.T) {
	var m *Metrics
	m.RecordRead(context.Background(), "home", "stored")
	m.RecordWrite(context.Background(), "home", "ok")
	m.RecordBlob(context.Background(), "put", 1)
}

func TestInstrumentBlob_Compliance(t *testing.T) {
	m, err := NewMetrics()
	if err != nil {
		t.Fatal(err)
	}
	blobtest.RunComplianceTests(t, InstrumentBlob(memblob.New(), "memory", m))
}

type failingStore struct{}

var errDown = errors.New("down")

func (failingStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDown }
func (failingStore) Put(context.Context, string, []byte) error         { return errDown }
func (failingStore) Writable() bool                                    { return false }

func TestInstrumentBlob_PassesErrorsThrough(t *testing.T) {
	s := InstrumentBlob(failingStore{}, "http", nil)
	ctx := context.Background()
	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, errDown) {
		t.Errorf("Get err = %v, want errDown", err)
	}
	if err := s.Put(ctx, "k", []byte(`{}`)); !errors.Is(err, errDown) {
		t.Errorf("Put err = %v, want errDown", err)
	}
	if s.Writable() {
		t.Error("Writable should delegate")
	}
}

func TestHTTPMiddleware_PassesThrough(t *testing.T) {
	h := HTTPMiddleware("glamsite")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/content/home", http.NoBody))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}
