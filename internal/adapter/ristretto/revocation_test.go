package ristretto

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

func newTestList(t *testing.T) *RevocationList {
	t.Helper()
	r, err := New(1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func TestRevocationList_RevokeAndCheck(t *testing.T) {
	r := newTestList(t)
	ctx := context.Background()

	if err := r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	revoked, err := r.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatal(err)
	}
	if !revoked {
		t.Fatal("expected jti-1 to be revoked")
	}

	revoked, _ = r.IsRevoked(ctx, "jti-2")
	if revoked {
		t.Fatal("expected jti-2 not to be revoked")
	}
}

func TestRevocationList_SkipsExpiredAndEmpty(t *testing.T) {
	r := newTestList(t)
	ctx := context.Background()

	_ = r.Revoke(ctx, "old", time.Now().Add(-time.Minute))
	_ = r.Revoke(ctx, "", time.Now().Add(time.Hour))

	if revoked, _ := r.IsRevoked(ctx, "old"); revoked {
		t.Fatal("expected already-expired token not to be recorded")
	}
	if revoked, _ := r.IsRevoked(ctx, ""); revoked {
		t.Fatal("expected empty jti not to be recorded")
	}
}

func TestRevocationList_ReportsDroppedEntry(t *testing.T) {
	// A cache smaller than one entry admits nothing.
	c, err := ristretto.NewCache(&ristretto.Config[string, struct{}]{
		NumCounters: 100,
		MaxCost:     entryCost / 2,
		BufferItems: 64,
	})
	if err != nil {
		t.Fatal(err)
	}
	r := &RevocationList{c: c, now: time.Now}
	t.Cleanup(r.Close)

	err = r.Revoke(context.Background(), "jti-1", time.Now().Add(time.Hour))
	if !errors.Is(err, ErrNotRecorded) {
		t.Fatalf("expected ErrNotRecorded, got %v", err)
	}
}
