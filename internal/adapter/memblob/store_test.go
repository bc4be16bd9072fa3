package memblob_test

import (
	"context"
	"testing"

	"github.com/glamsite/glamsite/internal/adapter/memblob"
	"github.com/glamsite/glamsite/internal/port/blob/blobtest"
)

func TestStore_Compliance(t *testing.T) {
	blobtest.RunComplianceTests(t, memblob.New())
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := memblob.New()
	ctx := context.Background()
	_ = s.Put(ctx, "k", []byte(`{"a":1}`))

	v, _, _ := s.Get(ctx, "k")
	v[0] = 'X'

	again, _, _ := s.Get(ctx, "k")
	if string(again) != `{"a":1}` {
		t.Fatalf("stored value mutated through Get result: %s", again)
	}
}
