// Package blobtest provides a shared test suite for blob.Store implementations.
package blobtest

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/glamsite/glamsite/internal/port/blob"
)

// RunComplianceTests runs the standard compliance test suite against any
// writable blob.Store implementation.
func RunComplianceTests(t *testing.T, s blob.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("Writable", func(t *testing.T) {
		if !s.Writable() {
			t.Fatal("expected store under test to be writable")
		}
	})

	t.Run("PutAndGet", func(t *testing.T) {
		if err := s.Put(ctx, "content/compliance.json", []byte(`{"a":1}`)); err != nil {
			t.Fatal(err)
		}
		val, found, err := s.Get(ctx, "content/compliance.json")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after Put")
		}
		if string(val) != `{"a":1}` {
			t.Fatalf("expected {\"a\":1}, got %s", val)
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		_, found, err := s.Get(ctx, "content/never-written.json")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss for key never written")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = s.Put(ctx, "content/ow.json", []byte(`{"v":1,"only_in_first":true}`))
		_ = s.Put(ctx, "content/ow.json", []byte(`{"v":2}`))
		val, found, err := s.Get(ctx, "content/ow.json")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after overwrite")
		}
		if string(val) != `{"v":2}` {
			t.Fatalf("expected second value verbatim, got %s", val)
		}
	})

	t.Run("ConcurrentPutsLeaveOneWholeValue", func(t *testing.T) {
		values := [][]byte{
			[]byte(`{"writer":"a","padding":"aaaaaaaaaaaaaaaa"}`),
			[]byte(`{"writer":"b","padding":"bbbbbbbbbbbbbbbb"}`),
		}
		var wg sync.WaitGroup
		for _, v := range values {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.Put(ctx, "content/race.json", v)
			}()
		}
		wg.Wait()

		got, found, err := s.Get(ctx, "content/race.json")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after concurrent puts")
		}
		if !bytes.Equal(got, values[0]) && !bytes.Equal(got, values[1]) {
			t.Fatalf("expected one writer's value verbatim, got %s", got)
		}
	})
}
