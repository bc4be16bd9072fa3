package otel

import (
	"context"
	"time"

	"github.com/glamsite/glamsite/internal/port/blob"
)

// instrumentedStore decorates a blob.Store with spans and latency metrics.
type instrumentedStore struct {
	next    blob.Store
	driver  string
	metrics *Metrics
}

// InstrumentBlob wraps store so every round trip is traced and timed.
func InstrumentBlob(store blob.Store, driver string, m *Metrics) blob.Store {
	return &instrumentedStore{next: store, driver: driver, metrics: m}
}

func (s *instrumentedStore) Get(ctx context.Context, key string) (data []byte, found bool, err error) {
	ctx, span := StartBlobSpan(ctx, "get", s.driver, key)
	start := time.Now()
	data, found, err = s.next.Get(ctx, key)
	s.metrics.RecordBlob(ctx, "get", time.Since(start).Seconds())
	EndSpan(span, err)
	return data, found, err
}

func (s *instrumentedStore) Put(ctx context.Context, key string, data []byte) error {
	ctx, span := StartBlobSpan(ctx, "put", s.driver, key)
	start := time.Now()
	err := s.next.Put(ctx, key, data)
	s.metrics.RecordBlob(ctx, "put", time.Since(start).Seconds())
	EndSpan(span, err)
	return err
}

func (s *instrumentedStore) Writable() bool { return s.next.Writable() }
