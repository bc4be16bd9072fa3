package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Closer allows flushing and stopping the async handler.
type Closer interface {
	Close()
}

type nopCloser struct{}

func (nopCloser) Close() {}

// AsyncHandler moves record formatting and I/O off the request path.
// Records are queued on a bounded channel and drained by worker goroutines;
// when the queue is full the record is dropped and counted.
type AsyncHandler struct {
	inner slog.Handler
	queue *asyncQueue
}

type asyncQueue struct {
	ch      chan slog.Record
	wg      sync.WaitGroup
	dropped atomic.Int64
	once    sync.Once
}

// NewAsyncHandler creates an AsyncHandler with the given queue capacity and worker count.
func NewAsyncHandler(inner slog.Handler, queueSize, workers int) *AsyncHandler {
	q := &asyncQueue{ch: make(chan slog.Record, queueSize)}
	h := &AsyncHandler{inner: inner, queue: q}
	for range workers {
		q.wg.Add(1)
		go h.drain()
	}
	return h
}

func (h *AsyncHandler) drain() {
	defer h.queue.wg.Done()
	for rec := range h.queue.ch {
		_ = h.inner.Handle(context.Background(), rec)
	}
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record, dropping it if the queue is full.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.queue.ch <- rec.Clone():
	default:
		h.queue.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a handler sharing the same queue around a derived inner handler.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithAttrs(attrs), queue: h.queue}
}

// WithGroup returns a handler sharing the same queue around a derived inner handler.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithGroup(name), queue: h.queue}
}

// DroppedCount returns the number of dropped records.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.queue.dropped.Load()
}

// Close drains the queue and stops the workers. If any records were
// dropped, a final warning reporting the count is written synchronously.
// Safe to call more than once.
func (h *AsyncHandler) Close() {
	h.queue.once.Do(func() {
		close(h.queue.ch)
		h.queue.wg.Wait()
		if n := h.DroppedCount(); n > 0 {
			rec := slog.NewRecord(time.Now(), slog.LevelWarn, "async log records dropped", 0)
			rec.AddAttrs(slog.Int64("dropped", n))
			_ = h.inner.Handle(context.Background(), rec)
		}
	})
}
