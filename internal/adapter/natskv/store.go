// Package natskv implements the blob port on a NATS JetStream KeyValue bucket.
package natskv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Store keeps each blob as one entry in a JetStream KV bucket. Blob keys
// such as "content/home.json" are valid KV keys as-is.
type Store struct {
	nc *nats.Conn
	kv jetstream.KeyValue
}

// New wraps an existing KV bucket. The caller owns the connection.
func New(kv jetstream.KeyValue) *Store {
	return &Store{kv: kv}
}

// Connect establishes a connection to NATS and ensures the KV bucket exists.
func Connect(ctx context.Context, url, bucket string) (*Store, error) {
	nc, err := nats.Connect(url, nats.Name("glamsite"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	// One revision per key: writes are whole replacements and history is never read.
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "glamsite section documents",
		History:     1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream kv bucket %s: %w", bucket, err)
	}

	slog.Info("nats connected", "url", url, "bucket", bucket)
	return &Store{nc: nc, kv: kv}, nil
}

// Get retrieves the value at key. A missing or deleted key is a miss.
func (s *Store) Get(ctx context.Context, key string) (data []byte, found bool, err error) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("nats kv get %s: %w", key, err)
	}
	return entry.Value(), true, nil
}

// Put replaces the value at key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if _, err := s.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("nats kv put %s: %w", key, err)
	}
	return nil
}

// Writable is always true; bucket permissions are enforced by the server.
func (s *Store) Writable() bool { return true }

// Close drains and shuts down the NATS connection when Store owns it.
func (s *Store) Close() error {
	if s.nc == nil {
		return nil
	}
	return s.nc.Drain()
}
