// Package blob defines the port interface for the networked object store
// that holds section documents.
package blob

import "context"

// Store is the port interface for a key-addressed blob store.
//
// Get returns found=false with a nil error when the key holds no value.
// Put stores data as the complete value for key; it is all-or-nothing and
// the last completed Put wins.
type Store interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Put(ctx context.Context, key string, data []byte) error
	// Writable reports whether a write credential is configured.
	Writable() bool
}
