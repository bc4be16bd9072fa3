// Package ristretto keeps revoked session token IDs in a dgraph-io/ristretto
// in-process cache. Each entry lives until the token it revokes would have
// expired anyway.
package ristretto

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// ErrNotRecorded is returned when the cache drops a revocation, either from a
// full set buffer or by its admission policy.
var ErrNotRecorded = errors.New("revocation not recorded")

// entryCost approximates the bytes held per revoked token ID.
const entryCost = 64

// RevocationList records revoked token IDs.
type RevocationList struct {
	c   *ristretto.Cache[string, struct{}]
	now func() time.Time
}

// New creates a revocation list. maxCostBytes bounds its memory use.
func New(maxCostBytes int64) (*RevocationList, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, struct{}]{
		NumCounters: maxCostBytes / entryCost * 10, // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &RevocationList{c: c, now: time.Now}, nil
}

// Revoke marks jti as revoked until the given time. Tokens that have
// already expired are not recorded.
func (r *RevocationList) Revoke(_ context.Context, jti string, until time.Time) error {
	ttl := until.Sub(r.now())
	if jti == "" || ttl <= 0 {
		return nil
	}
	if !r.c.SetWithTTL(jti, struct{}{}, entryCost, ttl) {
		return fmt.Errorf("%w: %s", ErrNotRecorded, jti)
	}
	r.c.Wait()
	if _, ok := r.c.Get(jti); !ok {
		return fmt.Errorf("%w: %s", ErrNotRecorded, jti)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (r *RevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, found := r.c.Get(jti)
	return found, nil
}

// Close shuts down the cache and releases resources.
func (r *RevocationList) Close() {
	r.c.Close()
}
