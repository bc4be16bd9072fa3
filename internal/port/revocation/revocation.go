// Package revocation defines the port interface for revoked session tokens.
package revocation

import (
	"context"
	"time"
)

// List records session token IDs that must no longer be accepted.
type List interface {
	// Revoke marks jti as revoked until the token's own expiry.
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
