package port

import (
	"context"
	"time"
)

// RevocationStore records revoked access-token session identifiers (jti) until
// the corresponding token would have expired anyway.
//
// Revoke applies a TTL of max(expiresAt-now, 1 minute): the floor guarantees a
// revocation is observable for at least a minute even when called with an
// already-expired token, instead of being silently dropped by the backing
// store. Records are never updated or explicitly deleted.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
