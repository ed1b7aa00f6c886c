package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
)

const (
	defaultRevocationPrefix = "auth:revoked:jti"

	// revokedValue carries no information; presence of the key is the signal.
	revokedValue = "1"

	// minRevocationTTL keeps a mark alive even when the token is already past
	// its expiry, covering clock skew between issuer and store.
	minRevocationTTL = time.Minute
)

// RevocationRepository manages access-token jti revocation state backed by
// Redis. The configured policy decides what a Redis outage means: fail-open
// treats every token as still valid, fail-closed rejects everything.
type RevocationRepository struct {
	client *red.Client
	prefix string
	policy domain.RevocationPolicy
	logger *zap.Logger
}

// NewRevocationRepository wires a Redis client into a revocation repository.
func NewRevocationRepository(client *red.Client, keyPrefix string, policy domain.RevocationPolicy, logger *zap.Logger) *RevocationRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultRevocationPrefix
	}

	return &RevocationRepository{
		client: client,
		prefix: prefix,
		policy: policy,
		logger: logger,
	}
}

// Revoke marks the jti revoked until the token's natural expiry, with a floor
// so the mark outlives an already-expired token briefly. Under fail-open a
// store outage is logged and swallowed; the logout itself still succeeds.
func (r *RevocationRepository) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	key := r.key(jti)
	if key == "" {
		return errors.New("jti must not be empty")
	}

	ttl := time.Until(expiresAt)
	if ttl < minRevocationTTL {
		ttl = minRevocationTTL
	}

	if err := r.client.Set(ctx, key, revokedValue, ttl).Err(); err != nil {
		if r.policy.FailsOpen() {
			r.logger.Warn("revocation store unavailable, jti not persisted",
				zap.String("jti", jti),
				zap.Error(err),
			)
			return nil
		}
		return fmt.Errorf("redis set revoked jti: %w", err)
	}

	return nil
}

// IsRevoked reports whether the jti has been revoked. Under fail-open a store
// outage reads as not revoked; under fail-closed the error propagates and the
// caller rejects the token.
func (r *RevocationRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	key := r.key(jti)
	if key == "" {
		return false, errors.New("jti must not be empty")
	}

	if err := r.client.Get(ctx, key).Err(); err != nil {
		if errors.Is(err, red.Nil) {
			return false, nil
		}
		if r.policy.FailsOpen() {
			r.logger.Warn("revocation store unavailable, treating jti as not revoked",
				zap.String("jti", jti),
				zap.Error(err),
			)
			return false, nil
		}
		return false, fmt.Errorf("redis get revoked jti: %w", err)
	}

	return true, nil
}

func (r *RevocationRepository) key(jti string) string {
	trimmed := strings.TrimSpace(jti)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", r.prefix, trimmed)
}

var _ port.RevocationStore = (*RevocationRepository)(nil)
