package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"github.com/Deaglesso/Second/internal/core/domain"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestRevocationRepository_RevokeAndCheck(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRevocationRepository(client, "auth:revoked:jti", domain.RevocationFailOpen, zaptest.NewLogger(t))

	ctx := context.Background()
	expiresAt := time.Now().Add(30 * time.Minute)

	if err := repo.Revoke(ctx, "jti-123", expiresAt); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}

	revoked, err := repo.IsRevoked(ctx, "jti-123")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if !revoked {
		t.Fatalf("expected jti to be marked revoked")
	}

	remaining := server.TTL("auth:revoked:jti:jti-123")
	if remaining <= 0 || remaining > 30*time.Minute {
		t.Fatalf("expected ttl within (0, 30m], got %v", remaining)
	}
}

func TestRevocationRepository_TTLFloorForExpiredToken(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRevocationRepository(client, "auth:revoked:jti", domain.RevocationFailOpen, zaptest.NewLogger(t))

	// Token already past its expiry still gets marked for at least a minute.
	expiresAt := time.Now().Add(-5 * time.Minute)
	if err := repo.Revoke(context.Background(), "jti-expired", expiresAt); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}

	remaining := server.TTL("auth:revoked:jti:jti-expired")
	if remaining <= 0 || remaining > time.Minute {
		t.Fatalf("expected floor ttl within (0, 1m], got %v", remaining)
	}
}

func TestRevocationRepository_IsRevokedMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRevocationRepository(client, "auth:revoked:jti", domain.RevocationFailOpen, zaptest.NewLogger(t))

	revoked, err := repo.IsRevoked(context.Background(), "missing")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if revoked {
		t.Fatalf("expected revoked to be false")
	}
}

func TestRevocationRepository_FailOpenOnOutage(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRevocationRepository(client, "auth:revoked:jti", domain.RevocationFailOpen, zaptest.NewLogger(t))

	server.Close()

	if err := repo.Revoke(context.Background(), "jti-123", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("expected fail-open Revoke to swallow outage, got %v", err)
	}

	revoked, err := repo.IsRevoked(context.Background(), "jti-123")
	if err != nil {
		t.Fatalf("expected fail-open IsRevoked to swallow outage, got %v", err)
	}
	if revoked {
		t.Fatalf("expected fail-open to report not revoked during outage")
	}
}

func TestRevocationRepository_FailClosedOnOutage(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRevocationRepository(client, "auth:revoked:jti", domain.RevocationFailClosed, zaptest.NewLogger(t))

	server.Close()

	if err := repo.Revoke(context.Background(), "jti-123", time.Now().Add(time.Hour)); err == nil {
		t.Fatalf("expected fail-closed Revoke to propagate outage")
	}

	if _, err := repo.IsRevoked(context.Background(), "jti-123"); err == nil {
		t.Fatalf("expected fail-closed IsRevoked to propagate outage")
	}
}

func TestRevocationRepository_InvalidInput(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRevocationRepository(client, "auth:revoked:jti", domain.RevocationFailOpen, zaptest.NewLogger(t))

	if err := repo.Revoke(context.Background(), "", time.Now().Add(time.Hour)); err == nil {
		t.Fatalf("expected error for empty jti")
	}

	if _, err := repo.IsRevoked(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty jti in IsRevoked")
	}
}
