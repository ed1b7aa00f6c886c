package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/repository"
)

func TestSetListingLimit(t *testing.T) {
	users := newFakeUserRepository()
	service := NewAdminService(users, zaptest.NewLogger(t))
	seedUser(t, users, "seller", domain.RoleSeller, domain.DefaultListingLimit)
	seedUser(t, users, "buyer", domain.RoleUser, domain.DefaultListingLimit)

	ctx := context.Background()
	updated, err := service.SetListingLimit(ctx, "seller", 25)
	if err != nil {
		t.Fatalf("SetListingLimit returned error: %v", err)
	}
	if updated.ListingLimit != 25 {
		t.Fatalf("expected limit 25, got %d", updated.ListingLimit)
	}
	if updated.PasswordHash != "" {
		t.Fatal("returned user must not carry the password hash")
	}

	stored, err := users.GetByID(ctx, "seller")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if stored.ListingLimit != 25 {
		t.Fatalf("limit not persisted, got %d", stored.ListingLimit)
	}

	if _, err := service.SetListingLimit(ctx, "buyer", 25); !errors.Is(err, ErrNotSeller) {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}
	if _, err := service.SetListingLimit(ctx, "seller", 0); !errors.Is(err, ErrInvalidListingLimit) {
		t.Fatalf("expected ErrInvalidListingLimit, got %v", err)
	}
	if _, err := service.SetListingLimit(ctx, "ghost", 5); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteUserSoftDeletes(t *testing.T) {
	users := newFakeUserRepository()
	service := NewAdminService(users, zaptest.NewLogger(t))
	seedUser(t, users, "victim", domain.RoleUser, domain.DefaultListingLimit)

	ctx := context.Background()
	if err := service.DeleteUser(ctx, "victim"); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if _, err := users.GetByID(ctx, "victim"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found after soft delete, got %v", err)
	}
	if err := service.DeleteUser(ctx, "victim"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on repeat delete, got %v", err)
	}
}
