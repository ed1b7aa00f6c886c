package port

import (
	"context"

	"github.com/Deaglesso/Second/internal/core/domain"
)

// TokenSlotKind selects which single-use token slot a hash lookup targets.
type TokenSlotKind string

const (
	SlotEmailVerification TokenSlotKind = "email_verification"
	SlotPasswordReset     TokenSlotKind = "password_reset"
	SlotRefresh           TokenSlotKind = "refresh"
)

// UserRepository persists marketplace users.
//
// Lookups exclude soft-deleted rows unless stated otherwise; the email
// uniqueness invariant spans deleted users too, so registration consults
// GetByEmail with includeDeleted=true. The service-level check is a pre-flight
// only; the unique index on email is the actual enforcer, and a duplicate
// insert surfaces as a Conflict through the driver's unique-violation error.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, normalizedEmail string, includeDeleted bool) (*domain.User, error)
	GetByTokenHash(ctx context.Context, slot TokenSlotKind, hash string) (*domain.User, error)
	Update(ctx context.Context, user domain.User) error
	SoftDelete(ctx context.Context, id string) error
}
