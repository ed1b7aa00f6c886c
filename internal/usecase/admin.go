package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/repository"
)

// ErrInvalidListingLimit indicates a non-positive listing limit.
var ErrInvalidListingLimit = errors.New("listing limit must be positive")

// AdminService covers moderation operations restricted to the Admin role.
type AdminService struct {
	users port.UserRepository
	log   *zap.Logger
}

// NewAdminService constructs an AdminService instance.
func NewAdminService(users port.UserRepository, log *zap.Logger) *AdminService {
	return &AdminService{users: users, log: log}
}

// SetListingLimit adjusts how many active listings a seller may hold. Existing
// listings above a lowered limit stay live; the cap only gates new ones.
func (s *AdminService) SetListingLimit(ctx context.Context, sellerUserID string, limit int) (*domain.User, error) {
	if limit <= 0 {
		return nil, ErrInvalidListingLimit
	}

	user, err := s.users.GetByID(ctx, sellerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsSeller() {
		return nil, ErrNotSeller
	}

	user.ListingLimit = limit

	if err := s.users.Update(ctx, *user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.log.Info("listing limit updated",
		zap.String("user_id", user.ID),
		zap.Int("listing_limit", limit),
	)

	sanitized := *user
	sanitized.PasswordHash = ""
	return &sanitized, nil
}

// DeleteUser soft-deletes an account. The email stays reserved.
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.users.SoftDelete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("soft delete user: %w", err)
	}
	return nil
}
