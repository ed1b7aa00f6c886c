package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/repository"
)

var userColumns = []string{
	"id",
	"email",
	"password_hash",
	"role",
	"email_verified",
	"seller_rating",
	"listing_limit",
	"email_verification_token_hash",
	"email_verification_expires_at",
	"password_reset_token_hash",
	"password_reset_expires_at",
	"refresh_token_hash",
	"refresh_token_expires_at",
	"is_deleted",
	"deleted_at",
	"created_at",
	"updated_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new user row. A concurrent duplicate email surfaces as the
// driver's unique-violation error, which callers map to a conflict.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	isDeleted, deletedAt := user.Deletion.Columns()

	query := r.builder.Insert("second.users").
		Columns(
			"id",
			"email",
			"password_hash",
			"role",
			"email_verified",
			"seller_rating",
			"listing_limit",
			"email_verification_token_hash",
			"email_verification_expires_at",
			"password_reset_token_hash",
			"password_reset_expires_at",
			"refresh_token_hash",
			"refresh_token_expires_at",
			"is_deleted",
			"deleted_at",
			"created_at",
		).
		Values(
			user.ID,
			user.Email,
			user.PasswordHash,
			user.Role,
			user.EmailVerified,
			user.SellerRating,
			user.ListingLimit,
			user.EmailVerification.Hash,
			user.EmailVerification.ExpiresAt,
			user.PasswordReset.Hash,
			user.PasswordReset.ExpiresAt,
			user.Refresh.Hash,
			user.Refresh.ExpiresAt,
			isDeleted,
			deletedAt,
			user.CreatedAt,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a non-deleted user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("second.users").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"is_deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByEmail retrieves a user by normalized email. Registration passes
// includeDeleted=true so an address once owned by a deleted account still
// counts as taken.
func (r *UserRepository) GetByEmail(ctx context.Context, normalizedEmail string, includeDeleted bool) (*domain.User, error) {
	query := r.builder.
		Select(userColumns...).
		From("second.users").
		Where(squirrel.Eq{"email": normalizedEmail})

	if !includeDeleted {
		query = query.Where(squirrel.Eq{"is_deleted": false})
	}

	stmt, args, err := query.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by email sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByTokenHash retrieves the user holding the supplied token hash in the
// requested slot. Expiry is not checked here; callers decide what a stale
// token means.
func (r *UserRepository) GetByTokenHash(ctx context.Context, slot port.TokenSlotKind, hash string) (*domain.User, error) {
	column, err := slotHashColumn(slot)
	if err != nil {
		return nil, err
	}

	stmt, args, err := r.builder.
		Select(userColumns...).
		From("second.users").
		Where(squirrel.Eq{column: hash}).
		Where(squirrel.Eq{"is_deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by token hash sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// Update persists every mutable field of the user, token slots included.
func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	isDeleted, deletedAt := user.Deletion.Columns()

	stmt, args, err := r.builder.Update("second.users").
		Set("email", user.Email).
		Set("password_hash", user.PasswordHash).
		Set("role", user.Role).
		Set("email_verified", user.EmailVerified).
		Set("seller_rating", user.SellerRating).
		Set("listing_limit", user.ListingLimit).
		Set("email_verification_token_hash", user.EmailVerification.Hash).
		Set("email_verification_expires_at", user.EmailVerification.ExpiresAt).
		Set("password_reset_token_hash", user.PasswordReset.Hash).
		Set("password_reset_expires_at", user.PasswordReset.ExpiresAt).
		Set("refresh_token_hash", user.Refresh.Hash).
		Set("refresh_token_expires_at", user.Refresh.ExpiresAt).
		Set("is_deleted", isDeleted).
		Set("deleted_at", deletedAt).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete marks a user as deleted without removing the row, keeping the
// email unavailable for re-registration.
func (r *UserRepository) SoftDelete(ctx context.Context, id string) error {
	now := time.Now().UTC()

	stmt, args, err := r.builder.Update("second.users").
		Set("is_deleted", true).
		Set("deleted_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user      domain.User
		isDeleted bool
		deletedAt *time.Time
	)

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.EmailVerified,
		&user.SellerRating,
		&user.ListingLimit,
		&user.EmailVerification.Hash,
		&user.EmailVerification.ExpiresAt,
		&user.PasswordReset.Hash,
		&user.PasswordReset.ExpiresAt,
		&user.Refresh.Hash,
		&user.Refresh.ExpiresAt,
		&isDeleted,
		&deletedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	user.Deletion = domain.DeletionFromColumns(isDeleted, deletedAt)

	return &user, nil
}

func slotHashColumn(slot port.TokenSlotKind) (string, error) {
	switch slot {
	case port.SlotEmailVerification:
		return "email_verification_token_hash", nil
	case port.SlotPasswordReset:
		return "password_reset_token_hash", nil
	case port.SlotRefresh:
		return "refresh_token_hash", nil
	default:
		return "", fmt.Errorf("unknown token slot %q", slot)
	}
}

var _ port.UserRepository = (*UserRepository)(nil)
