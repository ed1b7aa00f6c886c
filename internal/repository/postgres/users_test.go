package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/repository"
)

func newUserRows() *pgxmock.Rows {
	return pgxmock.NewRows(userColumns)
}

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	user := domain.User{
		ID:           "user-1",
		Email:        "buyer@example.com",
		PasswordHash: "argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		Role:         domain.RoleUser,
		ListingLimit: domain.DefaultListingLimit,
		CreatedAt:    createdAt,
	}

	mock.ExpectExec(`INSERT INTO second\.users`).
		WithArgs(
			user.ID,
			user.Email,
			user.PasswordHash,
			user.Role,
			false,
			nil,
			user.ListingLimit,
			nil,
			nil,
			nil,
			nil,
			nil,
			nil,
			false,
			nil,
			createdAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	refreshHash := "abc123"
	refreshExpiry := createdAt.Add(168 * time.Hour)

	rows := newUserRows().AddRow(
		"user-1", "buyer@example.com", "hash", domain.RoleSeller, true,
		nil, 10,
		nil, nil,
		nil, nil,
		&refreshHash, &refreshExpiry,
		false, nil,
		createdAt, nil,
	)

	mock.ExpectQuery(`SELECT .+ FROM second\.users WHERE id = \$1 AND is_deleted = \$2`).
		WithArgs("user-1", false).
		WillReturnRows(rows)

	user, err := repo.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if user.Role != domain.RoleSeller || !user.EmailVerified {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.Refresh.Hash == nil || *user.Refresh.Hash != refreshHash {
		t.Fatalf("refresh slot not populated: %+v", user.Refresh)
	}
	if user.Deletion.IsDeleted() {
		t.Fatal("user must not be marked deleted")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmailSpansDeleted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	deletedAt := createdAt.Add(time.Hour)

	rows := newUserRows().AddRow(
		"user-2", "gone@example.com", "hash", domain.RoleUser, false,
		nil, 10,
		nil, nil,
		nil, nil,
		nil, nil,
		true, &deletedAt,
		createdAt, nil,
	)

	// includeDeleted omits the is_deleted predicate entirely.
	mock.ExpectQuery(`SELECT .+ FROM second\.users WHERE email = \$1 LIMIT 1`).
		WithArgs("gone@example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "gone@example.com", true)
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if !user.Deletion.IsDeleted() {
		t.Fatal("expected the soft-deleted row back")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByTokenHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	createdAt := time.Now().UTC()
	hash := "deadbeef"
	expiry := createdAt.Add(time.Hour)

	rows := newUserRows().AddRow(
		"user-3", "reset@example.com", "hash", domain.RoleUser, true,
		nil, 10,
		nil, nil,
		&hash, &expiry,
		nil, nil,
		false, nil,
		createdAt, nil,
	)

	mock.ExpectQuery(`SELECT .+ FROM second\.users WHERE password_reset_token_hash = \$1 AND is_deleted = \$2 LIMIT 1`).
		WithArgs(hash, false).
		WillReturnRows(rows)

	user, err := repo.GetByTokenHash(context.Background(), port.SlotPasswordReset, hash)
	if err != nil {
		t.Fatalf("GetByTokenHash returned error: %v", err)
	}
	if user.PasswordReset.Hash == nil || *user.PasswordReset.Hash != hash {
		t.Fatalf("password reset slot not populated: %+v", user.PasswordReset)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByTokenHashUnknownSlot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	if _, err := repo.GetByTokenHash(context.Background(), port.TokenSlotKind("bogus"), "hash"); err == nil {
		t.Fatal("expected error for unknown slot")
	}
}

func TestUserRepository_UpdateMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE second\.users SET`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.Update(context.Background(), domain.User{ID: "missing"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_SoftDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE second\.users SET is_deleted = \$1, deleted_at = \$2, updated_at = \$3 WHERE id = \$4 AND is_deleted = \$5`).
		WithArgs(true, pgxmock.AnyArg(), pgxmock.AnyArg(), "user-1", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.SoftDelete(context.Background(), "user-1"); err != nil {
		t.Fatalf("SoftDelete returned error: %v", err)
	}

	mock.ExpectExec(`UPDATE second\.users SET`).
		WithArgs(true, pgxmock.AnyArg(), pgxmock.AnyArg(), "user-1", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.SoftDelete(context.Background(), "user-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
