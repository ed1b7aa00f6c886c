package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/infra/config"
	"github.com/Deaglesso/Second/internal/infra/logger"
	"github.com/Deaglesso/Second/internal/infra/security"
	"github.com/Deaglesso/Second/internal/repository"
)

var (
	// ErrEmailTaken indicates the email already belongs to an account,
	// soft-deleted accounts included.
	ErrEmailTaken = errors.New("email is already taken")
	// ErrInvalidCredentials indicates the email or password is incorrect.
	// Deliberately indistinguishable between the two.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidToken indicates a verification or reset token that matches no
	// account.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a matched verification or reset token past its
	// expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidRefreshToken indicates the refresh token matches no account.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrExpiredRefreshToken indicates the refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token expired")
	// ErrInvalidRole indicates a registration role outside User and Seller.
	ErrInvalidRole = errors.New("invalid registration role")
)

const tokenSlotTTL = time.Hour

// AuthResult carries the outcome of an operation that issues credentials.
type AuthResult struct {
	AccessToken  string
	ExpiresAt    time.Time
	RefreshToken string
	User         domain.User
}

// AuthService coordinates registration, login, session revocation, and the
// email-token flows.
type AuthService struct {
	cfg         *config.AppConfig
	users       port.UserRepository
	revocations port.RevocationStore
	issuer      *security.TokenIssuer
	passwords   *security.PasswordValidator
	mail        port.EmailSender
	events      port.EventPublisher
	log         *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	cfg *config.AppConfig,
	users port.UserRepository,
	revocations port.RevocationStore,
	issuer *security.TokenIssuer,
	passwords *security.PasswordValidator,
	mail port.EmailSender,
	events port.EventPublisher,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		cfg:         cfg,
		users:       users,
		revocations: revocations,
		issuer:      issuer,
		passwords:   passwords,
		mail:        mail,
		events:      events,
		log:         log,
	}
}

// Register creates an account, triggers the verification email, and signs the
// user in. The email uniqueness check spans soft-deleted accounts. A blank
// role defaults to User; Seller is the only other role open to
// self-registration.
func (s *AuthService) Register(ctx context.Context, email, password string, role domain.Role) (*AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	switch role {
	case "":
		role = domain.RoleUser
	case domain.RoleUser, domain.RoleSeller:
	default:
		return nil, ErrInvalidRole
	}

	if err := s.passwords.Validate(password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email, true); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		ListingLimit: domain.DefaultListingLimit,
		CreatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Verification mail is best-effort at registration time; the user can
	// always re-request it.
	if err := s.sendVerificationEmail(ctx, &user); err != nil {
		s.log.Warn("send verification email failed",
			zap.String("email", logger.MaskEmail(email)),
			zap.Error(err),
		)
	}

	if err := s.events.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         string(user.Role),
		RegisteredAt: now,
	}); err != nil {
		s.log.Warn("publish user registered event failed", zap.Error(err))
	}

	return s.issueTokens(ctx, &user)
}

// Login verifies credentials and issues a fresh token pair. Hashes produced
// with stale parameters are upgraded on the way through.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = domain.NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if security.NeedsRehash(user.PasswordHash) {
		if rehashed, err := security.HashPassword(password); err == nil {
			user.PasswordHash = rehashed
		}
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the access token's jti until the token would have expired
// anyway and drops the stored refresh token.
func (s *AuthService) Logout(ctx context.Context, rawAccessToken string) error {
	claims, err := s.issuer.Parse(rawAccessToken)
	if err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(s.issuer.TTL())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.revocations.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("revoke jti: %w", err)
	}

	if user, err := s.users.GetByID(ctx, claims.UserID); err == nil {
		user.Refresh.Clear()
		if err := s.users.Update(ctx, *user); err != nil {
			s.log.Warn("clear refresh token on logout failed", zap.Error(err))
		}
	}

	now := time.Now().UTC()
	if err := s.events.PublishSessionRevoked(ctx, domain.SessionRevokedEvent{
		JTI:       claims.ID,
		RevokedAt: now,
		ExpiresAt: expiresAt,
	}); err != nil {
		s.log.Warn("publish session revoked event failed", zap.Error(err))
	}

	return nil
}

// BecomeSeller promotes a plain user to seller. The promotion is idempotent,
// and a fresh token pair is issued either way so the role claim is current.
func (s *AuthService) BecomeSeller(ctx context.Context, userID string) (*AuthResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.Role == domain.RoleUser {
		user.Role = domain.RoleSeller

		if err := s.events.PublishUserBecameSeller(ctx, domain.UserBecameSellerEvent{
			UserID:     user.ID,
			PromotedAt: time.Now().UTC(),
		}); err != nil {
			s.log.Warn("publish became seller event failed", zap.Error(err))
		}
	}

	return s.issueTokens(ctx, user)
}

// RequestEmailVerification stores a fresh verification token and mails the
// link. Unknown and already-verified addresses are silent no-ops so the
// endpoint does not leak which emails exist.
func (s *AuthService) RequestEmailVerification(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.EmailVerified {
		return nil
	}

	return s.sendVerificationEmail(ctx, user)
}

// VerifyEmail consumes a verification token: the verified flag flips and the
// slot is cleared in the same update, so the token cannot be replayed.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	user, err := s.users.GetByTokenHash(ctx, port.SlotEmailVerification, security.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("lookup verification token: %w", err)
	}

	if !user.EmailVerification.IsUsable(time.Now().UTC()) {
		return ErrExpiredToken
	}

	user.EmailVerified = true
	user.EmailVerification.Clear()

	if err := s.users.Update(ctx, *user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

// RequestPasswordReset stores a fresh reset token and mails the link. Unknown
// addresses are a silent no-op.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := security.GenerateOpaqueToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	user.PasswordReset.Set(security.HashToken(token), time.Now().UTC().Add(tokenSlotTTL))

	if err := s.users.Update(ctx, *user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	link := s.frontendLink("/reset-password", token)
	body := fmt.Sprintf("You requested a password reset.\n\nReset your password: %s\n\nThe link expires in one hour. If you did not request this, ignore this message.", link)

	// Delivery is best-effort: the stored token stays valid, and a failure
	// here must not be distinguishable from the unknown-address no-op above.
	if err := s.mail.Send(ctx, user.Email, "Reset your password", body); err != nil {
		s.log.Warn("reset email delivery failed",
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Error(err),
		)
	}

	return nil
}

// ResetPassword consumes a reset token and replaces the password. Unlike the
// request step this fails loudly: the caller holds a token and deserves to
// know why it did not work. The stored refresh token is dropped so existing
// sessions cannot be extended with the old credentials.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if err := s.passwords.Validate(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByTokenHash(ctx, port.SlotPasswordReset, security.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	if !user.PasswordReset.IsUsable(time.Now().UTC()) {
		return ErrExpiredToken
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hash
	user.PasswordReset.Clear()
	user.Refresh.Clear()

	if err := s.users.Update(ctx, *user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

// RefreshAccessToken rotates the refresh token and issues a new access token.
// The presented token is consumed whether or not it was close to expiry.
func (s *AuthService) RefreshAccessToken(ctx context.Context, rawRefreshToken string) (*AuthResult, error) {
	user, err := s.users.GetByTokenHash(ctx, port.SlotRefresh, security.HashToken(rawRefreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	if !user.Refresh.IsUsable(time.Now().UTC()) {
		return nil, ErrExpiredRefreshToken
	}

	return s.issueTokens(ctx, user)
}

// GetUserByID returns the user's profile.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""
	return &sanitized, nil
}

// IsTokenRevoked reports whether the jti has been revoked. Exposed for the
// authentication middleware.
func (s *AuthService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revocations.IsRevoked(ctx, jti)
}

// ParseAccessToken validates a raw bearer token and returns its claims.
func (s *AuthService) ParseAccessToken(raw string) (*security.AccessTokenClaims, error) {
	return s.issuer.Parse(raw)
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	refresh, err := security.GenerateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	refreshTTL := s.cfg.JWT.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = 168 * time.Hour
	}
	user.Refresh.Set(security.HashToken(refresh), time.Now().UTC().Add(refreshTTL))

	if err := s.users.Update(ctx, *user); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	access, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &AuthResult{
		AccessToken:  access,
		ExpiresAt:    expiresAt,
		RefreshToken: refresh,
		User:         sanitized,
	}, nil
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, user *domain.User) error {
	token, err := security.GenerateOpaqueToken()
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}

	user.EmailVerification.Set(security.HashToken(token), time.Now().UTC().Add(tokenSlotTTL))

	if err := s.users.Update(ctx, *user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	link := s.frontendLink("/verify-email", token)
	body := fmt.Sprintf("Welcome to Second!\n\nVerify your email address: %s\n\nThe link expires in one hour.", link)

	// Delivery is best-effort: the token is already stored, so the caller can
	// retry verification without another request even if the mail bounced.
	if err := s.mail.Send(ctx, user.Email, "Verify your email", body); err != nil {
		s.log.Warn("verification email delivery failed",
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Error(err),
		)
	}

	return nil
}

func (s *AuthService) frontendLink(path, token string) string {
	base := strings.TrimRight(s.cfg.Frontend.BaseURL, "/")
	return fmt.Sprintf("%s%s?token=%s", base, path, url.QueryEscape(token))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
