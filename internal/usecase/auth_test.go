package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/infra/config"
	"github.com/Deaglesso/Second/internal/infra/security"
)

const strongPassword = "Sup3r!SecurePass#7890"

type authTestEnv struct {
	service     *AuthService
	users       *fakeUserRepository
	revocations *fakeRevocationStore
	mail        *fakeEmailSender
	events      *fakeEventPublisher
	issuer      *security.TokenIssuer
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()

	cfg := &config.AppConfig{}
	cfg.JWT = config.JWTSettings{
		Secret:          "unit-test-signing-secret",
		Issuer:          "Second.API",
		Audience:        "Second.Client",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 168 * time.Hour,
	}
	cfg.Frontend.BaseURL = "https://app.second.local"

	issuer, err := security.NewTokenIssuer(security.TokenIssuerOptions{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.AccessTokenTTL,
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}

	users := newFakeUserRepository()
	revocations := newFakeRevocationStore()
	mail := &fakeEmailSender{}
	events := newFakeEventPublisher()

	service := NewAuthService(
		cfg,
		users,
		revocations,
		issuer,
		security.DefaultPasswordValidator(),
		mail,
		events,
		zaptest.NewLogger(t),
	)

	return &authTestEnv{
		service:     service,
		users:       users,
		revocations: revocations,
		mail:        mail,
		events:      events,
		issuer:      issuer,
	}
}

func TestRegisterIssuesTokensAndVerificationEmail(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result, err := env.service.Register(ctx, "New.User@Example.COM", strongPassword, domain.RoleUser)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if result.User.Email != "new.user@example.com" {
		t.Fatalf("expected normalized email, got %q", result.User.Email)
	}
	if result.User.Role != domain.RoleUser {
		t.Fatalf("expected role User, got %q", result.User.Role)
	}
	if result.User.EmailVerified {
		t.Fatal("expected new account to be unverified")
	}
	if result.User.ListingLimit != domain.DefaultListingLimit {
		t.Fatalf("expected default listing limit, got %d", result.User.ListingLimit)
	}
	if result.User.PasswordHash != "" {
		t.Fatal("expected password hash to be stripped from the result")
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}

	claims, err := env.issuer.Parse(result.AccessToken)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.UserID != result.User.ID {
		t.Fatalf("expected uid claim %q, got %q", result.User.ID, claims.UserID)
	}
	if claims.Role != string(domain.RoleUser) {
		t.Fatalf("unexpected role claim %q", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected a jti claim")
	}

	sent := env.mail.sent()
	if len(sent) != 1 {
		t.Fatalf("expected one verification email, got %d", len(sent))
	}
	if !strings.Contains(sent[0].Body, "https://app.second.local/verify-email?token=") {
		t.Fatalf("expected verification link in body, got %q", sent[0].Body)
	}

	if env.events.count("user.registered") != 1 {
		t.Fatal("expected user.registered event")
	}
}

func TestRegisterRejectsTakenEmailIncludingDeleted(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	first, err := env.service.Register(ctx, "taken@example.com", strongPassword, domain.RoleUser)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	// Case-insensitive duplicate.
	if _, err := env.service.Register(ctx, "TAKEN@example.com", strongPassword, domain.RoleUser); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// The address stays reserved after soft deletion.
	if err := env.users.SoftDelete(ctx, first.User.ID); err != nil {
		t.Fatalf("SoftDelete returned error: %v", err)
	}
	if _, err := env.service.Register(ctx, "taken@example.com", strongPassword, domain.RoleUser); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for soft-deleted email, got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	env := newAuthTestEnv(t)

	_, err := env.service.Register(context.Background(), "weak@example.com", "password", domain.RoleUser)
	var policyErr *security.PasswordValidationError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected password policy violation, got %v", err)
	}
}

func TestLoginSucceedsAndRejectsWrongPassword(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	if _, err := env.service.Register(ctx, "login@example.com", strongPassword, domain.RoleUser); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	result, err := env.service.Login(ctx, "Login@Example.com", strongPassword)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("expected an access token")
	}

	if _, err := env.service.Login(ctx, "login@example.com", "Wrong!Password#123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// Unknown email reads identically to a wrong password.
	if _, err := env.service.Login(ctx, "nobody@example.com", strongPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLogoutRevokesJTI(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result, err := env.service.Register(ctx, "logout@example.com", strongPassword, domain.RoleUser)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	claims, err := env.issuer.Parse(result.AccessToken)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	revoked, err := env.service.IsTokenRevoked(ctx, claims.ID)
	if err != nil || revoked {
		t.Fatalf("expected fresh jti to be valid, revoked=%v err=%v", revoked, err)
	}

	if err := env.service.Logout(ctx, result.AccessToken); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	revoked, err = env.service.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		t.Fatalf("IsTokenRevoked returned error: %v", err)
	}
	if !revoked {
		t.Fatal("expected jti to be revoked after logout")
	}

	// The stored refresh token is dropped with the session.
	stored, err := env.users.GetByID(ctx, result.User.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if stored.Refresh.Hash != nil {
		t.Fatal("expected refresh slot to be cleared on logout")
	}

	if env.events.count("session.revoked") != 1 {
		t.Fatal("expected session.revoked event")
	}
}

func TestBecomeSellerPromotesOnceAndReissuesToken(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	registered, err := env.service.Register(ctx, "seller@example.com", strongPassword, domain.RoleUser)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	promoted, err := env.service.BecomeSeller(ctx, registered.User.ID)
	if err != nil {
		t.Fatalf("BecomeSeller returned error: %v", err)
	}
	if promoted.User.Role != domain.RoleSeller {
		t.Fatalf("expected role Seller, got %q", promoted.User.Role)
	}

	claims, err := env.issuer.Parse(promoted.AccessToken)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.Role != string(domain.RoleSeller) {
		t.Fatalf("expected Seller role claim, got %q", claims.Role)
	}

	// Calling again stays a seller and still hands back a fresh token.
	again, err := env.service.BecomeSeller(ctx, registered.User.ID)
	if err != nil {
		t.Fatalf("second BecomeSeller returned error: %v", err)
	}
	if again.User.Role != domain.RoleSeller {
		t.Fatalf("expected role Seller, got %q", again.User.Role)
	}
	if again.AccessToken == "" {
		t.Fatal("expected a fresh access token")
	}

	if env.events.count("user.became_seller") != 1 {
		t.Fatalf("expected exactly one became_seller event, got %d", env.events.count("user.became_seller"))
	}
}

func TestVerifyEmailRoundTrip(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result, err := env.service.Register(ctx, "verify@example.com", strongPassword, domain.RoleUser)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	token := tokenFromEmail(t, env.mail.sent()[0].Body, "/verify-email?token=")

	if err := env.service.VerifyEmail(ctx, token); err != nil {
		t.Fatalf("VerifyEmail returned error: %v", err)
	}

	stored, err := env.users.GetByID(ctx, result.User.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if !stored.EmailVerified {
		t.Fatal("expected account to be verified")
	}
	if stored.EmailVerification.Hash != nil {
		t.Fatal("expected verification slot to be cleared")
	}

	// The token is single-use.
	if err := env.service.VerifyEmail(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on replay, got %v", err)
	}
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result, err := env.service.Register(ctx, "stale@example.com", strongPassword, domain.RoleUser)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	token := tokenFromEmail(t, env.mail.sent()[0].Body, "/verify-email?token=")

	// Age the slot past its expiry.
	stored, _ := env.users.GetByID(ctx, result.User.ID)
	expired := time.Now().UTC().Add(-time.Second)
	stored.EmailVerification.ExpiresAt = &expired
	if err := env.users.Update(ctx, *stored); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if err := env.service.VerifyEmail(ctx, token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestRequestEmailVerificationSilentForUnknownAndVerified(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	if err := env.service.RequestEmailVerification(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("expected silent no-op for unknown email, got %v", err)
	}
	if len(env.mail.sent()) != 0 {
		t.Fatal("expected no mail for unknown email")
	}

	result, err := env.service.Register(ctx, "quiet@example.com", strongPassword, domain.RoleUser)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	token := tokenFromEmail(t, env.mail.sent()[0].Body, "/verify-email?token=")
	if err := env.service.VerifyEmail(ctx, token); err != nil {
		t.Fatalf("VerifyEmail returned error: %v", err)
	}

	before := len(env.mail.sent())
	if err := env.service.RequestEmailVerification(ctx, "quiet@example.com"); err != nil {
		t.Fatalf("expected silent no-op for verified account, got %v", err)
	}
	if len(env.mail.sent()) != before {
		t.Fatal("expected no mail for already-verified account")
	}
	_ = result
}

func TestPasswordResetRoundTrip(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	if _, err := env.service.Register(ctx, "reset@example.com", strongPassword, domain.RoleUser); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if err := env.service.RequestPasswordReset(ctx, "reset@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}

	sent := env.mail.sent()
	token := tokenFromEmail(t, sent[len(sent)-1].Body, "/reset-password?token=")

	const newPassword = "An0ther!Secure#Pass42"
	if err := env.service.ResetPassword(ctx, token, newPassword); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}

	if _, err := env.service.Login(ctx, "reset@example.com", strongPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password to be rejected, got %v", err)
	}
	if _, err := env.service.Login(ctx, "reset@example.com", newPassword); err != nil {
		t.Fatalf("expected new password to work, got %v", err)
	}

	// The reset token is single-use.
	if err := env.service.ResetPassword(ctx, token, "Yet@N0ther!Pass99"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on replay, got %v", err)
	}
}

func TestRequestPasswordResetSilentForUnknownEmail(t *testing.T) {
	env := newAuthTestEnv(t)

	if err := env.service.RequestPasswordReset(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if len(env.mail.sent()) != 0 {
		t.Fatal("expected no mail for unknown email")
	}
}

func TestResetPasswordRejectsGarbageToken(t *testing.T) {
	env := newAuthTestEnv(t)

	err := env.service.ResetPassword(context.Background(), "not-a-real-token", strongPassword)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshAccessTokenRotates(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	registered, err := env.service.Register(ctx, "refresh@example.com", strongPassword, domain.RoleUser)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	refreshed, err := env.service.RefreshAccessToken(ctx, registered.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshAccessToken returned error: %v", err)
	}
	if refreshed.RefreshToken == registered.RefreshToken {
		t.Fatal("expected the refresh token to rotate")
	}
	if refreshed.AccessToken == "" {
		t.Fatal("expected a new access token")
	}

	// The old refresh token was consumed by the rotation.
	if _, err := env.service.RefreshAccessToken(ctx, registered.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for consumed token, got %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	registered, err := env.service.Register(ctx, "profile@example.com", strongPassword, domain.RoleUser)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	user, err := env.service.GetUserByID(ctx, registered.User.ID)
	if err != nil {
		t.Fatalf("GetUserByID returned error: %v", err)
	}
	if user.Email != "profile@example.com" {
		t.Fatalf("unexpected email %q", user.Email)
	}
	if user.PasswordHash != "" {
		t.Fatal("expected password hash to be stripped")
	}

	if _, err := env.service.GetUserByID(ctx, "missing-id"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRegisterWithSellerRole(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	result, err := env.service.Register(ctx, "shop@example.com", strongPassword, domain.RoleSeller)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if result.User.Role != domain.RoleSeller {
		t.Fatalf("expected role Seller, got %q", result.User.Role)
	}
	if result.User.ListingLimit != domain.DefaultListingLimit {
		t.Fatalf("expected default listing limit, got %d", result.User.ListingLimit)
	}

	claims, err := env.issuer.Parse(result.AccessToken)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.Role != string(domain.RoleSeller) {
		t.Fatalf("unexpected role claim %q", claims.Role)
	}

	blank, err := env.service.Register(ctx, "plain@example.com", strongPassword, "")
	if err != nil {
		t.Fatalf("Register with blank role returned error: %v", err)
	}
	if blank.User.Role != domain.RoleUser {
		t.Fatalf("expected blank role to default to User, got %q", blank.User.Role)
	}

	if _, err := env.service.Register(ctx, "root@example.com", strongPassword, domain.RoleAdmin); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole for Admin, got %v", err)
	}
}

func TestMailOutageDoesNotFailTokenRequests(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	if _, err := env.service.Register(ctx, "offline@example.com", strongPassword, domain.RoleUser); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	env.mail.err = errors.New("smtp connection refused")

	if err := env.service.RequestPasswordReset(ctx, "offline@example.com"); err != nil {
		t.Fatalf("expected mail failure to be non-fatal, got %v", err)
	}
	if err := env.service.RequestEmailVerification(ctx, "offline@example.com"); err != nil {
		t.Fatalf("expected mail failure to be non-fatal, got %v", err)
	}

	// The tokens were stored despite the bounced mail, so a later re-request
	// or manual delivery can still complete the flow.
	user, err := env.users.GetByEmail(ctx, "offline@example.com", false)
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if user.PasswordReset.Hash == nil {
		t.Fatal("expected reset token to be stored")
	}
	if user.EmailVerification.Hash == nil {
		t.Fatal("expected verification token to be stored")
	}
}

func tokenFromEmail(t *testing.T, body, marker string) string {
	t.Helper()

	idx := strings.Index(body, marker)
	if idx < 0 {
		t.Fatalf("marker %q not found in email body %q", marker, body)
	}
	rest := body[idx+len(marker):]
	if end := strings.IndexAny(rest, " \n"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
