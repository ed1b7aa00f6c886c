package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/Deaglesso/Second/internal/core/domain"
)

var (
	// ErrMissingSigningKey indicates the issuer was constructed without a secret.
	ErrMissingSigningKey = errors.New("jwt: signing key is required")

	// ErrTokenInvalid covers malformed tokens, bad signatures, wrong algorithms
	// and missing required claims.
	ErrTokenInvalid = errors.New("jwt: token is invalid")

	// ErrTokenExpired indicates a structurally valid token past its exp claim.
	ErrTokenExpired = errors.New("jwt: token is expired")
)

const defaultAccessTokenTTL = 60 * time.Minute

// AccessTokenClaims augments registered claims with the user identity carried
// by every access token.
type AccessTokenClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses HS256 access tokens. Every issued token gets a
// fresh jti so it can be revoked independently of any other token for the
// same user.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// TokenIssuerOptions configures a TokenIssuer.
type TokenIssuerOptions struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// NewTokenIssuer constructs a TokenIssuer, failing when no secret is supplied.
func NewTokenIssuer(opts TokenIssuerOptions) (*TokenIssuer, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, ErrMissingSigningKey
	}

	issuer := strings.TrimSpace(opts.Issuer)
	if issuer == "" {
		issuer = "Second.API"
	}

	audience := strings.TrimSpace(opts.Audience)
	if audience == "" {
		audience = "Second.Client"
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultAccessTokenTTL
	}

	return &TokenIssuer{
		secret:   []byte(opts.Secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}, nil
}

// TTL returns the configured access token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs an access token for the supplied user and returns the token
// together with its expiry instant.
func (t *TokenIssuer) Issue(user *domain.User) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, fmt.Errorf("jwt: user is required")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(t.ttl)

	claims := &AccessTokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Parse validates the signature, algorithm, issuer, audience and time claims
// of a raw token and returns its claims.
func (t *TokenIssuer) Parse(raw string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if strings.TrimSpace(claims.ID) == "" || strings.TrimSpace(claims.UserID) == "" {
		return nil, fmt.Errorf("%w: missing jti or uid claim", ErrTokenInvalid)
	}

	return claims, nil
}
