package domain

import (
	"strings"
	"time"
)

// Role determines the authorization policy applied to a user.
type Role string

const (
	RoleUser   Role = "User"
	RoleSeller Role = "Seller"
	RoleAdmin  Role = "Admin"
)

// ParseRole normalises textual input into a known role, defaulting to RoleUser.
func ParseRole(value string) Role {
	switch strings.TrimSpace(value) {
	case string(RoleSeller):
		return RoleSeller
	case string(RoleAdmin):
		return RoleAdmin
	default:
		return RoleUser
	}
}

// TokenSlot stores the hash and expiry of a single-use opaque token.
// The raw value is never persisted; only its SHA-256 lookup hash survives
// issuance.
type TokenSlot struct {
	Hash      *string
	ExpiresAt *time.Time
}

// IsUsable reports whether the slot holds a token valid at the supplied instant.
// Expiry strictly before now fails; exactly at the boundary is accepted.
func (s TokenSlot) IsUsable(now time.Time) bool {
	return s.Hash != nil && s.ExpiresAt != nil && !s.ExpiresAt.Before(now)
}

// Clear wipes the slot. Called when the token is consumed, atomically with the
// state change it authorises.
func (s *TokenSlot) Clear() {
	s.Hash = nil
	s.ExpiresAt = nil
}

// Set stores a new hash/expiry pair, replacing any previous token.
func (s *TokenSlot) Set(hash string, expiresAt time.Time) {
	s.Hash = &hash
	expiresAt = expiresAt.UTC()
	s.ExpiresAt = &expiresAt
}

// DefaultListingLimit caps how many active listings a new seller may hold.
const DefaultListingLimit = 10

// User is the subject of authentication and the owner of marketplace listings.
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	Role          Role
	EmailVerified bool

	SellerRating *float64
	ListingLimit int

	EmailVerification TokenSlot
	PasswordReset     TokenSlot
	Refresh           TokenSlot

	Deletion  Deletion
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// IsSeller reports whether the user may manage listings.
func (u User) IsSeller() bool {
	return u.Role == RoleSeller || u.Role == RoleAdmin
}

// NormalizeEmail canonicalises an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
