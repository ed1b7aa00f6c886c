package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// OpaqueTokenBytes is the entropy used for email verification, password reset
// and refresh tokens.
const OpaqueTokenBytes = 32

// GenerateSecureToken returns a base64 URL-safe random string using the specified number of random bytes.
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateOpaqueToken returns a fresh single-use token with the default entropy.
func GenerateOpaqueToken() (string, error) {
	return GenerateSecureToken(OpaqueTokenBytes)
}

// HashToken calculates a SHA-256 hash of the provided value. Only the hash is
// persisted; the plaintext token leaves the process exactly once, inside the
// email link.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
