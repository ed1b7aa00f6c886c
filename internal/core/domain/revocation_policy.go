package domain

import "strings"

// RevocationPolicy decides how the revocation store behaves when Redis is
// unreachable. Exactly one policy is wired at construction time; the service
// never mixes the two.
type RevocationPolicy string

const (
	// RevocationFailOpen treats an unreachable store as "not revoked" and
	// makes revocation writes best-effort. A revoked-but-unverifiable token
	// is honoured until its natural expiry.
	RevocationFailOpen RevocationPolicy = "fail_open"
	// RevocationFailClosed propagates store errors to the caller, so a cache
	// outage rejects authentication and makes logout fail loudly.
	RevocationFailClosed RevocationPolicy = "fail_closed"
)

// ParseRevocationPolicy normalises textual input, defaulting to fail-open.
func ParseRevocationPolicy(value string) RevocationPolicy {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(RevocationFailClosed), "strict":
		return RevocationFailClosed
	default:
		return RevocationFailOpen
	}
}

// FailsOpen reports whether store failures degrade to "not revoked".
func (p RevocationPolicy) FailsOpen() bool {
	return p != RevocationFailClosed
}
