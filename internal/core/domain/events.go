package domain

import "time"

// UserRegisteredEvent represents the payload for second.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Email        string
	Role         string
	RegisteredAt time.Time
}

// UserBecameSellerEvent represents the payload for second.user.became_seller messages.
type UserBecameSellerEvent struct {
	EventID    string
	UserID     string
	PromotedAt time.Time
}

// SessionRevokedEvent represents the payload for second.session.revoked messages.
type SessionRevokedEvent struct {
	EventID   string
	JTI       string
	RevokedAt time.Time
	ExpiresAt time.Time
}

// ProductListedEvent represents the payload for second.product.listed messages.
type ProductListedEvent struct {
	EventID      string
	ProductID    string
	SellerUserID string
	Title        string
	Price        int
	ListedAt     time.Time
}

// ReportFiledEvent represents the payload for second.report.filed messages.
type ReportFiledEvent struct {
	EventID    string
	ReportID   string
	ReporterID string
	TargetType string
	TargetID   string
	FiledAt    time.Time
}
