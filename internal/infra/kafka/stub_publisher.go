package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs second.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"email":         logger.MaskEmail(event.Email),
		"role":          event.Role,
		"registered_at": event.RegisteredAt,
	}
	p.logEvent("user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishUserBecameSeller logs second.user.became_seller events.
func (p *StubPublisher) PublishUserBecameSeller(_ context.Context, event domain.UserBecameSellerEvent) error {
	payload := map[string]any{
		"user_id":     event.UserID,
		"promoted_at": event.PromotedAt,
	}
	p.logEvent("user.became_seller", event.UserID, event.PromotedAt, payload)
	return nil
}

// PublishSessionRevoked logs second.session.revoked events.
func (p *StubPublisher) PublishSessionRevoked(_ context.Context, event domain.SessionRevokedEvent) error {
	payload := map[string]any{
		"jti":        event.JTI,
		"revoked_at": event.RevokedAt,
		"expires_at": event.ExpiresAt,
	}
	p.logEvent("session.revoked", "", event.RevokedAt, payload)
	return nil
}

// PublishProductListed logs second.product.listed events.
func (p *StubPublisher) PublishProductListed(_ context.Context, event domain.ProductListedEvent) error {
	payload := map[string]any{
		"product_id":     event.ProductID,
		"seller_user_id": event.SellerUserID,
		"title":          event.Title,
		"price":          event.Price,
		"listed_at":      event.ListedAt,
	}
	p.logEvent("product.listed", event.SellerUserID, event.ListedAt, payload)
	return nil
}

// PublishReportFiled logs second.report.filed events.
func (p *StubPublisher) PublishReportFiled(_ context.Context, event domain.ReportFiledEvent) error {
	payload := map[string]any{
		"report_id":   event.ReportID,
		"reporter_id": event.ReporterID,
		"target_type": event.TargetType,
		"target_id":   event.TargetID,
		"filed_at":    event.FiledAt,
	}
	p.logEvent("report.filed", event.ReporterID, event.FiledAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
