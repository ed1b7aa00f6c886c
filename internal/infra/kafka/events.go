package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/infra/config"
	"github.com/Deaglesso/Second/internal/infra/logger"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes second.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string    `json:"user_id"`
		Email        string    `json:"email"`
		Role         string    `json:"role"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		UserID:       event.UserID,
		Email:        logger.MaskEmail(event.Email),
		Role:         event.Role,
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishUserBecameSeller publishes second.user.became_seller events.
func (p *EventPublisher) PublishUserBecameSeller(ctx context.Context, event domain.UserBecameSellerEvent) error {
	payload := struct {
		UserID     string    `json:"user_id"`
		PromotedAt time.Time `json:"promoted_at"`
	}{
		UserID:     event.UserID,
		PromotedAt: event.PromotedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "user.became_seller", event.UserID, event.PromotedAt, payload)
}

// PublishSessionRevoked publishes second.session.revoked events.
func (p *EventPublisher) PublishSessionRevoked(ctx context.Context, event domain.SessionRevokedEvent) error {
	payload := struct {
		JTI       string    `json:"jti"`
		RevokedAt time.Time `json:"revoked_at"`
		ExpiresAt time.Time `json:"expires_at"`
	}{
		JTI:       event.JTI,
		RevokedAt: event.RevokedAt.UTC(),
		ExpiresAt: event.ExpiresAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "session.revoked", "", event.RevokedAt, payload)
}

// PublishProductListed publishes second.product.listed events.
func (p *EventPublisher) PublishProductListed(ctx context.Context, event domain.ProductListedEvent) error {
	payload := struct {
		ProductID    string    `json:"product_id"`
		SellerUserID string    `json:"seller_user_id"`
		Title        string    `json:"title"`
		Price        int       `json:"price"`
		ListedAt     time.Time `json:"listed_at"`
	}{
		ProductID:    event.ProductID,
		SellerUserID: event.SellerUserID,
		Title:        event.Title,
		Price:        event.Price,
		ListedAt:     event.ListedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "product.listed", event.SellerUserID, event.ListedAt, payload)
}

// PublishReportFiled publishes second.report.filed events.
func (p *EventPublisher) PublishReportFiled(ctx context.Context, event domain.ReportFiledEvent) error {
	payload := struct {
		ReportID   string    `json:"report_id"`
		ReporterID string    `json:"reporter_id"`
		TargetType string    `json:"target_type"`
		TargetID   string    `json:"target_id"`
		FiledAt    time.Time `json:"filed_at"`
	}{
		ReportID:   event.ReportID,
		ReporterID: event.ReporterID,
		TargetType: event.TargetType,
		TargetID:   event.TargetID,
		FiledAt:    event.FiledAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "report.filed", event.ReporterID, event.FiledAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
