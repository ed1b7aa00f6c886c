package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T, fake *fakeAsyncProducer) *EventPublisher {
	t.Helper()

	producer := &Producer{
		producer: fake,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "second",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	return NewEventPublisher(producer, config.AppSettings{
		Name: "second-api",
		Env:  "test",
	}, zaptest.NewLogger(t))
}

func TestPublishSessionRevoked(t *testing.T) {
	fake := newFakeAsyncProducer()
	publisher := newTestPublisher(t, fake)

	revokedAt := time.Date(2025, 10, 31, 12, 0, 0, 0, time.UTC)
	event := domain.SessionRevokedEvent{
		EventID:   "event-123",
		JTI:       "jti-456",
		RevokedAt: revokedAt,
		ExpiresAt: revokedAt.Add(time.Hour),
	}

	if err := publisher.PublishSessionRevoked(context.Background(), event); err != nil {
		t.Fatalf("PublishSessionRevoked returned error: %v", err)
	}

	var msg *sarama.ProducerMessage
	select {
	case msg = <-fake.input:
	default:
		t.Fatal("expected a message on the producer input channel")
	}

	if msg.Topic != "second.session.revoked" {
		t.Fatalf("unexpected topic %q", msg.Topic)
	}

	raw, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("encode message value: %v", err)
	}

	var envelope struct {
		EventID   string `json:"event_id"`
		EventType string `json:"event_type"`
		Version   string `json:"version"`
		Payload   struct {
			JTI       string    `json:"jti"`
			RevokedAt time.Time `json:"revoked_at"`
			ExpiresAt time.Time `json:"expires_at"`
		} `json:"payload"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}

	if envelope.EventID != "event-123" {
		t.Fatalf("unexpected event id %q", envelope.EventID)
	}
	if envelope.EventType != "session.revoked" {
		t.Fatalf("unexpected event type %q", envelope.EventType)
	}
	if envelope.Payload.JTI != "jti-456" {
		t.Fatalf("unexpected jti %q", envelope.Payload.JTI)
	}
	if !envelope.Payload.RevokedAt.Equal(revokedAt) {
		t.Fatalf("unexpected revoked_at %v", envelope.Payload.RevokedAt)
	}
	if envelope.Metadata["service"] != "second-api" {
		t.Fatalf("unexpected service metadata %q", envelope.Metadata["service"])
	}
}

func TestPublishUserRegisteredMasksEmail(t *testing.T) {
	fake := newFakeAsyncProducer()
	publisher := newTestPublisher(t, fake)

	registeredAt := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	event := domain.UserRegisteredEvent{
		EventID:      "event-456",
		UserID:       "user-789",
		Email:        "john.doe@example.com",
		Role:         "User",
		RegisteredAt: registeredAt,
	}

	if err := publisher.PublishUserRegistered(context.Background(), event); err != nil {
		t.Fatalf("PublishUserRegistered returned error: %v", err)
	}

	msg := <-fake.input
	if msg.Topic != "second.user.registered" {
		t.Fatalf("unexpected topic %q", msg.Topic)
	}

	raw, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("encode message value: %v", err)
	}

	var envelope struct {
		UserID  string `json:"user_id"`
		Payload struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}

	if envelope.UserID != "user-789" {
		t.Fatalf("unexpected user id %q", envelope.UserID)
	}
	if envelope.Payload.Email != "joh***@example.com" {
		t.Fatalf("expected masked email, got %q", envelope.Payload.Email)
	}
	if envelope.Payload.Role != "User" {
		t.Fatalf("unexpected role %q", envelope.Payload.Role)
	}
}

func TestPublishRespectsContextCancellation(t *testing.T) {
	fake := newFakeAsyncProducer()
	// Fill the buffered input channel so publish blocks.
	fake.input <- &sarama.ProducerMessage{}
	publisher := newTestPublisher(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.PublishProductListed(ctx, domain.ProductListedEvent{
		EventID:      "event-999",
		ProductID:    "product-1",
		SellerUserID: "user-1",
		Title:        "bike",
		Price:        100,
		ListedAt:     time.Now(),
	})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
}
