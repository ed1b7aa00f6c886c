package port

import (
	"context"

	"github.com/Deaglesso/Second/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserBecameSeller(ctx context.Context, event domain.UserBecameSellerEvent) error
	PublishSessionRevoked(ctx context.Context, event domain.SessionRevokedEvent) error
	PublishProductListed(ctx context.Context, event domain.ProductListedEvent) error
	PublishReportFiled(ctx context.Context, event domain.ReportFiledEvent) error
}
