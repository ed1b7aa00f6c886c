package port

import (
	"context"

	"github.com/Deaglesso/Second/internal/core/domain"
)

// ChatRoomRepository persists chat rooms.
type ChatRoomRepository interface {
	Create(ctx context.Context, room domain.ChatRoom) error
	GetByID(ctx context.Context, id string) (*domain.ChatRoom, error)
	GetByProductAndBuyer(ctx context.Context, productID, buyerID string) (*domain.ChatRoom, error)
	ListByUser(ctx context.Context, userID string, page Page) ([]domain.ChatRoom, int, error)
}

// MessageRepository persists chat messages.
type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	ListByChatRoom(ctx context.Context, chatRoomID string, page Page) ([]domain.Message, int, error)
}
