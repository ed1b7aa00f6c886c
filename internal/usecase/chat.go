package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/repository"
)

var (
	// ErrChatNotFound indicates the chat room does not exist.
	ErrChatNotFound = errors.New("chat room not found")
	// ErrNotChatParticipant indicates the caller is neither buyer nor seller
	// in the room.
	ErrNotChatParticipant = errors.New("not a chat participant")
	// ErrChatWithSelf indicates a seller tried to open a chat on their own
	// listing.
	ErrChatWithSelf = errors.New("cannot start a chat on your own listing")
	// ErrEmptyMessage indicates a blank message body.
	ErrEmptyMessage = errors.New("message content is required")
)

// ChatService manages buyer-seller conversations.
type ChatService struct {
	products port.ProductRepository
	rooms    port.ChatRoomRepository
	messages port.MessageRepository
}

// NewChatService constructs a ChatService instance.
func NewChatService(products port.ProductRepository, rooms port.ChatRoomRepository, messages port.MessageRepository) *ChatService {
	return &ChatService{
		products: products,
		rooms:    rooms,
		messages: messages,
	}
}

// StartChat opens the conversation between the buyer and the product's seller,
// returning the existing room when one is already open. One room exists per
// (product, buyer) pair.
func (s *ChatService) StartChat(ctx context.Context, productID, buyerID string) (*domain.ChatRoom, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}

	if product.SellerUserID == buyerID {
		return nil, ErrChatWithSelf
	}

	existing, err := s.rooms.GetByProductAndBuyer(ctx, productID, buyerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup chat room: %w", err)
	}

	room := domain.ChatRoom{
		ID:        uuid.NewString(),
		ProductID: productID,
		BuyerID:   buyerID,
		SellerID:  product.SellerUserID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		// A concurrent StartChat for the same pair loses the insert race;
		// return the row the winner created.
		if isUniqueViolation(err) {
			return s.rooms.GetByProductAndBuyer(ctx, productID, buyerID)
		}
		return nil, fmt.Errorf("create chat room: %w", err)
	}

	return &room, nil
}

// ListRooms returns the caller's conversations, most recently active first.
func (s *ChatService) ListRooms(ctx context.Context, userID string, page port.Page) ([]domain.ChatRoom, int, error) {
	return s.rooms.ListByUser(ctx, userID, page)
}

// GetRoom returns one room the caller participates in.
func (s *ChatService) GetRoom(ctx context.Context, roomID, callerID string) (*domain.ChatRoom, error) {
	room, err := s.participantRoom(ctx, roomID, callerID)
	if err != nil {
		return nil, err
	}
	return room, nil
}

// SendMessage posts into a room the caller participates in.
func (s *ChatService) SendMessage(ctx context.Context, roomID, senderID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	if _, err := s.participantRoom(ctx, roomID, senderID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	message := domain.Message{
		ID:         uuid.NewString(),
		ChatRoomID: roomID,
		SenderID:   senderID,
		Content:    content,
		SentAt:     now,
		CreatedAt:  now,
	}

	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	return &message, nil
}

// ListMessages returns a room's messages oldest first, for participants only.
func (s *ChatService) ListMessages(ctx context.Context, roomID, callerID string, page port.Page) ([]domain.Message, int, error) {
	if _, err := s.participantRoom(ctx, roomID, callerID); err != nil {
		return nil, 0, err
	}
	return s.messages.ListByChatRoom(ctx, roomID, page)
}

func (s *ChatService) participantRoom(ctx context.Context, roomID, callerID string) (*domain.ChatRoom, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("lookup chat room: %w", err)
	}

	if !room.IsParticipant(callerID) {
		return nil, ErrNotChatParticipant
	}

	return room, nil
}
