package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
	"github.com/Deaglesso/Second/internal/repository"
)

var chatRoomColumns = []string{
	"id",
	"product_id",
	"buyer_id",
	"seller_id",
	"created_at",
	"updated_at",
}

// ChatRoomRepository implements port.ChatRoomRepository using PostgreSQL.
type ChatRoomRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewChatRoomRepository wires a PostgreSQL-backed chat room repository.
func NewChatRoomRepository(exec pgExecutor) *ChatRoomRepository {
	return &ChatRoomRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a chat room. The (product_id, buyer_id) unique index makes a
// concurrent duplicate surface as a unique-violation error.
func (r *ChatRoomRepository) Create(ctx context.Context, room domain.ChatRoom) error {
	stmt, args, err := r.builder.Insert("second.chat_rooms").
		Columns("id", "product_id", "buyer_id", "seller_id", "created_at").
		Values(room.ID, room.ProductID, room.BuyerID, room.SellerID, room.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert chat room sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert chat room: %w", err)
	}

	return nil
}

// GetByID retrieves a chat room by identifier.
func (r *ChatRoomRepository) GetByID(ctx context.Context, id string) (*domain.ChatRoom, error) {
	stmt, args, err := r.builder.
		Select(chatRoomColumns...).
		From("second.chat_rooms").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select chat room sql: %w", err)
	}

	return scanChatRoom(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByProductAndBuyer retrieves the room for a (product, buyer) pair, which
// is unique by construction.
func (r *ChatRoomRepository) GetByProductAndBuyer(ctx context.Context, productID, buyerID string) (*domain.ChatRoom, error) {
	stmt, args, err := r.builder.
		Select(chatRoomColumns...).
		From("second.chat_rooms").
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"buyer_id": buyerID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select chat room by product and buyer sql: %w", err)
	}

	return scanChatRoom(r.exec.QueryRow(ctx, stmt, args...))
}

// ListByUser returns rooms the user participates in, buyer or seller side,
// most recently updated first.
func (r *ChatRoomRepository) ListByUser(ctx context.Context, userID string, page port.Page) ([]domain.ChatRoom, int, error) {
	participant := squirrel.Or{
		squirrel.Eq{"buyer_id": userID},
		squirrel.Eq{"seller_id": userID},
	}

	query := r.builder.
		Select(chatRoomColumns...).
		From("second.chat_rooms").
		Where(participant).
		OrderBy("COALESCE(updated_at, created_at) DESC")

	if page.Limit > 0 {
		query = query.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		query = query.Offset(uint64(page.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list chat rooms sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query chat rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]domain.ChatRoom, 0)
	for rows.Next() {
		room, err := scanChatRoom(rows)
		if err != nil {
			return nil, 0, err
		}
		rooms = append(rooms, *room)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate chat rooms: %w", err)
	}

	countStmt, countArgs, err := r.builder.
		Select("COUNT(*)").
		From("second.chat_rooms").
		Where(participant).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count chat rooms sql: %w", err)
	}

	var total int64
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("scan chat rooms count: %w", err)
	}

	return rooms, int(total), nil
}

func scanChatRoom(row pgx.Row) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	if err := row.Scan(
		&room.ID,
		&room.ProductID,
		&room.BuyerID,
		&room.SellerID,
		&room.CreatedAt,
		&room.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan chat room: %w", err)
	}
	return &room, nil
}

// MessageRepository implements port.MessageRepository using PostgreSQL.
type MessageRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewMessageRepository wires a PostgreSQL-backed message repository.
func NewMessageRepository(exec pgExecutor) *MessageRepository {
	return &MessageRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a message and bumps the room's updated_at so room listings
// sort by recent activity.
func (r *MessageRepository) Create(ctx context.Context, message domain.Message) error {
	stmt, args, err := r.builder.Insert("second.messages").
		Columns("id", "chat_room_id", "sender_id", "content", "sent_at", "created_at").
		Values(message.ID, message.ChatRoomID, message.SenderID, message.Content, message.SentAt, message.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert message sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	touch, touchArgs, err := r.builder.Update("second.chat_rooms").
		Set("updated_at", message.SentAt).
		Where(squirrel.Eq{"id": message.ChatRoomID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build touch chat room sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, touch, touchArgs...); err != nil {
		return fmt.Errorf("touch chat room: %w", err)
	}

	return nil
}

// ListByChatRoom returns messages oldest first.
func (r *MessageRepository) ListByChatRoom(ctx context.Context, chatRoomID string, page port.Page) ([]domain.Message, int, error) {
	query := r.builder.
		Select("id", "chat_room_id", "sender_id", "content", "sent_at", "created_at").
		From("second.messages").
		Where(squirrel.Eq{"chat_room_id": chatRoomID}).
		OrderBy("sent_at ASC")

	if page.Limit > 0 {
		query = query.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		query = query.Offset(uint64(page.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list messages sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var message domain.Message
		if err := rows.Scan(
			&message.ID,
			&message.ChatRoomID,
			&message.SenderID,
			&message.Content,
			&message.SentAt,
			&message.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate messages: %w", err)
	}

	countStmt, countArgs, err := r.builder.
		Select("COUNT(*)").
		From("second.messages").
		Where(squirrel.Eq{"chat_room_id": chatRoomID}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count messages sql: %w", err)
	}

	var total int64
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("scan messages count: %w", err)
	}

	return messages, int(total), nil
}

var (
	_ port.ChatRoomRepository = (*ChatRoomRepository)(nil)
	_ port.MessageRepository  = (*MessageRepository)(nil)
)
