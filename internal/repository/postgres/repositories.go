package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users     *UserRepository
	Products  *ProductRepository
	ChatRooms *ChatRoomRepository
	Messages  *MessageRepository
	Reports   *ReportRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(pool),
		Products:  NewProductRepository(pool),
		ChatRooms: NewChatRoomRepository(pool),
		Messages:  NewMessageRepository(pool),
		Reports:   NewReportRepository(pool),
	}
}
