package domain

import "time"

// ChatRoom is the single conversation between a buyer and a seller about one
// product. One room exists per (product, buyer) pair.
type ChatRoom struct {
	ID        string
	ProductID string
	BuyerID   string
	SellerID  string

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// IsParticipant reports whether the user may read or post in the room.
func (r ChatRoom) IsParticipant(userID string) bool {
	return userID == r.BuyerID || userID == r.SellerID
}

// Message is a single chat message inside a room.
type Message struct {
	ID         string
	ChatRoomID string
	SenderID   string
	Content    string
	SentAt     time.Time
	CreatedAt  time.Time
}
