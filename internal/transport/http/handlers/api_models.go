package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/core/port"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes a minimal view of a user returned by the API.
type UserSummary struct {
	ID            string      `json:"id"`
	Email         string      `json:"email"`
	Role          domain.Role `json:"role"`
	EmailVerified bool        `json:"email_verified"`
	SellerRating  *float64    `json:"seller_rating,omitempty"`
	ListingLimit  int         `json:"listing_limit"`
	CreatedAt     time.Time   `json:"created_at"`
}

// RegisterRequest defines the account registration payload. Role is optional
// and limited to User and Seller; admins are created out of band.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=User Seller"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse describes the token pair returned by register, login, refresh,
// and become-seller.
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"`
	User         UserSummary `json:"user"`
}

// TokenRefreshRequest represents the payload to refresh an access token.
type TokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// EmailRequest carries a bare email address, used by the verification and
// password-reset initiation endpoints.
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// TokenRequest carries a single-use opaque token from an emailed link.
type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// PasswordResetConfirmRequest captures a password reset confirmation payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ProductCreateRequest defines the payload for listing a product.
type ProductCreateRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Price       int      `json:"price" binding:"min=0"`
	Condition   string   `json:"condition" binding:"required"`
	ImageURLs   []string `json:"image_urls"`
}

// ProductUpdateRequest defines the payload for updating a listing. Absent
// fields are left unchanged.
type ProductUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int    `json:"price,omitempty"`
	Condition   *string `json:"condition,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// ProductImagePayload describes one listing photo.
type ProductImagePayload struct {
	ID       string `json:"id"`
	ImageURL string `json:"image_url"`
	Order    int    `json:"order"`
}

// ProductImageRequest attaches a photo to a listing.
type ProductImageRequest struct {
	ImageURL string `json:"image_url" binding:"required,url"`
}

// ProductPayload summarizes a listing in API responses.
type ProductPayload struct {
	ID           string                  `json:"id"`
	SellerUserID string                  `json:"seller_user_id"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description,omitempty"`
	Price        int                     `json:"price"`
	Condition    domain.ProductCondition `json:"condition"`
	Status       domain.ProductStatus    `json:"status"`
	Images       []ProductImagePayload   `json:"images,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    *time.Time              `json:"updated_at,omitempty"`
}

// ProductListResponse wraps a page of listings.
type ProductListResponse struct {
	Products []ProductPayload `json:"products"`
	Total    int              `json:"total"`
	Offset   int              `json:"offset"`
	Limit    int              `json:"limit"`
}

// ChatStartRequest opens a conversation about a listing.
type ChatStartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// ChatRoomPayload summarizes a conversation.
type ChatRoomPayload struct {
	ID        string     `json:"id"`
	ProductID string     `json:"product_id"`
	BuyerID   string     `json:"buyer_id"`
	SellerID  string     `json:"seller_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ChatRoomListResponse wraps a page of conversations.
type ChatRoomListResponse struct {
	Rooms  []ChatRoomPayload `json:"rooms"`
	Total  int               `json:"total"`
	Offset int               `json:"offset"`
	Limit  int               `json:"limit"`
}

// MessageSendRequest posts a chat message.
type MessageSendRequest struct {
	Content string `json:"content" binding:"required"`
}

// MessagePayload is one chat message in API responses.
type MessagePayload struct {
	ID         string    `json:"id"`
	ChatRoomID string    `json:"chat_room_id"`
	SenderID   string    `json:"sender_id"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
}

// MessageListResponse wraps a page of chat messages, oldest first.
type MessageListResponse struct {
	Messages []MessagePayload `json:"messages"`
	Total    int              `json:"total"`
	Offset   int              `json:"offset"`
	Limit    int              `json:"limit"`
}

// ReportCreateRequest files a complaint against a user or a listing.
type ReportCreateRequest struct {
	TargetType string `json:"target_type" binding:"required"`
	TargetID   string `json:"target_id" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

// ReportPayload summarizes a filed report.
type ReportPayload struct {
	ID         string                  `json:"id"`
	ReporterID string                  `json:"reporter_id"`
	TargetType domain.ReportTargetType `json:"target_type"`
	TargetID   string                  `json:"target_id"`
	Reason     string                  `json:"reason"`
	CreatedAt  time.Time               `json:"created_at"`
}

// ReportListResponse wraps a page of reports.
type ReportListResponse struct {
	Reports []ReportPayload `json:"reports"`
	Total   int             `json:"total"`
	Offset  int             `json:"offset"`
	Limit   int             `json:"limit"`
}

// ListingLimitRequest sets a seller's active-listing cap.
type ListingLimitRequest struct {
	Limit int `json:"limit" binding:"required,min=1"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// newUserSummary converts a domain user to a summary suitable for API responses.
func newUserSummary(user domain.User) UserSummary {
	return UserSummary{
		ID:            user.ID,
		Email:         user.Email,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		SellerRating:  user.SellerRating,
		ListingLimit:  user.ListingLimit,
		CreatedAt:     user.CreatedAt,
	}
}

func newProductPayload(product domain.Product) ProductPayload {
	payload := ProductPayload{
		ID:           product.ID,
		SellerUserID: product.SellerUserID,
		Title:        product.Title,
		Description:  product.Description,
		Price:        product.Price,
		Condition:    product.Condition,
		Status:       product.Status,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}

	for _, image := range product.Images {
		payload.Images = append(payload.Images, ProductImagePayload{
			ID:       image.ID,
			ImageURL: image.ImageURL,
			Order:    image.Order,
		})
	}

	return payload
}

func newProductPayloads(products []domain.Product) []ProductPayload {
	out := make([]ProductPayload, 0, len(products))
	for _, product := range products {
		out = append(out, newProductPayload(product))
	}
	return out
}

func newChatRoomPayload(room domain.ChatRoom) ChatRoomPayload {
	return ChatRoomPayload{
		ID:        room.ID,
		ProductID: room.ProductID,
		BuyerID:   room.BuyerID,
		SellerID:  room.SellerID,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

func newMessagePayload(message domain.Message) MessagePayload {
	return MessagePayload{
		ID:         message.ID,
		ChatRoomID: message.ChatRoomID,
		SenderID:   message.SenderID,
		Content:    message.Content,
		SentAt:     message.SentAt,
	}
}

func newReportPayload(report domain.Report) ReportPayload {
	return ReportPayload{
		ID:         report.ID,
		ReporterID: report.ReporterID,
		TargetType: report.TargetType,
		TargetID:   report.TargetID,
		Reason:     report.Reason,
		CreatedAt:  report.CreatedAt,
	}
}

// pageFromQuery parses limit/offset query parameters with bounded defaults.
func pageFromQuery(c *gin.Context) port.Page {
	page := port.Page{Limit: defaultPageLimit}

	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			page.Limit = limit
		}
	}
	if page.Limit > maxPageLimit {
		page.Limit = maxPageLimit
	}

	if raw := c.Query("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			page.Offset = offset
		}
	}

	return page
}
