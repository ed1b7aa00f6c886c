package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Deaglesso/Second/internal/transport/http/middleware"
	"github.com/Deaglesso/Second/internal/usecase"
)

// ChatHandler exposes buyer-seller conversation endpoints.
type ChatHandler struct {
	chats *usecase.ChatService
}

// NewChatHandler constructs ChatHandler.
func NewChatHandler(chats *usecase.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// RegisterRoutes binds chat routes; all of them require authentication.
func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.start)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.GET("/:id/messages", h.listMessages)
	r.POST("/:id/messages", h.sendMessage)
}

var chatErrorCases = []ErrorCase{
	{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
	{Err: usecase.ErrChatNotFound, Status: http.StatusNotFound, Message: "chat room not found"},
	{Err: usecase.ErrNotChatParticipant, Status: http.StatusForbidden, Message: "not a chat participant"},
	{Err: usecase.ErrChatWithSelf, Status: http.StatusBadRequest, Message: "cannot start a chat on your own listing"},
	{Err: usecase.ErrEmptyMessage, Status: http.StatusBadRequest, Message: "message content is required"},
}

// Start godoc
// @Summary Open a conversation about a listing
// @Description Returns the existing room when one is already open for the
// caller and product.
// @Tags Chats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChatStartRequest true "Chat payload"
// @Success 201 {object} ChatRoomPayload
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/chats [post]
func (h *ChatHandler) start(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ChatStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "product_id is required"))
		return
	}

	room, err := h.chats.StartChat(c.Request.Context(), req.ProductID, userID)
	if err != nil {
		RespondWithMappedError(c, err, chatErrorCases, http.StatusInternalServerError, "failed to start chat")
		return
	}

	c.JSON(http.StatusCreated, newChatRoomPayload(*room))
}

// List godoc
// @Summary List the caller's conversations, most recently active first
// @Tags Chats
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ChatRoomListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/chats [get]
func (h *ChatHandler) list(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	page := pageFromQuery(c)
	rooms, total, err := h.chats.ListRooms(c.Request.Context(), userID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list chats"))
		return
	}

	payloads := make([]ChatRoomPayload, 0, len(rooms))
	for _, room := range rooms {
		payloads = append(payloads, newChatRoomPayload(room))
	}

	c.JSON(http.StatusOK, ChatRoomListResponse{
		Rooms:  payloads,
		Total:  total,
		Offset: page.Offset,
		Limit:  page.Limit,
	})
}

// Get godoc
// @Summary Fetch one conversation the caller participates in
// @Tags Chats
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat room ID"
// @Success 200 {object} ChatRoomPayload
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/chats/{id} [get]
func (h *ChatHandler) get(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	room, err := h.chats.GetRoom(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		RespondWithMappedError(c, err, chatErrorCases, http.StatusInternalServerError, "failed to load chat")
		return
	}

	c.JSON(http.StatusOK, newChatRoomPayload(*room))
}

// ListMessages godoc
// @Summary List a conversation's messages, oldest first
// @Tags Chats
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat room ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} MessageListResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/chats/{id}/messages [get]
func (h *ChatHandler) listMessages(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	page := pageFromQuery(c)
	messages, total, err := h.chats.ListMessages(c.Request.Context(), c.Param("id"), userID, page)
	if err != nil {
		RespondWithMappedError(c, err, chatErrorCases, http.StatusInternalServerError, "failed to list messages")
		return
	}

	payloads := make([]MessagePayload, 0, len(messages))
	for _, message := range messages {
		payloads = append(payloads, newMessagePayload(message))
	}

	c.JSON(http.StatusOK, MessageListResponse{
		Messages: payloads,
		Total:    total,
		Offset:   page.Offset,
		Limit:    page.Limit,
	})
}

// SendMessage godoc
// @Summary Post a message into a conversation
// @Tags Chats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Chat room ID"
// @Param request body MessageSendRequest true "Message payload"
// @Success 201 {object} MessagePayload
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/chats/{id}/messages [post]
func (h *ChatHandler) sendMessage(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req MessageSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "content is required"))
		return
	}

	message, err := h.chats.SendMessage(c.Request.Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		RespondWithMappedError(c, err, chatErrorCases, http.StatusInternalServerError, "failed to send message")
		return
	}

	c.JSON(http.StatusCreated, newMessagePayload(*message))
}
