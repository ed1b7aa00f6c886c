package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Deaglesso/Second/internal/usecase"
)

// AdminHandler exposes moderation endpoints over user accounts.
type AdminHandler struct {
	admin *usecase.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admin *usecase.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// RegisterRoutes binds admin user-management routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.PATCH("/sellers/:id/listing-limit", h.setListingLimit)
	r.DELETE("/users/:id", h.deleteUser)
}

// SetListingLimit godoc
// @Summary Adjust a seller's active-listing cap
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Seller user ID"
// @Param request body ListingLimitRequest true "New limit"
// @Success 200 {object} UserSummary
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/sellers/{id}/listing-limit [patch]
func (h *AdminHandler) setListingLimit(c *gin.Context) {
	var req ListingLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "limit must be a positive integer"))
		return
	}

	user, err := h.admin.SetListingLimit(c.Request.Context(), c.Param("id"), req.Limit)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidListingLimit, Status: http.StatusBadRequest, Message: "limit must be a positive integer"},
			{Err: usecase.ErrNotSeller, Status: http.StatusBadRequest, Message: "user is not a seller"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to update listing limit")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(*user))
}

// DeleteUser godoc
// @Summary Soft-delete a user account
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204 {string} string ""
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/users/{id} [delete]
func (h *AdminHandler) deleteUser(c *gin.Context) {
	if err := h.admin.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}
