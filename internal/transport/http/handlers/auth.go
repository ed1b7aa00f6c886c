package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Deaglesso/Second/internal/core/domain"
	"github.com/Deaglesso/Second/internal/infra/security"
	"github.com/Deaglesso/Second/internal/transport/http/middleware"
	"github.com/Deaglesso/Second/internal/usecase"
)

// AuthHandler exposes authentication and account endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// AuthRouteLimits carries optional rate-limit middleware for the
// credential-accepting routes.
type AuthRouteLimits struct {
	Register      []gin.HandlerFunc
	Login         []gin.HandlerFunc
	PasswordReset []gin.HandlerFunc
}

// RegisterRoutes binds authentication routes, applying optional middleware
// ahead of the credential-accepting handlers.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, limits AuthRouteLimits) {
	withLimit := func(limiters []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
		chain := append([]gin.HandlerFunc{}, limiters...)
		return append(chain, handler)
	}

	r.POST("/register", withLimit(limits.Register, h.register)...)
	r.POST("/login", withLimit(limits.Login, h.login)...)
	r.POST("/refresh", h.refresh)
	r.POST("/logout", h.logout)
	r.POST("/verify-email/request", withLimit(limits.PasswordReset, h.requestEmailVerification)...)
	r.POST("/verify-email", h.verifyEmail)
	r.POST("/forgot-password", withLimit(limits.PasswordReset, h.forgotPassword)...)
	r.POST("/reset-password", h.resetPassword)
}

// RegisterProtectedRoutes binds routes that require an authenticated caller.
func (h *AuthHandler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("", h.me)
	r.POST("/become-seller", h.becomeSeller)
}

// Register godoc
// @Summary Register a new account
// @Description Creates an account and returns an access/refresh token pair.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		var policyErr *security.PasswordValidationError
		if errors.As(err, &policyErr) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, policyErr.Error()))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrInvalidRole, Status: http.StatusBadRequest, Message: "role must be User or Seller"},
		}, http.StatusInternalServerError, "failed to register user")
		return
	}

	c.JSON(http.StatusCreated, newAuthResponse(result))
}

// Login godoc
// @Summary Authenticate with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} middleware.ProblemDetails
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid email or password"},
		}, http.StatusInternalServerError, "authentication failed")
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result))
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Description Rotates the refresh token; the presented token is consumed.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body TokenRefreshRequest true "Refresh payload"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) refresh(c *gin.Context) {
	var req TokenRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "refresh_token is required"))
		return
	}

	result, err := h.auth.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidRefreshToken, Status: http.StatusUnauthorized, Message: "invalid refresh token"},
			{Err: usecase.ErrExpiredRefreshToken, Status: http.StatusUnauthorized, Message: "refresh token expired"},
		}, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result))
}

// Logout godoc
// @Summary Revoke the presented access token
// @Description Marks the token's identifier revoked until its natural expiry
// and clears the stored refresh token.
// @Tags Authentication
// @Produce json
// @Success 204 {string} string ""
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) logout(c *gin.Context) {
	raw := bearerToken(c)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "missing access token"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), raw); err != nil {
		if errors.Is(err, security.ErrTokenInvalid) || errors.Is(err, security.ErrTokenExpired) {
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid access token"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to revoke session"))
		return
	}

	c.Status(http.StatusNoContent)
}

// RequestEmailVerification godoc
// @Summary Request an email verification link
// @Description Always returns 202; unknown and already-verified addresses are
// not distinguishable from the response.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Email payload"
// @Success 202 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/verify-email/request [post]
func (h *AuthHandler) requestEmailVerification(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid email payload"))
		return
	}

	if err := h.auth.RequestEmailVerification(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to send verification email"))
		return
	}

	c.JSON(http.StatusAccepted, MessageResponse{Message: "verification email sent if the address is registered"})
}

// VerifyEmail godoc
// @Summary Confirm an email address
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body TokenRequest true "Verification token"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/verify-email [post]
func (h *AuthHandler) verifyEmail(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "token is required"))
		return
	}

	if err := h.auth.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidToken, Status: http.StatusBadRequest, Message: "invalid verification token"},
			{Err: usecase.ErrExpiredToken, Status: http.StatusGone, Message: "verification token expired"},
		}, http.StatusInternalServerError, "failed to verify email")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "email verified"})
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Description Always returns 202; unknown addresses are not distinguishable
// from the response.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Email payload"
// @Success 202 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} middleware.ProblemDetails
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) forgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid email payload"))
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to send reset email"))
		return
	}

	c.JSON(http.StatusAccepted, MessageResponse{Message: "reset email sent if the address is registered"})
}

// ResetPassword godoc
// @Summary Complete a password reset
// @Description Consumes the reset token, sets the new password, and
// invalidates outstanding refresh tokens.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body PasswordResetConfirmRequest true "Reset payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) resetPassword(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "token and new_password are required"))
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		var policyErr *security.PasswordValidationError
		if errors.As(err, &policyErr) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, policyErr.Error()))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidToken, Status: http.StatusBadRequest, Message: "invalid reset token"},
			{Err: usecase.ErrExpiredToken, Status: http.StatusGone, Message: "reset token expired"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}

// Me godoc
// @Summary Return the authenticated user's profile
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserSummary
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users/me [get]
func (h *AuthHandler) me(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	user, err := h.auth.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to load user")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(*user))
}

// BecomeSeller godoc
// @Summary Promote the authenticated user to seller
// @Description Idempotent; returns a fresh token pair carrying the seller role.
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users/me/become-seller [post]
func (h *AuthHandler) becomeSeller(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	result, err := h.auth.BecomeSeller(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to promote user")
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result))
}

func newAuthResponse(result *usecase.AuthResult) AuthResponse {
	expiresIn := int(time.Until(result.ExpiresAt).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}

	return AuthResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
		User:         newUserSummary(result.User),
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
