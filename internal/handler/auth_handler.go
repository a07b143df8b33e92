package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/dto"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/middleware"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/service"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/response"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user login
// POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	client := service.ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}

	result, err := h.authService.Login(c.Request.Context(), &req, client)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			response.BadRequest(c, "Invalid credentials")
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Success(c, result)
}

// RefreshToken handles token refresh
// POST /v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	client := service.ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), &req, client)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired):
			response.Unauthorized(c, "Token expired")
		case errors.Is(err, domain.ErrUserNotFound):
			response.BadRequest(c, "User not found")
		case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrWrongTokenType):
			response.Unauthorized(c, "Invalid token")
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.Success(c, result)
}

// AuthUser returns the account behind the bearer token
// GET /v1/auth/user
func (h *AuthHandler) AuthUser(c *gin.Context) {
	user, err := h.authService.AuthUser(c.Request.Context(), c.GetString(middleware.ContextAccessToken))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired):
			response.Unauthorized(c, "Token expired")
		case errors.Is(err, domain.ErrUserNotFound):
			response.BadRequest(c, "User not found")
		case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrWrongTokenType):
			response.Unauthorized(c, "Invalid token")
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.Success(c, dto.ToUserResponse(user))
}

// UpdatePassword changes the authenticated user's password
// PATCH /v1/auth/users/password
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if valid, msg := req.ValidatePassword(); !valid {
		response.BadRequest(c, msg)
		return
	}

	userID := c.GetString(middleware.ContextUserID)

	if err := h.authService.UpdatePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			response.BadRequest(c, "Invalid credentials")
		case errors.Is(err, domain.ErrUserNotFound):
			response.NotFound(c, "User with ID "+userID+" not found")
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.Success(c, gin.H{"message": "Password updated successfully"})
}
