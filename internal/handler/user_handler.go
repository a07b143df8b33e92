package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/dto"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/service"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/response"
)

// UserHandler handles CRM account HTTP requests
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create adds a user
// POST /v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if valid, msg := req.ValidatePhone(); !valid {
		response.BadRequest(c, msg)
		return
	}
	if valid, msg := req.ValidatePassword(); !valid {
		response.BadRequest(c, msg)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailExists):
			response.Conflict(c, "User with this email already exists")
		case errors.Is(err, domain.ErrPhoneExists):
			response.Conflict(c, "User with this phone already exists")
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.Created(c, dto.ToUserResponse(user))
}

// List returns all users
// GET /v1/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.ToUserResponse(u))
	}

	response.Success(c, out)
}

// Get returns one user
// GET /v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")

	user, err := h.userService.GetOrFail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			response.NotFound(c, fmt.Sprintf("User with ID %s not found", id))
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Success(c, dto.ToUserResponse(user))
}

// Update partially updates a user
// PATCH /v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			response.NotFound(c, fmt.Sprintf("User with ID %s not found", id))
		case errors.Is(err, domain.ErrEmailExists):
			response.Conflict(c, "User with this email already exists")
		case errors.Is(err, domain.ErrPhoneExists):
			response.Conflict(c, "User with this phone already exists")
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.Success(c, dto.ToUserResponse(user))
}
