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

// PermissionHandler handles permission catalog HTTP requests
type PermissionHandler struct {
	permissionService service.PermissionService
}

// NewPermissionHandler creates a new PermissionHandler
func NewPermissionHandler(permissionService service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// Create adds a permission to the catalog
// POST /v1/authorization/permissions
func (h *PermissionHandler) Create(c *gin.Context) {
	var req dto.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	permission, err := h.permissionService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrPermissionSlugExists) {
			response.Conflict(c, "Permission with this subject and action already exists")
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Created(c, permission)
}

// List returns permissions matching the optional filter
// GET /v1/authorization/permissions
func (h *PermissionHandler) List(c *gin.Context) {
	var query dto.PermissionFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	filter := &domain.PermissionFilter{
		Subject:     query.Subject,
		Action:      query.Action,
		Slug:        query.Slug,
		Description: query.Description,
	}

	permissions, err := h.permissionService.List(c.Request.Context(), filter)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.Success(c, permissions)
}

// Get returns one permission
// GET /v1/authorization/permissions/:id
func (h *PermissionHandler) Get(c *gin.Context) {
	id := c.Param("id")

	permission, err := h.permissionService.GetOrFail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPermissionNotFound) {
			response.NotFound(c, fmt.Sprintf("Permission with ID %s not found", id))
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Success(c, permission)
}

// Update partially updates a permission
// PATCH /v1/authorization/permissions/:id
func (h *PermissionHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	permission, err := h.permissionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPermissionNotFound):
			response.NotFound(c, fmt.Sprintf("Permission with ID %s not found", id))
		case errors.Is(err, domain.ErrPermissionSlugExists):
			response.Conflict(c, "Permission with this subject and action already exists")
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.Success(c, permission)
}

// Delete removes a permission from the catalog
// DELETE /v1/authorization/permissions/:id
func (h *PermissionHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.permissionService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrPermissionNotFound) {
			response.NotFound(c, fmt.Sprintf("Permission with ID %s not found", id))
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Permission deleted successfully"})
}
