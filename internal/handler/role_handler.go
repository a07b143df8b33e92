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

// RoleHandler handles role catalog and assignment HTTP requests
type RoleHandler struct {
	roleService service.RoleService
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// Create adds a role
// POST /v1/authorization/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req dto.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrRoleSlugExists) {
			response.Conflict(c, "Role with this name already exists")
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Created(c, role)
}

// List returns roles matching the optional filter
// GET /v1/authorization/roles
func (h *RoleHandler) List(c *gin.Context) {
	var query dto.RoleFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	filter := &domain.RoleFilter{
		Name:        query.Name,
		Slug:        query.Slug,
		Description: query.Description,
	}

	roles, err := h.roleService.List(c.Request.Context(), filter)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.Success(c, roles)
}

// Get returns one role with its permission links
// GET /v1/authorization/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	id := c.Param("id")

	role, err := h.roleService.GetOrFail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			response.NotFound(c, fmt.Sprintf("Role with ID %s not found", id))
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Success(c, role)
}

// Update partially updates a role
// PATCH /v1/authorization/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoleNotFound):
			response.NotFound(c, fmt.Sprintf("Role with ID %s not found", id))
		case errors.Is(err, domain.ErrRoleSlugExists):
			response.Conflict(c, "Role with this name already exists")
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.Success(c, role)
}

// Delete removes a role
// DELETE /v1/authorization/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.roleService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			response.NotFound(c, fmt.Sprintf("Role with ID %s not found", id))
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Role deleted successfully"})
}

// AssignPermissions links permissions to a role
// POST /v1/authorization/roles/:id/permissions
func (h *RoleHandler) AssignPermissions(c *gin.Context) {
	id := c.Param("id")

	var req dto.RolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	links, err := h.roleService.AssignPermissions(c.Request.Context(), id, req.PermissionIDs)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoleNotFound):
			response.NotFound(c, fmt.Sprintf("Role with ID %s not found", id))
		case errors.Is(err, domain.ErrSomePermissionsMissing):
			response.BadRequest(c, "Some permissions do not exist")
		case errors.Is(err, domain.ErrNoNewPermissions):
			response.BadRequest(c, "All requested permissions are already assigned to this role")
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.Created(c, links)
}

// RemovePermissions unlinks permissions from a role
// DELETE /v1/authorization/roles/:id/permissions
func (h *RoleHandler) RemovePermissions(c *gin.Context) {
	id := c.Param("id")

	var req dto.RolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.roleService.RemovePermissions(c.Request.Context(), id, req.PermissionIDs); err != nil {
		switch {
		case errors.Is(err, domain.ErrRoleNotFound):
			response.NotFound(c, fmt.Sprintf("Role with ID %s not found", id))
		case errors.Is(err, domain.ErrNoLinkedPermissions):
			response.BadRequest(c, "None of the requested permissions are assigned to this role")
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.Success(c, gin.H{"message": "Permissions removed successfully"})
}

// GetPermissions returns the role's permission links
// GET /v1/authorization/roles/:id/permissions
func (h *RoleHandler) GetPermissions(c *gin.Context) {
	id := c.Param("id")

	links, err := h.roleService.GetPermissions(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			response.NotFound(c, fmt.Sprintf("Role with ID %s not found", id))
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Success(c, links)
}

// GetUsers returns the role's user links
// GET /v1/authorization/roles/:id/users
func (h *RoleHandler) GetUsers(c *gin.Context) {
	id := c.Param("id")

	links, err := h.roleService.GetUsers(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			response.NotFound(c, fmt.Sprintf("Role with ID %s not found", id))
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Success(c, links)
}

// AssignUserRole gives a user their single role
// POST /v1/authorization/roles/users
func (h *RoleHandler) AssignUserRole(c *gin.Context) {
	var req dto.AssignUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	link, err := h.roleService.AssignUserRole(c.Request.Context(), req.UserID, req.RoleID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoleNotFound):
			response.NotFound(c, fmt.Sprintf("Role with ID %s not found", req.RoleID))
		case errors.Is(err, domain.ErrUserNotFound):
			response.NotFound(c, fmt.Sprintf("User with ID %s not found", req.UserID))
		case errors.Is(err, domain.ErrUserNotAdmin):
			response.BadRequest(c, "Only admin users can be assigned a role")
		default:
			response.InternalError(c, err)
		}
		return
	}

	response.Created(c, link)
}

// RemoveUserRole removes a user's role link
// DELETE /v1/authorization/roles/users/:user_id
func (h *RoleHandler) RemoveUserRole(c *gin.Context) {
	userID := c.Param("user_id")

	if err := h.roleService.RemoveUserRole(c.Request.Context(), userID); err != nil {
		if errors.Is(err, domain.ErrUserRoleNotFound) {
			response.NotFound(c, fmt.Sprintf("User with ID %s has no role assigned", userID))
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Role removed from user successfully"})
}
