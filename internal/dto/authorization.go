package dto

// CreatePermissionRequest creates a catalog permission. The slug is derived
// server-side from subject and action.
type CreatePermissionRequest struct {
	Subject     string `json:"subject" binding:"required,min=2"`
	Action      string `json:"action" binding:"required,oneof=create read update delete export import"`
	Description string `json:"description"`
}

// UpdatePermissionRequest partially updates a permission. Nil fields are left
// untouched; changing subject or action recomputes the slug.
type UpdatePermissionRequest struct {
	Subject     *string `json:"subject" binding:"omitempty,min=2"`
	Action      *string `json:"action" binding:"omitempty,oneof=create read update delete export import"`
	Description *string `json:"description"`
}

// PermissionFilterQuery is the optional field-equality filter for listing.
type PermissionFilterQuery struct {
	Subject     string `form:"subject"`
	Action      string `form:"action"`
	Slug        string `form:"slug"`
	Description string `form:"description"`
}

// CreateRoleRequest creates a role. The slug is derived from the name.
type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required,min=2"`
	Description string `json:"description"`
}

// UpdateRoleRequest partially updates a role. A name change recomputes the slug.
type UpdateRoleRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2"`
	Description *string `json:"description"`
}

// RoleFilterQuery is the optional field-equality filter for listing.
type RoleFilterQuery struct {
	Name        string `form:"name"`
	Slug        string `form:"slug"`
	Description string `form:"description"`
}

// RolePermissionsRequest names the permissions to assign to or remove from a role.
type RolePermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids" binding:"required,min=1,dive,required"`
}

// AssignUserRoleRequest links a user to a role.
type AssignUserRoleRequest struct {
	UserID string `json:"user_id" binding:"required"`
	RoleID string `json:"role_id" binding:"required"`
}
