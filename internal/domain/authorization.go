package domain

import "time"

// Permission is a catalog entry naming one action on one subject. Its slug
// (`subject.action`, slugified) is globally unique.
type Permission struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	Action      string    `json:"action"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PermissionFilter is an optional field-equality filter for listing.
type PermissionFilter struct {
	Subject     string
	Action      string
	Slug        string
	Description string
}

// Role groups permissions under a unique name-derived slug.
type Role struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Permissions []*RolePermission `json:"permissions,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// RoleFilter is an optional field-equality filter for listing.
type RoleFilter struct {
	Name        string
	Slug        string
	Description string
}

// RolePermission links one permission to one role. A (role, permission) pair
// is never duplicated.
type RolePermission struct {
	ID           string      `json:"id"`
	RoleID       string      `json:"role_id"`
	PermissionID string      `json:"permission_id"`
	Permission   *Permission `json:"permission,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// UserRole links a user to their single role. At most one row per user;
// reassignment updates in place.
type UserRole struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RoleID    string    `json:"role_id"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
