package repository

import (
	"context"
	"time"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
)

// UserRepository provides access to user records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// PermissionRepository provides access to the permission catalog.
type PermissionRepository interface {
	Create(ctx context.Context, permission *domain.Permission) error
	GetByID(ctx context.Context, id string) (*domain.Permission, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Permission, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Permission, error)
	List(ctx context.Context, filter *domain.PermissionFilter) ([]*domain.Permission, error)
	Update(ctx context.Context, permission *domain.Permission) error
	Delete(ctx context.Context, id string) error
}

// RoleRepository provides access to the role catalog.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Role, error)
	List(ctx context.Context, filter *domain.RoleFilter) ([]*domain.Role, error)
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id string) error
}

// RolePermissionRepository manages role-permission links.
type RolePermissionRepository interface {
	GetByRoleID(ctx context.Context, roleID string) ([]*domain.RolePermission, error)
	CreateMany(ctx context.Context, links []*domain.RolePermission) error
	DeleteByRoleAndPermissions(ctx context.Context, roleID string, permissionIDs []string) (int64, error)
}

// UserRoleRepository manages user-role links. One row per user.
type UserRoleRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.UserRole, error)
	GetByRoleID(ctx context.Context, roleID string) ([]*domain.UserRole, error)
	Create(ctx context.Context, link *domain.UserRole) error
	Update(ctx context.Context, link *domain.UserRole) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// SessionRepository manages refresh-token sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenAndUser(ctx context.Context, refreshToken, userID string) (*domain.Session, error)
	UpdateClientInfo(ctx context.Context, id, ipAddress, userAgent string) error
}
