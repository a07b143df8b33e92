package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/dto"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/repository"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/slug"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/telemetry"
)

// RoleService defines the interface for role catalog and assignment operations.
type RoleService interface {
	// Create adds a role; fails when the name's slug already exists.
	Create(ctx context.Context, req *dto.CreateRoleRequest) (*domain.Role, error)
	// List returns roles matching the optional filter, name ascending.
	List(ctx context.Context, filter *domain.RoleFilter) ([]*domain.Role, error)
	// GetOrFail returns the role with its permission links eager-loaded.
	GetOrFail(ctx context.Context, id string) (*domain.Role, error)
	// Update applies a partial update; a name change recomputes the slug.
	Update(ctx context.Context, id string, req *dto.UpdateRoleRequest) (*domain.Role, error)
	// Delete removes the role.
	Delete(ctx context.Context, id string) error

	// AssignPermissions links the not-yet-linked subset of the requested
	// permissions to the role. Fails when any id is unknown, or when every
	// requested permission is already linked.
	AssignPermissions(ctx context.Context, roleID string, permissionIDs []string) ([]*domain.RolePermission, error)
	// RemovePermissions unlinks the requested permissions. Fails when none
	// of them are currently linked.
	RemovePermissions(ctx context.Context, roleID string, permissionIDs []string) error
	// GetPermissions returns the role's permission links.
	GetPermissions(ctx context.Context, roleID string) ([]*domain.RolePermission, error)
	// GetUsers returns the role's user links.
	GetUsers(ctx context.Context, roleID string) ([]*domain.UserRole, error)

	// AssignUserRole gives a user their single role, updating in place on
	// reassignment. Only admin-flagged users are eligible.
	AssignUserRole(ctx context.Context, userID, roleID string) (*domain.UserRole, error)
	// RemoveUserRole deletes a user's role link.
	RemoveUserRole(ctx context.Context, userID string) error
}

type roleService struct {
	roleRepo       repository.RoleRepository
	permissionRepo repository.PermissionRepository
	rolePermRepo   repository.RolePermissionRepository
	userRoleRepo   repository.UserRoleRepository
	userRepo       repository.UserRepository
}

// NewRoleService creates a new RoleService.
func NewRoleService(
	roleRepo repository.RoleRepository,
	permissionRepo repository.PermissionRepository,
	rolePermRepo repository.RolePermissionRepository,
	userRoleRepo repository.UserRoleRepository,
	userRepo repository.UserRepository,
) RoleService {
	return &roleService{
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
		rolePermRepo:   rolePermRepo,
		userRoleRepo:   userRoleRepo,
		userRepo:       userRepo,
	}
}

func (s *roleService) Create(ctx context.Context, req *dto.CreateRoleRequest) (*domain.Role, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.role.create")
	defer span.End()

	roleSlug := slug.Make(req.Name)
	span.SetAttributes(attribute.String("role_slug", roleSlug))

	existing, err := s.roleRepo.GetBySlug(ctx, roleSlug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if existing != nil {
		span.SetStatus(codes.Error, "slug exists")
		return nil, domain.ErrRoleSlugExists
	}

	now := time.Now()
	role := &domain.Role{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Slug:        roleSlug,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("role_id", role.ID))
	span.SetStatus(codes.Ok, "")
	return role, nil
}

func (s *roleService) List(ctx context.Context, filter *domain.RoleFilter) ([]*domain.Role, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.role.list")
	defer span.End()

	roles, err := s.roleRepo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(roles)))
	span.SetStatus(codes.Ok, "")
	return roles, nil
}

func (s *roleService) GetOrFail(ctx context.Context, id string) (*domain.Role, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.role.get")
	defer span.End()

	span.SetAttributes(attribute.String("role_id", id))

	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if role == nil {
		span.SetStatus(codes.Error, "role not found")
		return nil, domain.ErrRoleNotFound
	}

	links, err := s.rolePermRepo.GetByRoleID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	role.Permissions = links

	span.SetStatus(codes.Ok, "")
	return role, nil
}

func (s *roleService) Update(ctx context.Context, id string, req *dto.UpdateRoleRequest) (*domain.Role, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.role.update")
	defer span.End()

	span.SetAttributes(attribute.String("role_id", id))

	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if role == nil {
		span.SetStatus(codes.Error, "role not found")
		return nil, domain.ErrRoleNotFound
	}

	if req.Name != nil && *req.Name != role.Name {
		newSlug := slug.Make(*req.Name)
		collider, err := s.roleRepo.GetBySlug(ctx, newSlug)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if collider != nil && collider.ID != role.ID {
			span.SetStatus(codes.Error, "slug exists")
			return nil, domain.ErrRoleSlugExists
		}
		role.Name = *req.Name
		role.Slug = newSlug
	}
	if req.Description != nil {
		role.Description = *req.Description
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return role, nil
}

func (s *roleService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.role.delete")
	defer span.End()

	span.SetAttributes(attribute.String("role_id", id))

	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if role == nil {
		span.SetStatus(codes.Error, "role not found")
		return domain.ErrRoleNotFound
	}

	if err := s.roleRepo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *roleService) AssignPermissions(ctx context.Context, roleID string, permissionIDs []string) ([]*domain.RolePermission, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.role.assign_permissions")
	defer span.End()

	span.SetAttributes(
		attribute.String("role_id", roleID),
		attribute.Int("requested", len(permissionIDs)),
	)

	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if role == nil {
		span.SetStatus(codes.Error, "role not found")
		return nil, domain.ErrRoleNotFound
	}

	// Every requested id must resolve; an exact count match detects unknowns
	// and duplicates in one pass.
	permissions, err := s.permissionRepo.GetByIDs(ctx, permissionIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(permissions) != len(permissionIDs) {
		span.SetStatus(codes.Error, "unknown permission ids")
		return nil, domain.ErrSomePermissionsMissing
	}

	existing, err := s.rolePermRepo.GetByRoleID(ctx, roleID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	linked := make(map[string]bool, len(existing))
	for _, link := range existing {
		linked[link.PermissionID] = true
	}

	now := time.Now()
	var newLinks []*domain.RolePermission
	for _, p := range permissions {
		if linked[p.ID] {
			continue
		}
		newLinks = append(newLinks, &domain.RolePermission{
			ID:           uuid.New().String(),
			RoleID:       roleID,
			PermissionID: p.ID,
			Permission:   p,
			CreatedAt:    now,
		})
	}

	// Additive-only: a fully redundant request is an error, not a no-op.
	if len(newLinks) == 0 {
		span.SetStatus(codes.Error, "nothing to assign")
		return nil, domain.ErrNoNewPermissions
	}

	if err := s.rolePermRepo.CreateMany(ctx, newLinks); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("created", len(newLinks)))
	span.SetStatus(codes.Ok, "")
	return newLinks, nil
}

func (s *roleService) RemovePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.role.remove_permissions")
	defer span.End()

	span.SetAttributes(
		attribute.String("role_id", roleID),
		attribute.Int("requested", len(permissionIDs)),
	)

	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if role == nil {
		span.SetStatus(codes.Error, "role not found")
		return domain.ErrRoleNotFound
	}

	removed, err := s.rolePermRepo.DeleteByRoleAndPermissions(ctx, roleID, permissionIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if removed == 0 {
		span.SetStatus(codes.Error, "nothing to remove")
		return domain.ErrNoLinkedPermissions
	}

	span.SetAttributes(attribute.Int64("removed", removed))
	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *roleService) GetPermissions(ctx context.Context, roleID string) ([]*domain.RolePermission, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.role.get_permissions")
	defer span.End()

	span.SetAttributes(attribute.String("role_id", roleID))

	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if role == nil {
		span.SetStatus(codes.Error, "role not found")
		return nil, domain.ErrRoleNotFound
	}

	links, err := s.rolePermRepo.GetByRoleID(ctx, roleID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return links, nil
}

func (s *roleService) GetUsers(ctx context.Context, roleID string) ([]*domain.UserRole, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.role.get_users")
	defer span.End()

	span.SetAttributes(attribute.String("role_id", roleID))

	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if role == nil {
		span.SetStatus(codes.Error, "role not found")
		return nil, domain.ErrRoleNotFound
	}

	links, err := s.userRoleRepo.GetByRoleID(ctx, roleID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return links, nil
}

func (s *roleService) AssignUserRole(ctx context.Context, userID, roleID string) (*domain.UserRole, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.role.assign_user_role")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("role_id", roleID),
	)

	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if role == nil {
		span.SetStatus(codes.Error, "role not found")
		return nil, domain.ErrRoleNotFound
	}

	existing, err := s.userRoleRepo.GetByUserID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if existing != nil {
		if existing.RoleID == roleID {
			// Same assignment, nothing to write.
			span.SetStatus(codes.Ok, "already assigned")
			return existing, nil
		}
		// One role per user: reassignment overwrites the existing link.
		existing.RoleID = roleID
		if err := s.userRoleRepo.Update(ctx, existing); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		span.SetStatus(codes.Ok, "")
		return existing, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}
	if !user.IsAdmin {
		span.SetStatus(codes.Error, "user not admin")
		return nil, domain.ErrUserNotAdmin
	}

	now := time.Now()
	link := &domain.UserRole{
		ID:        uuid.New().String(),
		UserID:    userID,
		RoleID:    roleID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRoleRepo.Create(ctx, link); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return link, nil
}

func (s *roleService) RemoveUserRole(ctx context.Context, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.role.remove_user_role")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	existing, err := s.userRoleRepo.GetByUserID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if existing == nil {
		span.SetStatus(codes.Error, "user role not found")
		return domain.ErrUserRoleNotFound
	}

	if err := s.userRoleRepo.DeleteByUserID(ctx, userID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
