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

// PermissionService defines the interface for permission catalog operations.
type PermissionService interface {
	// Create adds a permission; fails when the derived slug already exists.
	Create(ctx context.Context, req *dto.CreatePermissionRequest) (*domain.Permission, error)
	// List returns permissions matching the optional field-equality filter.
	List(ctx context.Context, filter *domain.PermissionFilter) ([]*domain.Permission, error)
	// GetOrFail returns the permission or ErrPermissionNotFound.
	GetOrFail(ctx context.Context, id string) (*domain.Permission, error)
	// Update applies a partial update, recomputing the slug when subject or
	// action change.
	Update(ctx context.Context, id string, req *dto.UpdatePermissionRequest) (*domain.Permission, error)
	// Delete removes the permission. Role-permission links may orphan.
	Delete(ctx context.Context, id string) error
}

type permissionService struct {
	permissionRepo repository.PermissionRepository
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(permissionRepo repository.PermissionRepository) PermissionService {
	return &permissionService{permissionRepo: permissionRepo}
}

func (s *permissionService) Create(ctx context.Context, req *dto.CreatePermissionRequest) (*domain.Permission, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.permission.create")
	defer span.End()

	permissionSlug := slug.Join(req.Subject, req.Action)
	span.SetAttributes(attribute.String("permission_slug", permissionSlug))

	existing, err := s.permissionRepo.GetBySlug(ctx, permissionSlug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if existing != nil {
		span.SetStatus(codes.Error, "slug exists")
		return nil, domain.ErrPermissionSlugExists
	}

	now := time.Now()
	permission := &domain.Permission{
		ID:          uuid.New().String(),
		Subject:     req.Subject,
		Action:      req.Action,
		Slug:        permissionSlug,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.permissionRepo.Create(ctx, permission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("permission_id", permission.ID))
	span.SetStatus(codes.Ok, "")
	return permission, nil
}

func (s *permissionService) List(ctx context.Context, filter *domain.PermissionFilter) ([]*domain.Permission, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.permission.list")
	defer span.End()

	permissions, err := s.permissionRepo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(permissions)))
	span.SetStatus(codes.Ok, "")
	return permissions, nil
}

func (s *permissionService) GetOrFail(ctx context.Context, id string) (*domain.Permission, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.permission.get")
	defer span.End()

	span.SetAttributes(attribute.String("permission_id", id))

	permission, err := s.permissionRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if permission == nil {
		span.SetStatus(codes.Error, "permission not found")
		return nil, domain.ErrPermissionNotFound
	}

	span.SetStatus(codes.Ok, "")
	return permission, nil
}

func (s *permissionService) Update(ctx context.Context, id string, req *dto.UpdatePermissionRequest) (*domain.Permission, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.permission.update")
	defer span.End()

	span.SetAttributes(attribute.String("permission_id", id))

	permission, err := s.permissionRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if permission == nil {
		span.SetStatus(codes.Error, "permission not found")
		return nil, domain.ErrPermissionNotFound
	}

	recompute := false
	if req.Subject != nil && *req.Subject != permission.Subject {
		permission.Subject = *req.Subject
		recompute = true
	}
	if req.Action != nil && *req.Action != permission.Action {
		permission.Action = *req.Action
		recompute = true
	}
	if req.Description != nil {
		permission.Description = *req.Description
	}

	if recompute {
		newSlug := slug.Join(permission.Subject, permission.Action)
		collider, err := s.permissionRepo.GetBySlug(ctx, newSlug)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if collider != nil && collider.ID != permission.ID {
			span.SetStatus(codes.Error, "slug exists")
			return nil, domain.ErrPermissionSlugExists
		}
		permission.Slug = newSlug
	}

	if err := s.permissionRepo.Update(ctx, permission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return permission, nil
}

func (s *permissionService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.permission.delete")
	defer span.End()

	span.SetAttributes(attribute.String("permission_id", id))

	permission, err := s.permissionRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if permission == nil {
		span.SetStatus(codes.Error, "permission not found")
		return domain.ErrPermissionNotFound
	}

	if err := s.permissionRepo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
