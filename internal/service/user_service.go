package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/dto"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/repository"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/logger"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/telemetry"
)

// UserService defines the interface for CRM account management.
type UserService interface {
	// Create adds a user. A requested role is not assigned inline; a
	// user.created event carries it to the role-sync consumer.
	Create(ctx context.Context, req *dto.CreateUserRequest) (*domain.User, error)
	// GetOrFail returns the user with the given id.
	GetOrFail(ctx context.Context, id string) (*domain.User, error)
	// List returns all users.
	List(ctx context.Context) ([]*domain.User, error)
	// Update applies a partial update. A changed role id triggers a
	// user.updated event for asynchronous reassignment.
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*domain.User, error)
}

type userService struct {
	userRepo     repository.UserRepository
	userRoleRepo repository.UserRoleRepository
	publisher    EventPublisher
	log          *logger.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, userRoleRepo repository.UserRoleRepository, publisher EventPublisher, log *logger.Logger) UserService {
	return &userService{
		userRepo:     userRepo,
		userRoleRepo: userRoleRepo,
		publisher:    publisher,
		log:          log,
	}
}

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.create")
	defer span.End()

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if existing != nil {
		span.SetStatus(codes.Error, "email exists")
		return nil, domain.ErrEmailExists
	}

	existing, err = s.userRepo.GetByPhone(ctx, req.Phone)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if existing != nil {
		span.SetStatus(codes.Error, "phone exists")
		return nil, domain.ErrPhoneExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		IsAdmin:      req.IsAdmin,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))

	// Role assignment is eventually consistent. A publish failure is logged
	// by the publisher and never rolls back the committed user.
	if req.RoleID != "" && req.IsAdmin {
		event := &domain.UserEvent{
			EventID:   uuid.New().String(),
			Type:      domain.UserEventCreated,
			User:      user,
			RoleID:    req.RoleID,
			Timestamp: now,
		}
		if err := s.publisher.PublishUserEvent(ctx, event); err != nil {
			s.log.Warn("user created but role sync event not published",
				zap.String("user_id", user.ID),
				zap.String("role_id", req.RoleID),
				zap.Error(err),
			)
		}
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

func (s *userService) GetOrFail(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.get")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.list")
	defer span.End()

	users, err := s.userRepo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(users)))
	span.SetStatus(codes.Ok, "")
	return users, nil
}

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.update")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}

	if req.Email != nil && *req.Email != user.Email {
		collider, err := s.userRepo.GetByEmail(ctx, *req.Email)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if collider != nil && collider.ID != user.ID {
			span.SetStatus(codes.Error, "email exists")
			return nil, domain.ErrEmailExists
		}
		user.Email = *req.Email
	}
	if req.Phone != nil && *req.Phone != user.Phone {
		collider, err := s.userRepo.GetByPhone(ctx, *req.Phone)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if collider != nil && collider.ID != user.ID {
			span.SetStatus(codes.Error, "phone exists")
			return nil, domain.ErrPhoneExists
		}
		user.Phone = *req.Phone
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.Status != nil {
		user.Status = domain.UserStatus(*req.Status)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req.RoleID != "" {
		changed, err := s.roleChanged(ctx, user.ID, req.RoleID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if changed {
			event := &domain.UserEvent{
				EventID:   uuid.New().String(),
				Type:      domain.UserEventUpdated,
				User:      user,
				RoleID:    req.RoleID,
				Timestamp: time.Now(),
			}
			if err := s.publisher.PublishUserEvent(ctx, event); err != nil {
				s.log.Warn("user updated but role sync event not published",
					zap.String("user_id", user.ID),
					zap.String("role_id", req.RoleID),
					zap.Error(err),
				)
			}
		}
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// roleChanged reports whether the requested role differs from the user's
// current assignment.
func (s *userService) roleChanged(ctx context.Context, userID, roleID string) (bool, error) {
	current, err := s.userRoleRepo.GetByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return current == nil || current.RoleID != roleID, nil
}
