package di

import (
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/handler"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/repository"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/service"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/config"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/database"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/logger"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/redis"
)

// Container holds all dependencies for the identity service
type Container struct {
	// Infrastructure
	DB     *database.PostgresDB
	Redis  *redis.Client
	Logger *logger.Logger

	// Repositories
	UserRepo     repository.UserRepository
	PermRepo     repository.PermissionRepository
	RoleRepo     repository.RoleRepository
	RolePermRepo repository.RolePermissionRepository
	UserRoleRepo repository.UserRoleRepository
	SessionRepo  repository.SessionRepository

	// Services
	AuthService       service.AuthService
	PermissionService service.PermissionService
	RoleService       service.RoleService
	UserService       service.UserService
	EventPublisher    service.EventPublisher

	// Handlers
	HealthHandler     *handler.HealthHandler
	AuthHandler       *handler.AuthHandler
	PermissionHandler *handler.PermissionHandler
	RoleHandler       *handler.RoleHandler
	UserHandler       *handler.UserHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB        *database.PostgresDB
	Redis     *redis.Client
	Logger    *logger.Logger
	JWT       config.JWTConfig
	Publisher service.EventPublisher
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:     cfg.DB,
		Redis:  cfg.Redis,
		Logger: cfg.Logger,
	}

	// Initialize repositories
	c.UserRepo = repository.NewPostgresUserRepository(c.DB.Pool())
	c.PermRepo = repository.NewPostgresPermissionRepository(c.DB.Pool())
	c.RoleRepo = repository.NewPostgresRoleRepository(c.DB.Pool())
	c.RolePermRepo = repository.NewPostgresRolePermissionRepository(c.DB.Pool())
	c.UserRoleRepo = repository.NewPostgresUserRoleRepository(c.DB.Pool())
	c.SessionRepo = repository.NewPostgresSessionRepository(c.DB.Pool())

	// Initialize services
	c.EventPublisher = cfg.Publisher
	if c.EventPublisher == nil {
		c.EventPublisher = service.NoOpEventPublisher{}
	}
	c.AuthService = service.NewAuthService(c.UserRepo, c.SessionRepo, cfg.JWT)
	c.PermissionService = service.NewPermissionService(c.PermRepo)
	c.RoleService = service.NewRoleService(c.RoleRepo, c.PermRepo, c.RolePermRepo, c.UserRoleRepo, c.UserRepo)
	c.UserService = service.NewUserService(c.UserRepo, c.UserRoleRepo, c.EventPublisher, c.Logger)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.PermissionHandler = handler.NewPermissionHandler(c.PermissionService)
	c.RoleHandler = handler.NewRoleHandler(c.RoleService)
	c.UserHandler = handler.NewUserHandler(c.UserService)

	return c
}
