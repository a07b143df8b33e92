package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/consumer"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/di"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/middleware"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/service"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/config"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/database"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/kafka"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/logger"
	pkgredis "github.com/danLeBrown/tripple-t-backend-sub000/pkg/redis"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting identity service...")

	ctx := context.Background()

	// Initialize tracing
	_, err = telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Telemetry initialization failed: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		telemetry.Shutdown(shutdownCtx)
	}()

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Initialize Redis when login throttling is on
	var redisClient *pkgredis.Client
	if cfg.RateLimit.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, &pkgredis.Config{
			Host:          cfg.Redis.Host,
			Port:          cfg.Redis.Port,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			PoolSize:      cfg.Redis.PoolSize,
			MinIdleConns:  cfg.Redis.MinIdleConns,
			DialTimeout:   cfg.Redis.DialTimeout,
			ReadTimeout:   cfg.Redis.ReadTimeout,
			WriteTimeout:  cfg.Redis.WriteTimeout,
			MaxRetries:    3,
			RetryInterval: 100 * time.Millisecond,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Redis connection failed, login throttling disabled: %v", err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info("Redis connected")
		}
	}

	// Event bridge: Kafka when configured, otherwise an in-process bus.
	// Either way user role sync stays asynchronous.
	var (
		publisher     service.EventPublisher
		kafkaConsumer *kafka.Consumer
		bus           *service.ChannelEventBus
	)
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
			Brokers:  cfg.Kafka.Brokers,
			ClientID: cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Kafka producer connection failed: %v", err))
		}
		publisher = service.NewKafkaEventPublisher(producer, cfg.Kafka.UserTopic, appLog)

		kafkaConsumer, err = kafka.NewConsumer(ctx, &kafka.ConsumerConfig{
			Brokers:  cfg.Kafka.Brokers,
			GroupID:  cfg.Kafka.ConsumerGroup,
			Topics:   []string{cfg.Kafka.UserTopic},
			ClientID: cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Kafka consumer connection failed: %v", err))
		}
		appLog.Info("Kafka event bridge connected")
	} else {
		bus = service.NewChannelEventBus(256)
		publisher = bus
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:        db,
		Redis:     redisClient,
		Logger:    appLog,
		JWT:       cfg.JWT,
		Publisher: publisher,
	})

	// Start the role-sync consumer
	if kafkaConsumer != nil {
		cons := consumer.NewUserEventConsumer(kafkaConsumer, container.RoleService, 4, appLog)
		cons.Start(ctx)
		defer publisher.Close()
		defer cons.Stop()
	} else {
		cons := consumer.NewChannelUserEventConsumer(bus, container.RoleService, 4, appLog)
		cons.Start(ctx)
		// Closing the bus first lets the workers drain before Stop waits.
		defer cons.Stop()
		defer bus.Close()
	}

	run(cfg, container, redisClient, appLog)
}

func run(cfg *config.Config, container *di.Container, redisClient *pkgredis.Client, appLog *logger.Logger) {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog))
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// API routes
	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			login := auth.Group("")
			if cfg.RateLimit.Enabled && redisClient != nil {
				login.Use(middleware.LoginRateLimit(redisClient, cfg.RateLimit.LoginPerMinute, cfg.RateLimit.Window, appLog))
			}
			login.POST("/login", container.AuthHandler.Login)

			auth.POST("/refresh", container.AuthHandler.RefreshToken)

			protected := auth.Group("")
			protected.Use(middleware.Auth(container.AuthService))
			{
				protected.GET("/user", container.AuthHandler.AuthUser)
				protected.PATCH("/users/password", container.AuthHandler.UpdatePassword)
			}
		}

		authorization := v1.Group("/authorization")
		authorization.Use(middleware.Auth(container.AuthService))
		{
			permissions := authorization.Group("/permissions")
			{
				permissions.POST("", container.PermissionHandler.Create)
				permissions.GET("", container.PermissionHandler.List)
				permissions.GET("/:id", container.PermissionHandler.Get)
				permissions.PATCH("/:id", container.PermissionHandler.Update)
				permissions.DELETE("/:id", container.PermissionHandler.Delete)
			}

			roles := authorization.Group("/roles")
			{
				roles.POST("", container.RoleHandler.Create)
				roles.GET("", container.RoleHandler.List)

				// Must precede /:id so "users" is not captured as an id.
				roles.POST("/users", container.RoleHandler.AssignUserRole)
				roles.DELETE("/users/:user_id", container.RoleHandler.RemoveUserRole)

				roles.GET("/:id", container.RoleHandler.Get)
				roles.PATCH("/:id", container.RoleHandler.Update)
				roles.DELETE("/:id", container.RoleHandler.Delete)
				roles.POST("/:id/permissions", container.RoleHandler.AssignPermissions)
				roles.DELETE("/:id/permissions", container.RoleHandler.RemovePermissions)
				roles.GET("/:id/permissions", container.RoleHandler.GetPermissions)
				roles.GET("/:id/users", container.RoleHandler.GetUsers)
			}
		}

		users := v1.Group("/users")
		users.Use(middleware.Auth(container.AuthService))
		{
			users.POST("", container.UserHandler.Create)
			users.GET("", container.UserHandler.List)
			users.GET("/:id", container.UserHandler.Get)
			users.PATCH("/:id", container.UserHandler.Update)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Identity service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
