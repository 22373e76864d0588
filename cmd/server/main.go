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

	"github.com/accounts-service/internal/config"
	"github.com/accounts-service/internal/events"
	"github.com/accounts-service/internal/handler"
	"github.com/accounts-service/internal/middleware"
	"github.com/accounts-service/internal/models"
	"github.com/accounts-service/internal/repository"
	"github.com/accounts-service/internal/service"
	"github.com/accounts-service/internal/session"
	"github.com/accounts-service/internal/worker"
	applog "github.com/accounts-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize the application logger
	logg, err := applog.New(cfg.Logging.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Auto migrate database
	if err := autoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize the session store. Redis carries sessions in multi-instance
	// deployments; the in-memory store plus its reaper covers the rest.
	var (
		rdb           *redis.Client
		sessionStore  session.Store
		sessionWorker *worker.SessionWorker
	)
	if cfg.Redis.Enabled {
		rdb = initRedis(cfg)
		sessionStore = session.NewRedisStore(rdb)
	} else {
		memStore := session.NewMemoryStore()
		sessionStore = memStore
		sessionWorker = worker.NewSessionWorker(memStore, logg, time.Minute)
		go sessionWorker.Start()
	}
	sessions := session.NewManager(sessionStore, time.Duration(cfg.Session.TTLHours)*time.Hour)

	// Connect the event publisher; an empty URL runs without one
	var publisher *events.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = events.Connect(cfg.NATS.URL, logg)
		if err != nil {
			logg.Error("Event publisher unavailable, continuing without: %v", err)
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	resolver := service.NewIdentityResolver(userRepo, logg)
	authService := service.NewAuthService(resolver, cfg.JWT, logg)
	userService := service.NewUserService(userRepo, publisher, logg)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(authService, sessions, logg)
	webHandler := handler.NewWebHandler(userService, authService, sessions, logg)

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logg))
	router.Use(corsMiddleware())

	// Templates for the web pages
	router.LoadHTMLGlob(cfg.Web.Templates)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"version":    Version,
			"commit":     Commit,
			"build_time": BuildTime,
			"time":       time.Now().Unix(),
		})
	})

	// API v1 routes
	authMiddleware := middleware.AuthMiddleware(authService, sessions)
	v1 := router.Group("/api/v1")
	{
		userHandler.RegisterRoutes(v1, authMiddleware)
		authHandler.RegisterRoutes(v1, authMiddleware)
	}

	// Web routes
	webHandler.RegisterRoutes(router, middleware.WebAuthMiddleware(sessions))

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logg.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down server...")

	if sessionWorker != nil {
		sessionWorker.Stop()
	}
	publisher.Close()

	// Graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logg.Error("Error closing Redis connection: %v", err)
		}
	}

	logg.Info("Server exited properly")
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := gormlogger.Default.LogMode(gormlogger.Info)
	if cfg.Server.Mode == "release" {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
	)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
