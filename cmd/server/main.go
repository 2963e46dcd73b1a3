package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bonneaffaire/internal/config"
	"bonneaffaire/internal/database"
	"bonneaffaire/internal/handlers"
	"bonneaffaire/internal/logger"
	"bonneaffaire/internal/migrations"
	"bonneaffaire/internal/redis"
	"bonneaffaire/internal/repository"
	"bonneaffaire/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("Starting Bonne Affaire 78 API",
		zap.String("port", cfg.ServerPort),
		zap.String("environment", cfg.Environment),
	)

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.IsProduction())
	if err != nil {
		if cfg.IsProduction() {
			zlog.Fatal("Failed to connect to database", zap.Error(err))
		}
		zlog.Warn("Database unavailable, data routes will answer 503", zap.Error(err))
		db = nil
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		zlog.Warn("Redis unavailable, running without cache", zap.Error(err))
		redisClient = nil
	}

	var svc *handlers.Services
	if db != nil {
		if err := migrations.RunMigrations(context.Background(), db, cfg, zlog); err != nil {
			zlog.Fatal("Failed to run migrations", zap.Error(err))
		}
		svc = buildServices(cfg, db, redisClient, zlog)
	}

	router := handlers.NewRouter(cfg, svc, zlog)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zlog.Info("Server started", zap.String("address", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			zlog.Warn("Failed to close database", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			zlog.Warn("Failed to close redis", zap.Error(err))
		}
	}

	zlog.Info("Server exited")
}

func buildServices(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, zlog *zap.Logger) *handlers.Services {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Order numbering uses the redis counter when available
	var sequencer services.OrderSequencer = services.NewCountSequencer(orderRepo)
	var cache services.ProductCache
	if redisClient != nil {
		sequencer = services.NewAtomicSequencer(redisClient, sequencer, zlog)
		cache = redisClient
	}

	settingsService := services.NewSettingsService(settingsRepo)
	numbering := services.OrderNumbering{Prefix: cfg.OrderPrefix, Location: cfg.Location()}

	return &handlers.Services{
		Products: services.NewProductService(productRepo, cache, cfg.CacheDuration(), zlog),
		Orders:   services.NewOrderService(orderRepo, productRepo, cache, settingsService, sequencer, numbering, zlog),
		Users:    services.NewUserService(userRepo, zlog),
		Settings: settingsService,
	}
}
