package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/katchaapp/katcha/internal/api"
	"github.com/katchaapp/katcha/internal/cache"
	"github.com/katchaapp/katcha/internal/detector"
	"github.com/katchaapp/katcha/internal/katcha"
	"github.com/katchaapp/katcha/internal/push"
	"github.com/katchaapp/katcha/internal/store"
	"github.com/katchaapp/katcha/internal/targets"
	"github.com/katchaapp/katcha/pkg/config"
	"github.com/katchaapp/katcha/pkg/logging"
	"github.com/katchaapp/katcha/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Katcha API Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Initialize database
	database, err := store.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()
	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize cache
	var cacheStore cache.Store
	redisCache, err := cache.NewRedis(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisCache != nil {
		defer redisCache.Close()
		cacheStore = redisCache
	} else {
		cacheStore = cache.NewMemory()
	}

	// Wire the tracker
	repo := store.NewRepository(database.DB)
	snaps := store.NewSnapshotRepository(repo)
	notifs := store.NewNotificationRepository(repo)
	state := store.NewStateRepository(repo)
	tokens := store.NewTokenStore(state, cfg.Backend.APIKey, cfg.Backend.APISecret)

	client := katcha.New(&cfg.Backend, tokens)
	targetRepo := targets.NewRepository(client, cacheStore, snaps, cfg.Backend.CacheTTL)
	det := detector.New(client, targetRepo, snaps, notifs, state, push.FromConfig(&cfg.Push))

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	api.NewRouter(client, targetRepo, notifs, det).SetupRoutes(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
