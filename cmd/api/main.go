package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-studio/internal/config"
	"alfredoptarigan/resume-studio/internal/handlers"
	"alfredoptarigan/resume-studio/internal/logger"
	"alfredoptarigan/resume-studio/internal/repositories"
	"alfredoptarigan/resume-studio/internal/services"
)

const janitorInterval = time.Minute

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	zlog := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = zlog.Sync() }()
	zlog.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// View state: redis when configured, otherwise in process
	redisClient, err := config.InitRedis(ctx, cfg)
	if err != nil {
		zlog.Fatal("❌ Failed to initialize redis", zap.Error(err))
	}

	sweepers := map[string]services.Sweeper{}
	var viewRepo repositories.ViewRepository
	var healthCheck func(ctx context.Context) error
	if redisClient != nil {
		defer redisClient.Close()
		viewRepo = repositories.NewRedisViewRepository(redisClient, cfg.Session.TTL)
		healthCheck = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
		zlog.Info("✅ Redis view store initialized")
	} else {
		memoryRepo := repositories.NewMemoryViewRepository(cfg.Session.TTL)
		sweepers["views"] = memoryRepo
		viewRepo = memoryRepo
		zlog.Info("✅ In-memory view store initialized")
	}

	// Initialize services
	downloadStore := services.NewDownloadStore(cfg.Storage.DownloadPath, cfg.Storage.DownloadTTL)
	if err := downloadStore.EnsureDownloadDir(); err != nil {
		zlog.Fatal("❌ Failed to create download directory", zap.Error(err))
	}
	sweepers["downloads"] = downloadStore

	tracker := services.NewTaskTracker()
	matchClient := services.NewMatchClient(cfg.Services.MatchURL, cfg.Services.Timeout)
	enhanceClient := services.NewEnhanceClient(cfg.Services.EnhanceURL, cfg.Services.Timeout)

	scoreWidget := services.NewScoreWidget(matchClient, viewRepo, tracker, zlog)
	enhanceWidget := services.NewEnhanceWidget(
		enhanceClient,
		viewRepo,
		downloadStore,
		services.NewPDFInspector(),
		tracker,
		zlog,
	)
	zlog.Info("✅ Services initialized successfully",
		zap.String("match_url", cfg.Services.MatchURL),
		zap.String("enhance_url", cfg.Services.EnhanceURL),
	)

	// Start janitor
	janitor := services.NewJanitor(janitorInterval, zlog, sweepers)
	janitor.Start(ctx)

	app := handlers.NewApp(handlers.Dependencies{
		Config:      cfg,
		Logger:      zlog,
		Score:       scoreWidget,
		Enhance:     enhanceWidget,
		HealthCheck: healthCheck,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("🛑 Shutting down server...")
		janitor.Stop()
		if err := app.Shutdown(); err != nil {
			zlog.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("🚀 Server starting", zap.String("addr", addr))
	zlog.Info("🧩 Resume builder embedded", zap.String("url", cfg.Services.BuilderURL))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
