package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"videofetch/config"
	"videofetch/internal/engine"
	"videofetch/internal/handler"
	"videofetch/internal/model"
	"videofetch/internal/persona"
	"videofetch/internal/service"
	"videofetch/internal/workspace"
	"videofetch/pkg/logger"
	"videofetch/pkg/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	if err := logger.Init(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting videofetch server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	// Extraction engine (probed once at startup)
	ytdlp := engine.NewYtDlp(cfg.Engine.Binary)
	if !ytdlp.Available() {
		logger.Logger.Warn("Extraction engine missing, extraction requests will fail",
			zap.String("binary", cfg.Engine.Binary))
	}

	// Persona catalog with best-effort credentials
	creds := persona.LoadCredentials(cfg.Engine.CookiesFile)
	catalog := persona.NewCatalog(creds)

	// Workspace manager for per-request download directories
	workspaceManager := workspace.NewManager(&cfg.Workspace)
	if err := workspaceManager.EnsureRoot(); err != nil {
		logger.Logger.Fatal("Failed to create workspace root", zap.Error(err))
	}
	workspaceManager.Start()
	defer workspaceManager.Stop()

	// Services
	extractService := service.NewExtractService(ytdlp, catalog, &cfg.Engine, cfg.Formats.MaxFormats)
	downloadService := service.NewDownloadService(ytdlp, catalog, workspaceManager, &cfg.Engine)
	rateLimitService := service.NewRateLimitService(&cfg.RateLimit)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLogger())
	router.Use(cors.Default())

	// Handlers
	videoHandler := handler.NewVideoHandler(extractService, rateLimitService, ytdlp)
	downloadHandler := handler.NewDownloadHandler(downloadService)

	router.GET("/", videoHandler.Root)

	api := router.Group("/api")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimitMiddleware(rateLimitService))
		logger.Logger.Info("Rate limiting enabled",
			zap.Int("requests_per_window", cfg.RateLimit.RequestsPerWindow),
			zap.Int("window_seconds", cfg.RateLimit.WindowSeconds))
	}
	{
		api.GET("/video-info", videoHandler.GetVideoInfo)
		api.GET("/formats", videoHandler.GetFormats)
		api.GET("/download", downloadHandler.Download)
		api.GET("/health", videoHandler.HealthCheck)
		api.GET("/stats", videoHandler.Stats)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "endpoint not found"})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.Timeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.Timeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server stopped")
}
