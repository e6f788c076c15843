package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-enhancer/internal/app"
	"blog-enhancer/internal/auth"
	"blog-enhancer/internal/config"
	"blog-enhancer/internal/database"
	"blog-enhancer/internal/handlers"
	"blog-enhancer/internal/logging"
	"blog-enhancer/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.GinMode)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	pipeline := app.New(cfg, db, logger)

	// Initialize and start background workers
	workerService := worker.NewWorkerService(worker.Config{
		ScrapeSchedule:       cfg.Scheduler.ScrapeSchedule,
		StaleProcessingAfter: cfg.Scheduler.StaleProcessingAfter,
	}, pipeline.Ingestion, pipeline.Store, logger)
	if err := workerService.Start(); err != nil {
		logger.Fatal("Failed to start background workers", zap.Error(err))
	}
	defer workerService.Stop()

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(cfg, pipeline, workerService, logger),
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Received shutdown signal, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

func setupRouter(cfg config.Config, pipeline *app.App, workers *worker.WorkerService, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on configuration
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := handlers.RouterDeps{
		Articles: pipeline.Store,
		Scraper:  pipeline.Ingestion,
		Enhancer: pipeline.Enhancement,
		Hub:      pipeline.Hub,
		Workers:  workers,
		Logger:   logger,
	}

	verifier := auth.NewJWTVerifier(cfg.AuthJWTSecret)
	if verifier.Enabled() {
		deps.Auth = verifier.Middleware(logger)
		logger.Info("Bearer token authentication enabled for /api")
	}

	return handlers.NewRouter(gin.Default(), deps)
}
