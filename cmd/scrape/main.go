package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"blog-enhancer/internal/app"
	"blog-enhancer/internal/config"
	"blog-enhancer/internal/database"
	"blog-enhancer/internal/logging"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Command line flags
	batch := flag.Int("batch", 0, "Number of trailing article links to extract (default from config)")
	skipExisting := flag.Bool("skip-existing", false, "Skip links whose source URL is already stored")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if *batch > 0 {
		cfg.Site.BatchSize = *batch
	}
	if *skipExisting {
		cfg.Site.SkipExisting = true
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := app.New(cfg, db, logger)
	result, err := pipeline.Ingestion.ScrapeLatest(ctx)
	if err != nil {
		logger.Error("Scrape failed", zap.Error(err))
		database.Close(db)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(map[string]interface{}{
		"success":  true,
		"message":  result.Message,
		"articles": result.Articles,
	}); err != nil {
		logger.Error("Failed to write result", zap.Error(err))
	}
}
