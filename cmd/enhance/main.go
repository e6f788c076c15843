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
	"blog-enhancer/internal/apperr"
	"blog-enhancer/internal/config"
	"blog-enhancer/internal/database"
	"blog-enhancer/internal/logging"
	"blog-enhancer/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Command line flags
	articleID := flag.String("id", "", "ID of the article to enhance (required unless -all-scraped)")
	allScraped := flag.Bool("all-scraped", false, "Enhance every article still in the scraped status")
	flag.Parse()

	if *articleID == "" && !*allScraped {
		flag.Usage()
		os.Exit(2)
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := app.New(cfg, db, logger)

	ids := []string{*articleID}
	if *allScraped {
		ids, err = scrapedIDs(ctx, pipeline)
		if err != nil {
			logger.Fatal("Failed to list articles", zap.Error(err))
		}
		logger.Info("Enhancing scraped articles", zap.Int("count", len(ids)))
	}

	failed := 0
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	for _, id := range ids {
		article, err := pipeline.Enhancement.Enhance(ctx, id)
		if err != nil {
			failed++
			logger.Error("Enhancement failed",
				zap.String("article_id", id),
				zap.String("reason", apperr.Message(err)),
				zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if err := encoder.Encode(article); err != nil {
			logger.Error("Failed to write result", zap.Error(err))
		}
	}

	if failed > 0 {
		logger.Sync()
		database.Close(db)
		os.Exit(1)
	}
}

func scrapedIDs(ctx context.Context, pipeline *app.App) ([]string, error) {
	articles, err := pipeline.Store.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(articles))
	for _, article := range articles {
		if article.Status == models.StatusScraped {
			ids = append(ids, article.ID.String())
		}
	}
	return ids, nil
}
