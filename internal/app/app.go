// Package app wires the store, providers and pipeline services that every
// command shares.
package app

import (
	"blog-enhancer/internal/changefeed"
	"blog-enhancer/internal/config"
	"blog-enhancer/internal/firecrawl"
	"blog-enhancer/internal/llm"
	"blog-enhancer/internal/services"
	"blog-enhancer/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const hubBufferSize = 64

// App holds the assembled pipeline
type App struct {
	Config      config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	Hub         *changefeed.Hub
	Store       *store.ArticleStore
	Ingestion   *services.IngestionService
	Enhancement *services.EnhancementService
}

// New assembles the pipeline on top of an open database. Providers whose
// keys are missing are left out, so the services report them as not
// configured instead of calling upstream without credentials.
func New(cfg config.Config, db *gorm.DB, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	hub := changefeed.NewHub(hubBufferSize)
	articles := store.NewArticleStore(db, hub)

	var (
		extractor services.Extractor
		searcher  services.Searcher
		rewriter  services.Rewriter
	)
	if fc := firecrawl.NewClient(cfg.Firecrawl); fc.Configured() {
		extractor = fc
		searcher = fc
	} else {
		logger.Warn("FIRECRAWL_API_KEY not set, scraping and reference search are disabled")
	}
	if lc := llm.NewClient(cfg.LLM); lc.Configured() {
		rewriter = lc
		logger.Info("AI gateway configured", zap.String("model", lc.Model()))
	} else {
		logger.Warn("LLM_API_KEY not set, enhancement is disabled")
	}

	ingestion := services.NewIngestionService(extractor, articles, cfg.Site, logger)
	enhancement := services.NewEnhancementService(articles, searcher, rewriter, services.EnhancementConfig{
		GuardConcurrent: cfg.Enhance.GuardConcurrent,
		StaleAfter:      cfg.Scheduler.StaleProcessingAfter,
	}, logger)

	return &App{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Hub:         hub,
		Store:       articles,
		Ingestion:   ingestion,
		Enhancement: enhancement,
	}
}
