package services

import (
	"context"
	"time"

	"blog-enhancer/internal/firecrawl"
	"blog-enhancer/internal/models"

	"github.com/google/uuid"
)

// ArticleStore is the persistence the pipelines depend on
type ArticleStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Article, error)
	InsertBatch(ctx context.Context, articles []models.Article) ([]models.Article, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Article, error)
	UpdateUnlessStatus(ctx context.Context, id uuid.UUID, status models.Status, staleBefore time.Time, fields map[string]interface{}) (*models.Article, error)
	ExistingSourceURLs(ctx context.Context, urls []string) (map[string]bool, error)
}

// Extractor discovers and extracts pages on the source site
type Extractor interface {
	DiscoverURLs(ctx context.Context, targetRoot string, limit int) ([]string, error)
	ExtractContent(ctx context.Context, url string) (*firecrawl.Page, error)
}

// Searcher finds reference material on the open web
type Searcher interface {
	SearchWeb(ctx context.Context, query string, limit int) ([]firecrawl.SearchResult, error)
}

// Rewriter produces the enhanced article text
type Rewriter interface {
	Rewrite(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
