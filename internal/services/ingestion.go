package services

import (
	"context"
	"fmt"
	"strings"

	"blog-enhancer/internal/apperr"
	"blog-enhancer/internal/config"
	"blog-enhancer/internal/firecrawl"
	"blog-enhancer/internal/markdown"
	"blog-enhancer/internal/models"

	"go.uber.org/zap"
)

// IngestResult is the outcome of one ingestion run
type IngestResult struct {
	Articles []models.Article `json:"articles"`
	Message  string           `json:"message"`
}

// IngestionService pulls the newest articles from the source site into the store
type IngestionService struct {
	extractor Extractor
	store     ArticleStore
	site      config.SourceSite
	filter    URLFilter
	logger    *zap.Logger
}

// NewIngestionService creates a new ingestion service. A nil extractor
// means the provider key is missing; every run then fails.
func NewIngestionService(extractor Extractor, store ArticleStore, site config.SourceSite, logger *zap.Logger) *IngestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestionService{
		extractor: extractor,
		store:     store,
		site:      site,
		filter:    NewURLFilter(site),
		logger:    logger.With(zap.String("component", "ingestion")),
	}
}

// ScrapeLatest discovers article links on the listing page, extracts the
// trailing batch and stores every page that extracted successfully in a
// single insert
func (s *IngestionService) ScrapeLatest(ctx context.Context) (*IngestResult, error) {
	const op = "ingestion.ScrapeLatest"

	if s.extractor == nil {
		return nil, apperr.New(apperr.Internal, op, "Required API keys not configured")
	}

	links, err := s.extractor.DiscoverURLs(ctx, s.site.ListingURL, s.site.MapLimit)
	if err != nil {
		s.logger.Error("discovery failed",
			zap.String("step", "discover"),
			zap.String("url", s.site.ListingURL),
			zap.Error(err))
		return nil, &apperr.Error{
			Kind:    apperr.KindOf(err),
			Op:      op,
			Message: fmt.Sprintf("Failed to map %s blog", s.siteName()),
			Err:     err,
		}
	}

	candidates := s.filter.Apply(links)
	s.logger.Info("discovered article links",
		zap.Int("links", len(links)),
		zap.Int("articles", len(candidates)))

	batch := lastN(candidates, s.site.BatchSize)
	if s.site.SkipExisting {
		batch, err = s.dropExisting(ctx, batch)
		if err != nil {
			return nil, err
		}
	}

	articles := make([]models.Article, 0, len(batch))
	for _, link := range batch {
		page, err := s.extractor.ExtractContent(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return nil, apperr.Wrap(apperr.Transport, op, "ingestion cancelled", ctx.Err())
			}
			s.logger.Warn("skipping page that failed to extract",
				zap.String("step", "extract"),
				zap.String("url", link),
				zap.Error(err))
			continue
		}
		articles = append(articles, articleFromPage(link, page))
	}

	if len(articles) == 0 {
		return &IngestResult{Articles: []models.Article{}, Message: "No articles found to scrape"}, nil
	}

	stored, err := s.store.InsertBatch(ctx, articles)
	if err != nil {
		s.logger.Error("failed to insert articles", zap.String("step", "insert"), zap.Error(err))
		return nil, apperr.Wrap(apperr.Internal, op, "Failed to store scraped articles", err)
	}

	s.logger.Info("stored scraped articles", zap.Int("count", len(stored)))
	return &IngestResult{
		Articles: stored,
		Message:  fmt.Sprintf("Scraped and stored %d articles", len(stored)),
	}, nil
}

func (s *IngestionService) dropExisting(ctx context.Context, links []string) ([]string, error) {
	existing, err := s.store.ExistingSourceURLs(ctx, links)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "ingestion.ScrapeLatest", "Failed to check stored articles", err)
	}

	fresh := make([]string, 0, len(links))
	for _, link := range links {
		if existing[link] {
			s.logger.Debug("already stored", zap.String("url", link))
			continue
		}
		fresh = append(fresh, link)
	}
	return fresh, nil
}

func (s *IngestionService) siteName() string {
	if s.site.Name != "" {
		return s.site.Name
	}
	return s.site.ListingURL
}

func articleFromPage(link string, page *firecrawl.Page) models.Article {
	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = "Untitled"
	}

	article := models.Article{
		Title:           title,
		OriginalContent: page.Markdown,
		SourceURL:       link,
		Author:          page.Author,
		PublishedAt:     page.PublishedAt,
		Status:          models.StatusScraped,
	}
	article.ApplyMetrics(markdown.WordCount(page.Markdown))
	return article
}
