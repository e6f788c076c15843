package services

import (
	"context"
	"strings"
	"time"

	"blog-enhancer/internal/apperr"
	"blog-enhancer/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// referenceLimit is how many search results are requested per article
const referenceLimit = 2

// EnhancementConfig holds optional pipeline behavior
type EnhancementConfig struct {
	// GuardConcurrent refuses to start a run while another one holds the
	// article in processing
	GuardConcurrent bool
	// StaleAfter lets a guarded run take over an article whose processing
	// state has not changed for this long. Zero keeps the guard strict.
	StaleAfter time.Duration
}

// EnhancementService drives one article through processing to enhanced or error
type EnhancementService struct {
	store    ArticleStore
	searcher Searcher
	rewriter Rewriter
	config   EnhancementConfig
	logger   *zap.Logger
}

// NewEnhancementService creates a new enhancement service. A nil searcher or
// rewriter means a provider key is missing; every run then fails.
func NewEnhancementService(store ArticleStore, searcher Searcher, rewriter Rewriter, config EnhancementConfig, logger *zap.Logger) *EnhancementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnhancementService{
		store:    store,
		searcher: searcher,
		rewriter: rewriter,
		config:   config,
		logger:   logger.With(zap.String("component", "enhancement")),
	}
}

// Enhance runs the full enhancement workflow for the article with the given id
func (s *EnhancementService) Enhance(ctx context.Context, articleID string) (*models.Article, error) {
	const op = "enhancement.Enhance"

	articleID = strings.TrimSpace(articleID)
	if articleID == "" {
		return nil, apperr.New(apperr.Validation, op, "articleId is required")
	}
	if s.searcher == nil || s.rewriter == nil {
		return nil, apperr.New(apperr.Internal, op, "Required API keys not configured")
	}

	id, err := uuid.Parse(articleID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, op, "Article not found", err)
	}

	log := s.logger.With(zap.String("article_id", id.String()))

	article, err := s.store.Get(ctx, id)
	if err != nil {
		log.Warn("cannot load article", zap.String("step", "load"), zap.Error(err))
		return nil, err
	}

	if article, err = s.markProcessing(ctx, id); err != nil {
		log.Error("failed to mark article as processing", zap.String("step", "mark_processing"), zap.Error(err))
		return nil, err
	}

	refs := s.findReferences(ctx, article, log)

	system, user := BuildPrompts(article, refs)
	content, err := s.rewriter.Rewrite(ctx, system, user)
	if err != nil {
		log.Error("rewrite failed", zap.String("step", "rewrite"), zap.Error(err))
		return nil, s.fail(ctx, id, err, log)
	}

	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		urls = append(urls, ref.URL)
	}

	enhanced, err := s.store.Update(ctx, id, models.EnhancedUpdate(content, urls))
	if err != nil {
		log.Error("failed to store enhanced content", zap.String("step", "commit"), zap.Error(err))
		return nil, s.fail(ctx, id, err, log)
	}

	log.Info("article enhanced", zap.Int("references", len(urls)))
	return enhanced, nil
}

func (s *EnhancementService) markProcessing(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	if s.config.GuardConcurrent {
		var staleBefore time.Time
		if s.config.StaleAfter > 0 {
			staleBefore = time.Now().Add(-s.config.StaleAfter)
		}
		return s.store.UpdateUnlessStatus(ctx, id, models.StatusProcessing, staleBefore, models.ProcessingUpdate())
	}
	return s.store.Update(ctx, id, models.ProcessingUpdate())
}

// findReferences searches by title and drops results that point back at the
// article itself. Search problems never fail the run.
func (s *EnhancementService) findReferences(ctx context.Context, article *models.Article, log *zap.Logger) []Reference {
	results, err := s.searcher.SearchWeb(ctx, article.Title, referenceLimit)
	if err != nil {
		log.Warn("reference search failed, continuing without references",
			zap.String("step", "search"), zap.Error(err))
		return nil
	}

	refs := make([]Reference, 0, len(results))
	for _, r := range results {
		if r.URL == "" || r.URL == article.SourceURL {
			continue
		}
		refs = append(refs, Reference{URL: r.URL, Title: r.Title, Content: r.Content})
	}
	log.Debug("reference search finished", zap.Int("results", len(results)), zap.Int("kept", len(refs)))
	return refs
}

// fail records cause on the article and returns it. The status write is
// best effort; cause is returned whether or not it succeeds.
func (s *EnhancementService) fail(ctx context.Context, id uuid.UUID, cause error, log *zap.Logger) error {
	writeCtx := ctx
	if ctx.Err() != nil {
		writeCtx = context.WithoutCancel(ctx)
	}

	if _, err := s.store.Update(writeCtx, id, models.ErrorUpdate(apperr.Message(cause))); err != nil {
		log.Error("failed to record enhancement error", zap.String("step", "mark_error"), zap.Error(err))
	}
	return cause
}
