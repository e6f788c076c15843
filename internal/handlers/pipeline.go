package handlers

import (
	"context"
	"net/http"

	"blog-enhancer/internal/models"
	"blog-enhancer/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Scraper runs one ingestion pass
type Scraper interface {
	ScrapeLatest(ctx context.Context) (*services.IngestResult, error)
}

// Enhancer runs the enhancement workflow for one article
type Enhancer interface {
	Enhance(ctx context.Context, articleID string) (*models.Article, error)
}

// PipelineHandler exposes the ingestion and enhancement triggers
type PipelineHandler struct {
	scraper  Scraper
	enhancer Enhancer
	logger   *zap.Logger
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(scraper Scraper, enhancer Enhancer, logger *zap.Logger) *PipelineHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineHandler{scraper: scraper, enhancer: enhancer, logger: logger}
}

type enhanceRequest struct {
	ArticleID string `json:"articleId"`
}

// Scrape handles POST /api/scrape
func (h *PipelineHandler) Scrape(c *gin.Context) {
	result, err := h.scraper.ScrapeLatest(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  result.Message,
		"articles": result.Articles,
	})
}

// Enhance handles POST /api/enhance
func (h *PipelineHandler) Enhance(c *gin.Context) {
	var req enhanceRequest
	// an unreadable body is treated like a missing articleId
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("ignoring unreadable enhance request body",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}

	article, err := h.enhancer.Enhance(c.Request.Context(), req.ArticleID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Article enhanced successfully",
		"article": article,
	})
}
