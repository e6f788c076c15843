package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"blog-enhancer/internal/apperr"
	"blog-enhancer/internal/markdown"
	"blog-enhancer/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ArticleRepository is the store surface the CRUD endpoints use
type ArticleRepository interface {
	List(ctx context.Context) ([]models.Article, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Article, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ArticleHandler handles HTTP requests for articles
type ArticleHandler struct {
	articles ArticleRepository
	logger   *zap.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articles ArticleRepository, logger *zap.Logger) *ArticleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArticleHandler{articles: articles, logger: logger}
}

type createArticleRequest struct {
	Title           string     `json:"title" binding:"required"`
	OriginalContent string     `json:"original_content"`
	SourceURL       string     `json:"source_url"`
	Author          *string    `json:"author"`
	PublishedAt     *time.Time `json:"published_at"`
}

type updateArticleRequest struct {
	Title           *string    `json:"title"`
	OriginalContent *string    `json:"original_content"`
	EnhancedContent *string    `json:"enhanced_content"`
	SourceURL       *string    `json:"source_url"`
	Author          *string    `json:"author"`
	PublishedAt     *time.Time `json:"published_at"`
	ReferenceURLs   []string   `json:"reference_urls"`
	Status          *string    `json:"status"`
	ErrorMessage    *string    `json:"error_message"`
}

// ListArticles handles GET /api/articles. The legacy ?id= form returns a
// single article.
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	if id := c.Query("id"); id != "" {
		h.respondWithArticle(c, id)
		return
	}

	articles, err := h.articles.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": articles})
}

// GetArticle handles GET /api/articles/:id
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	h.respondWithArticle(c, c.Param("id"))
}

// CreateArticle handles POST /api/articles
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req createArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Wrap(apperr.Validation, "handlers.CreateArticle", "title is required", err))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		h.respondError(c, apperr.New(apperr.Validation, "handlers.CreateArticle", "title is required"))
		return
	}

	article := &models.Article{
		Title:           req.Title,
		OriginalContent: req.OriginalContent,
		SourceURL:       req.SourceURL,
		Author:          req.Author,
		PublishedAt:     req.PublishedAt,
		Status:          models.StatusScraped,
	}
	article.ApplyMetrics(markdown.WordCount(req.OriginalContent))

	if err := h.articles.Create(c.Request.Context(), article); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": article})
}

// UpdateArticle handles PUT /api/articles/:id and PUT /api/articles?id=
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, err := h.articleID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req updateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Wrap(apperr.Validation, "handlers.UpdateArticle", "Invalid request body", err))
		return
	}

	fields, err := req.fields()
	if err != nil {
		h.respondError(c, err)
		return
	}

	current, err := h.articles.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := req.checkResultingState(current); err != nil {
		h.respondError(c, err)
		return
	}

	article, err := h.articles.Update(c.Request.Context(), id, fields)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": article})
}

// DeleteArticle handles DELETE /api/articles/:id and DELETE /api/articles?id=
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	id, err := h.articleID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.articles.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Article deleted"})
}

func (h *ArticleHandler) respondWithArticle(c *gin.Context, raw string) {
	id, err := parseArticleID(raw)
	if err != nil {
		h.respondError(c, err)
		return
	}

	article, err := h.articles.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": article})
}

// articleID reads the id from the path, falling back to the query string
func (h *ArticleHandler) articleID(c *gin.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	if raw == "" {
		raw = c.Query("id")
	}
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, apperr.New(apperr.Validation, "handlers.articleID", "ID is required")
	}
	return parseArticleID(raw)
}

func (h *ArticleHandler) respondError(c *gin.Context, err error) {
	respondError(c, h.logger, err)
}

func (r updateArticleRequest) fields() (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	if r.Title != nil {
		if strings.TrimSpace(*r.Title) == "" {
			return nil, apperr.New(apperr.Validation, "handlers.UpdateArticle", "title cannot be empty")
		}
		fields["title"] = *r.Title
	}
	if r.OriginalContent != nil {
		wordCount := markdown.WordCount(*r.OriginalContent)
		fields["original_content"] = *r.OriginalContent
		fields["word_count"] = wordCount
		fields["reading_time"] = models.ReadingTimeMinutes(wordCount)
	}
	if r.EnhancedContent != nil {
		fields["enhanced_content"] = *r.EnhancedContent
	}
	if r.SourceURL != nil {
		fields["source_url"] = *r.SourceURL
	}
	if r.Author != nil {
		fields["author"] = *r.Author
	}
	if r.PublishedAt != nil {
		fields["published_at"] = *r.PublishedAt
	}
	if r.ReferenceURLs != nil {
		fields["reference_urls"] = pq.StringArray(r.ReferenceURLs)
	}
	if r.Status != nil {
		status := models.Status(*r.Status)
		if !status.Valid() {
			return nil, apperr.New(apperr.Validation, "handlers.UpdateArticle", "invalid status: "+*r.Status)
		}
		fields["status"] = status
		if status != models.StatusError && r.ErrorMessage == nil {
			fields["error_message"] = nil
		}
	}
	if r.ErrorMessage != nil {
		fields["error_message"] = *r.ErrorMessage
	}

	if len(fields) == 0 {
		return nil, apperr.New(apperr.Validation, "handlers.UpdateArticle", "No fields to update")
	}
	return fields, nil
}

// checkResultingState rejects updates that would leave current with a status
// its content columns do not support: enhanced needs enhanced_content, and
// error_message is present exactly when the status is error.
func (r updateArticleRequest) checkResultingState(current *models.Article) error {
	const op = "handlers.UpdateArticle"

	status := current.Status
	if r.Status != nil {
		status = models.Status(*r.Status)
	}

	hasContent := current.EnhancedContent != nil || r.EnhancedContent != nil

	hasMessage := current.ErrorMessage != nil
	switch {
	case r.ErrorMessage != nil:
		hasMessage = true
	case r.Status != nil && status != models.StatusError:
		hasMessage = false
	}

	switch {
	case status == models.StatusEnhanced && !hasContent:
		return apperr.New(apperr.Validation, op, "status enhanced requires enhanced_content")
	case status == models.StatusError && !hasMessage:
		return apperr.New(apperr.Validation, op, "status error requires error_message")
	case status != models.StatusError && hasMessage:
		return apperr.New(apperr.Validation, op, "error_message is only allowed with status error")
	}
	return nil
}

func parseArticleID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.NotFound, "handlers.parseArticleID", "Article not found", err)
	}
	return id, nil
}

// respondError writes the {success:false, error} envelope with the status
// matching err's kind
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"success": false, "error": apperr.Message(err)})
}
