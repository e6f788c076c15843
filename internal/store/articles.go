// Package store is the typed CRUD boundary over the articles table.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-enhancer/internal/apperr"
	"blog-enhancer/internal/changefeed"
	"blog-enhancer/internal/models"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

// ArticleStore persists articles through gorm and publishes one change event
// per committed row change
type ArticleStore struct {
	db   *gorm.DB
	feed changefeed.Publisher
}

// NewArticleStore creates a new article store. A nil feed discards events.
func NewArticleStore(db *gorm.DB, feed changefeed.Publisher) *ArticleStore {
	if feed == nil {
		feed = changefeed.Nop{}
	}
	return &ArticleStore{db: db, feed: feed}
}

// List returns all articles, newest first
func (s *ArticleStore) List(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&articles).Error; err != nil {
		return nil, eris.Wrap(err, "failed to list articles")
	}
	return articles, nil
}

// Get loads one article by id
func (s *ArticleStore) Get(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.NotFound, "store.Get", "Article not found", err)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "failed to load article %s", id)
	}
	return &article, nil
}

// Create inserts a single article
func (s *ArticleStore) Create(ctx context.Context, article *models.Article) error {
	if err := s.db.WithContext(ctx).Create(article).Error; err != nil {
		return eris.Wrap(err, "failed to create article")
	}
	s.feed.Publish(changefeed.Event{Type: changefeed.Insert, ID: article.ID, Article: copyOf(article)})
	return nil
}

// InsertBatch inserts all articles in one statement and returns them with
// ids and timestamps filled in
func (s *ArticleStore) InsertBatch(ctx context.Context, articles []models.Article) ([]models.Article, error) {
	if len(articles) == 0 {
		return []models.Article{}, nil
	}

	if err := s.db.WithContext(ctx).Create(&articles).Error; err != nil {
		return nil, eris.Wrap(err, "failed to insert articles")
	}

	for i := range articles {
		s.feed.Publish(changefeed.Event{Type: changefeed.Insert, ID: articles[i].ID, Article: copyOf(&articles[i])})
	}
	return articles, nil
}

// Update writes the given columns of one article and returns the stored row
func (s *ArticleStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Article, error) {
	result := s.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, eris.Wrapf(result.Error, "failed to update article %s", id)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.New(apperr.NotFound, "store.Update", "Article not found")
	}
	return s.reload(ctx, id)
}

// UpdateUnlessStatus behaves like Update but only applies when the stored
// status differs from status, or when the row has not changed since
// staleBefore. A zero staleBefore never overrides the status check. A blocked
// row yields a Conflict error.
func (s *ArticleStore) UpdateUnlessStatus(ctx context.Context, id uuid.UUID, status models.Status, staleBefore time.Time, fields map[string]interface{}) (*models.Article, error) {
	query := s.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id)
	if staleBefore.IsZero() {
		query = query.Where("status <> ?", status)
	} else {
		query = query.Where("(status <> ? OR updated_at < ?)", status, staleBefore)
	}
	result := query.Updates(fields)
	if result.Error != nil {
		return nil, eris.Wrapf(result.Error, "failed to update article %s", id)
	}
	if result.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperr.New(apperr.Conflict, "store.UpdateUnlessStatus",
			fmt.Sprintf("Article is already %s", status))
	}
	return s.reload(ctx, id)
}

// Delete removes an article permanently
func (s *ArticleStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Article{})
	if result.Error != nil {
		return eris.Wrapf(result.Error, "failed to delete article %s", id)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "store.Delete", "Article not found")
	}
	s.feed.Publish(changefeed.Event{Type: changefeed.Delete, ID: id})
	return nil
}

// ListStale returns articles in status whose last update is before cutoff
func (s *ArticleStore) ListStale(ctx context.Context, status models.Status, cutoff time.Time) ([]models.Article, error) {
	var articles []models.Article
	err := s.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", status, cutoff).
		Order("updated_at ASC").
		Find(&articles).Error
	if err != nil {
		return nil, eris.Wrap(err, "failed to list stale articles")
	}
	return articles, nil
}

// ExistingSourceURLs reports which of urls already belong to a stored article
func (s *ArticleStore) ExistingSourceURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(urls))
	if len(urls) == 0 {
		return existing, nil
	}

	var found []string
	err := s.db.WithContext(ctx).Model(&models.Article{}).
		Where("source_url IN ?", urls).
		Distinct().
		Pluck("source_url", &found).Error
	if err != nil {
		return nil, eris.Wrap(err, "failed to look up source urls")
	}

	for _, u := range found {
		existing[u] = true
	}
	return existing, nil
}

func (s *ArticleStore) reload(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.feed.Publish(changefeed.Event{Type: changefeed.Update, ID: id, Article: copyOf(article)})
	return article, nil
}

func copyOf(article *models.Article) *models.Article {
	c := *article
	return &c
}
