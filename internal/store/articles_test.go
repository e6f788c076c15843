package store

import (
	"context"
	"testing"
	"time"

	"blog-enhancer/internal/apperr"
	"blog-enhancer/internal/changefeed"
	"blog-enhancer/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// every pooled connection to :memory: would otherwise see its own database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func newTestStore(t *testing.T) (*ArticleStore, *changefeed.Hub) {
	hub := changefeed.NewHub(32)
	return NewArticleStore(setupTestDB(t), hub), hub
}

func drain(sub *changefeed.Subscription) []changefeed.Event {
	var events []changefeed.Event
	for {
		select {
		case e := <-sub.Events():
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestInsertBatchAndGet(t *testing.T) {
	s, hub := newTestStore(t)
	sub := hub.Subscribe()
	defer sub.Close()
	ctx := context.Background()

	author := "Jane Writer"
	inserted, err := s.InsertBatch(ctx, []models.Article{
		{Title: "First", OriginalContent: "one", SourceURL: "https://example.com/blog/one", Author: &author},
		{Title: "Second", OriginalContent: "two", SourceURL: "https://example.com/blog/two"},
	})
	require.NoError(t, err)
	require.Len(t, inserted, 2)

	for _, a := range inserted {
		assert.NotEqual(t, uuid.Nil, a.ID)
		assert.Equal(t, models.StatusScraped, a.Status)
		assert.False(t, a.CreatedAt.IsZero())
	}

	got, err := s.Get(ctx, inserted[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)
	require.NotNil(t, got.Author)
	assert.Equal(t, "Jane Writer", *got.Author)
	assert.Empty(t, got.ReferenceURLs)
	assert.Nil(t, got.EnhancedContent)
	assert.Nil(t, got.ErrorMessage)

	events := drain(sub)
	require.Len(t, events, 2)
	assert.Equal(t, changefeed.Insert, events[0].Type)
	assert.Equal(t, inserted[0].ID, events[0].ID)
}

func TestInsertBatchEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	inserted, err := s.InsertBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, inserted)
}

func TestGetMissingArticle(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestListNewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, title := range []string{"oldest", "middle", "newest"} {
		a := &models.Article{Title: title, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.Create(ctx, a))
	}

	articles, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 3)
	assert.Equal(t, "newest", articles[0].Title)
	assert.Equal(t, "oldest", articles[2].Title)
}

func TestUpdateTransitions(t *testing.T) {
	s, hub := newTestStore(t)
	ctx := context.Background()

	article := &models.Article{Title: "Post", OriginalContent: "body"}
	require.NoError(t, s.Create(ctx, article))

	sub := hub.Subscribe()
	defer sub.Close()

	failed, err := s.Update(ctx, article.ID, models.ErrorUpdate("AI gateway error: 500"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, failed.Status)
	require.NotNil(t, failed.ErrorMessage)

	processing, err := s.Update(ctx, article.ID, models.ProcessingUpdate())
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, processing.Status)
	assert.Nil(t, processing.ErrorMessage)

	enhanced, err := s.Update(ctx, article.ID, models.EnhancedUpdate("better body", []string{"https://ref.example/a", "https://ref.example/b"}))
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnhanced, enhanced.Status)
	require.NotNil(t, enhanced.EnhancedContent)
	assert.Equal(t, "better body", *enhanced.EnhancedContent)
	assert.Equal(t, []string{"https://ref.example/a", "https://ref.example/b"}, []string(enhanced.ReferenceURLs))

	events := drain(sub)
	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, changefeed.Update, e.Type)
	}
	assert.Equal(t, models.StatusEnhanced, events[2].Article.Status)
}

func TestUpdateMissingArticle(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Update(context.Background(), uuid.New(), models.ProcessingUpdate())
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestUpdateUnlessStatus(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	article := &models.Article{Title: "Post"}
	require.NoError(t, s.Create(ctx, article))

	updated, err := s.UpdateUnlessStatus(ctx, article.ID, models.StatusProcessing, time.Time{}, models.ProcessingUpdate())
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, updated.Status)

	_, err = s.UpdateUnlessStatus(ctx, article.ID, models.StatusProcessing, time.Time{}, models.ProcessingUpdate())
	assert.True(t, apperr.Is(err, apperr.Conflict))

	_, err = s.UpdateUnlessStatus(ctx, article.ID, models.StatusProcessing, time.Now().Add(-time.Hour), models.ProcessingUpdate())
	assert.True(t, apperr.Is(err, apperr.Conflict), "fresh processing rows stay blocked")

	_, err = s.UpdateUnlessStatus(ctx, uuid.New(), models.StatusProcessing, time.Time{}, models.ProcessingUpdate())
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestUpdateUnlessStatusTakesOverStaleRow(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	stuck := &models.Article{Title: "stuck", Status: models.StatusProcessing, UpdatedAt: time.Now().Add(-2 * time.Hour)}
	require.NoError(t, s.Create(ctx, stuck))

	_, err := s.UpdateUnlessStatus(ctx, stuck.ID, models.StatusProcessing, time.Time{}, models.ProcessingUpdate())
	assert.True(t, apperr.Is(err, apperr.Conflict))

	taken, err := s.UpdateUnlessStatus(ctx, stuck.ID, models.StatusProcessing, time.Now().Add(-time.Hour), models.ProcessingUpdate())
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, taken.Status)

	// the takeover refreshed updated_at
	_, err = s.UpdateUnlessStatus(ctx, stuck.ID, models.StatusProcessing, time.Now().Add(-time.Hour), models.ProcessingUpdate())
	assert.True(t, apperr.Is(err, apperr.Conflict))
}

func TestDelete(t *testing.T) {
	s, hub := newTestStore(t)
	ctx := context.Background()

	article := &models.Article{Title: "Post"}
	require.NoError(t, s.Create(ctx, article))

	sub := hub.Subscribe()
	defer sub.Close()

	require.NoError(t, s.Delete(ctx, article.ID))
	_, err := s.Get(ctx, article.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	err = s.Delete(ctx, article.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	events := drain(sub)
	require.Len(t, events, 1)
	assert.Equal(t, changefeed.Delete, events[0].Type)
	assert.Nil(t, events[0].Article)
}

func TestListStale(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	stuck := &models.Article{Title: "stuck", Status: models.StatusProcessing, UpdatedAt: now.Add(-2 * time.Hour)}
	fresh := &models.Article{Title: "fresh", Status: models.StatusProcessing, UpdatedAt: now}
	done := &models.Article{Title: "done", Status: models.StatusScraped, UpdatedAt: now.Add(-2 * time.Hour)}
	for _, a := range []*models.Article{stuck, fresh, done} {
		require.NoError(t, s.Create(ctx, a))
	}

	stale, err := s.ListStale(ctx, models.StatusProcessing, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, stuck.ID, stale[0].ID)
}

func TestExistingSourceURLs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.InsertBatch(ctx, []models.Article{
		{Title: "a", SourceURL: "https://example.com/blog/a"},
		{Title: "a again", SourceURL: "https://example.com/blog/a"},
	})
	require.NoError(t, err)

	existing, err := s.ExistingSourceURLs(ctx, []string{"https://example.com/blog/a", "https://example.com/blog/b"})
	require.NoError(t, err)
	assert.True(t, existing["https://example.com/blog/a"])
	assert.False(t, existing["https://example.com/blog/b"])
}

func TestDatabaseFailureKeepsContext(t *testing.T) {
	db := setupTestDB(t)
	s := NewArticleStore(db, changefeed.Nop{})

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = s.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list articles")
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	assert.False(t, apperr.Is(err, apperr.NotFound))
}
