package services

import (
	"context"
	"testing"

	"blog-enhancer/internal/changefeed"
	"blog-enhancer/internal/firecrawl"
	"blog-enhancer/internal/models"
	"blog-enhancer/internal/store"

	"github.com/stretchr/testify/mock"
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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func setupTestStore(t *testing.T) (*store.ArticleStore, *changefeed.Hub) {
	hub := changefeed.NewHub(64)
	return store.NewArticleStore(setupTestDB(t), hub), hub
}

func drainEvents(sub *changefeed.Subscription) []changefeed.Event {
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

// MockExtractor is a mock implementation of the content extraction client
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) DiscoverURLs(ctx context.Context, targetRoot string, limit int) ([]string, error) {
	args := m.Called(ctx, targetRoot, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockExtractor) ExtractContent(ctx context.Context, url string) (*firecrawl.Page, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*firecrawl.Page), args.Error(1)
}

// MockSearcher is a mock implementation of web search
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) SearchWeb(ctx context.Context, query string, limit int) ([]firecrawl.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]firecrawl.SearchResult), args.Error(1)
}

// MockRewriter is a mock implementation of the rewrite client
type MockRewriter struct {
	mock.Mock
}

func (m *MockRewriter) Rewrite(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}
