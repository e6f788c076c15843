package firecrawl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blog-enhancer/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, APIKey: "fc-test", Timeout: 5 * time.Second})
}

func TestDiscoverURLs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/map", r.URL.Path)
		assert.Equal(t, "Bearer fc-test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.com/blog", body["url"])
		assert.Equal(t, float64(100), body["limit"])
		assert.Equal(t, false, body["includeSubdomains"])

		w.Write([]byte(`{"success":true,"links":["https://example.com/blog/a","https://example.com/blog/page/2"]}`))
	})

	links, err := client.DiscoverURLs(context.Background(), "https://example.com/blog", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/blog/a", "https://example.com/blog/page/2"}, links)
}

func TestDiscoverURLsProviderFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"site blocked"}`))
	})

	links, err := client.DiscoverURLs(context.Background(), "https://example.com/blog", 100)
	assert.Nil(t, links)
	require.Error(t, err)
	assert.Equal(t, apperr.Provider, apperr.KindOf(err))
	assert.Contains(t, apperr.Message(err), "site blocked")
}

func TestDiscoverURLsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	client := NewClient(Config{BaseURL: server.URL, APIKey: "fc-test"})

	_, err := client.DiscoverURLs(context.Background(), "https://example.com/blog", 100)
	assert.Equal(t, apperr.Transport, apperr.KindOf(err))
}

func TestExtractContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/scrape", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []interface{}{"markdown"}, body["formats"])
		assert.Equal(t, true, body["onlyMainContent"])

		w.Write([]byte(`{"success":true,"data":{"markdown":"# Hello\n\nBody text","metadata":{"title":"Hello","author":"Ann","publishedTime":"2024-05-01T10:00:00Z"}}}`))
	})

	page, err := client.ExtractContent(context.Background(), "https://example.com/blog/hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello", page.Title)
	assert.Equal(t, "# Hello\n\nBody text", page.Markdown)
	require.NotNil(t, page.Author)
	assert.Equal(t, "Ann", *page.Author)
	require.NotNil(t, page.PublishedAt)
	assert.True(t, page.PublishedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestExtractContentDefaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"markdown":"text","metadata":{"publishedTime":"last tuesday"}}}`))
	})

	page, err := client.ExtractContent(context.Background(), "https://example.com/blog/x")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", page.Title)
	assert.Nil(t, page.Author)
	assert.Nil(t, page.PublishedAt)
}

func TestExtractContentMissingData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})

	_, err := client.ExtractContent(context.Background(), "https://example.com/blog/x")
	assert.Equal(t, apperr.Provider, apperr.KindOf(err))
}

func TestSearchWeb(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "chatbots in healthcare", body["query"])
		assert.Equal(t, float64(2), body["limit"])

		w.Write([]byte(`{"success":true,"data":[
			{"url":"https://a.example/post","title":"A","markdown":"alpha"},
			{"url":"https://b.example/post","description":"beta summary"}
		]}`))
	})

	results, err := client.SearchWeb(context.Background(), "chatbots in healthcare", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, SearchResult{URL: "https://a.example/post", Title: "A", Content: "alpha"}, results[0])
	assert.Equal(t, SearchResult{URL: "https://b.example/post", Title: "Reference Article", Content: "beta summary"}, results[1])
}

func TestSearchWebStatusClasses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   apperr.Kind
	}{
		{"rate limited", http.StatusTooManyRequests, apperr.RateLimited},
		{"payment required", http.StatusPaymentRequired, apperr.PaymentRequired},
		{"server error", http.StatusInternalServerError, apperr.Provider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			})

			_, err := client.SearchWeb(context.Background(), "q", 2)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway</html>`))
	})

	_, err := client.SearchWeb(context.Background(), "q", 2)
	assert.Equal(t, apperr.Provider, apperr.KindOf(err))
}

func TestConfigured(t *testing.T) {
	assert.False(t, NewClient(Config{}).Configured())
	assert.True(t, NewClient(Config{APIKey: "k"}).Configured())
}
