// Package firecrawl is the content extraction client: URL discovery (map),
// page extraction (scrape) and keyword search against the Firecrawl API.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"blog-enhancer/internal/apperr"
)

const (
	DefaultBaseURL = "https://api.firecrawl.dev"
	defaultTimeout = 60 * time.Second
	maxErrorBody   = 1024
)

// Config holds the settings needed to reach the provider
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Page is the content extracted from one URL
type Page struct {
	URL         string
	Title       string
	Markdown    string
	Author      *string
	PublishedAt *time.Time
}

// SearchResult is one hit returned by a web search. Content holds the
// page markdown, or the description when no markdown was returned.
type SearchResult struct {
	URL     string
	Title   string
	Content string
}

// Client talks to the Firecrawl v1 API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new Firecrawl client
func NewClient(config Config) *Client {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether an API key is present
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

type mapRequest struct {
	URL               string `json:"url"`
	Limit             int    `json:"limit,omitempty"`
	IncludeSubdomains bool   `json:"includeSubdomains"`
}

type mapResponse struct {
	Success bool     `json:"success"`
	Links   []string `json:"links"`
	Error   string   `json:"error"`
}

// DiscoverURLs maps targetRoot and returns the raw links found, unfiltered
func (c *Client) DiscoverURLs(ctx context.Context, targetRoot string, limit int) ([]string, error) {
	const op = "firecrawl.map"

	var resp mapResponse
	if err := c.post(ctx, op, "/v1/map", mapRequest{URL: targetRoot, Limit: limit}, &resp); err != nil {
		return nil, err
	}

	if !resp.Success || resp.Links == nil {
		return nil, apperr.New(apperr.Provider, op, providerMessage("map request failed", resp.Error))
	}
	return resp.Links, nil
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		Markdown string         `json:"markdown"`
		Metadata scrapeMetadata `json:"metadata"`
	} `json:"data"`
	Error string `json:"error"`
}

type scrapeMetadata struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	PublishedTime string `json:"publishedTime"`
}

// ExtractContent scrapes one page as markdown with its metadata
func (c *Client) ExtractContent(ctx context.Context, url string) (*Page, error) {
	const op = "firecrawl.scrape"

	req := scrapeRequest{URL: url, Formats: []string{"markdown"}, OnlyMainContent: true}
	var resp scrapeResponse
	if err := c.post(ctx, op, "/v1/scrape", req, &resp); err != nil {
		return nil, err
	}

	if !resp.Success || resp.Data == nil {
		return nil, apperr.New(apperr.Provider, op, providerMessage("scrape request failed", resp.Error))
	}

	meta := resp.Data.Metadata
	page := &Page{
		URL:         url,
		Title:       strings.TrimSpace(meta.Title),
		Markdown:    resp.Data.Markdown,
		Author:      optional(meta.Author),
		PublishedAt: parseTime(meta.PublishedTime),
	}
	if page.Title == "" {
		page.Title = "Untitled"
	}
	return page, nil
}

type searchRequest struct {
	Query         string        `json:"query"`
	Limit         int           `json:"limit"`
	ScrapeOptions scrapeOptions `json:"scrapeOptions"`
}

type scrapeOptions struct {
	Formats []string `json:"formats"`
}

type searchResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Markdown    string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error"`
}

// SearchWeb runs a keyword search and returns up to limit results
func (c *Client) SearchWeb(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	const op = "firecrawl.search"

	req := searchRequest{
		Query:         query,
		Limit:         limit,
		ScrapeOptions: scrapeOptions{Formats: []string{"markdown"}},
	}
	var resp searchResponse
	if err := c.post(ctx, op, "/v1/search", req, &resp); err != nil {
		return nil, err
	}

	if !resp.Success || resp.Data == nil {
		return nil, apperr.New(apperr.Provider, op, providerMessage("search request failed", resp.Error))
	}

	results := make([]SearchResult, 0, len(resp.Data))
	for _, item := range resp.Data {
		result := SearchResult{
			URL:     item.URL,
			Title:   item.Title,
			Content: item.Markdown,
		}
		if result.Title == "" {
			result.Title = "Reference Article"
		}
		if result.Content == "" {
			result.Content = item.Description
		}
		results = append(results, result)
	}
	return results, nil
}

// post sends body as JSON and decodes the provider reply into out
func (c *Client) post(ctx context.Context, op, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperr.Wrap(apperr.Internal, op, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return apperr.Wrap(apperr.Internal, op, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.Transport, op, "request to content provider failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		e := apperr.FromStatus(op, resp.StatusCode, fmt.Sprintf("content provider returned HTTP %d", resp.StatusCode))
		if detail := strings.TrimSpace(string(text)); detail != "" {
			e.Err = fmt.Errorf("%s", detail)
		}
		return e
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Wrap(apperr.Transport, op, "failed to read provider response", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperr.Wrap(apperr.Provider, op, "malformed provider response", err)
	}
	return nil
}

func providerMessage(fallback, detail string) string {
	if detail = strings.TrimSpace(detail); detail != "" {
		return fallback + ": " + detail
	}
	return fallback
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
