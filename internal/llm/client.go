// Package llm calls an OpenAI-compatible chat-completions gateway to rewrite
// article text.
package llm

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
	DefaultEndpoint = "https://ai.gateway.lovable.dev/v1/chat/completions"
	DefaultModel    = "google/gemini-2.5-flash"
	defaultTimeout  = 120 * time.Second
)

// Config holds the settings needed to reach the gateway
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Client is a chat-completions client. It never retries.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a new rewrite client
func NewClient(config Config) *Client {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return &Client{
		endpoint: config.Endpoint,
		apiKey:   config.APIKey,
		model:    config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Configured reports whether an API key is present
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Model returns the model name sent with every request
func (c *Client) Model() string {
	return c.model
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Rewrite sends one system and one user message and returns the first
// choice's content
func (c *Client) Rewrite(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	const op = "llm.rewrite"

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, op, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, op, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.Transport, op, "request to AI gateway failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", apperr.FromStatus(op, resp.StatusCode, "Rate limit exceeded. Please try again later.")
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", apperr.FromStatus(op, resp.StatusCode, "Payment required. Please add credits to your workspace.")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", apperr.FromStatus(op, resp.StatusCode, fmt.Sprintf("AI gateway error: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Wrap(apperr.Transport, op, "failed to read AI gateway response", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", apperr.Wrap(apperr.Provider, op, "malformed AI gateway response", err)
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", apperr.New(apperr.EmptyResult, op, "No enhanced content generated")
	}
	return parsed.Choices[0].Message.Content, nil
}
