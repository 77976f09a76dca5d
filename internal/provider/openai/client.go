// Package openai adapts an OpenAI-compatible chat-completions endpoint into
// the provider contract: the model is asked, in JSON mode, to analyze the
// query and return scored candidate matches.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semrank/internal/domain"
	"github.com/kailas-cloud/semrank/internal/domain/search/match"
	"github.com/kailas-cloud/semrank/internal/metrics"
	"github.com/kailas-cloud/semrank/internal/provider"
)

const backendName = "openai"

const systemPrompt = `You are a text analysis engine. Given a search query, ` +
	`return the most relevant candidate matches you know of as JSON: ` +
	`{"matches":[{"id":"...","score":0.0,"snippet":"..."}]}. ` +
	`Scores are relevance in [0,1], highest first. Return at most the ` +
	`requested number of matches and nothing but the JSON object.`

// Client is a provider backend using the OpenAI-compatible API.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	retry   provider.RetryConfig
	logger  *zap.Logger
}

// Config holds the OpenAI-compatible provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	Logger     *zap.Logger
}

// NewClient creates an OpenAI-compatible provider client.
func NewClient(cfg *Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	retry := provider.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		api:     openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: timeout,
		retry:   retry,
		logger:  cfg.Logger,
	}
}

type matchesPayload struct {
	Matches []struct {
		ID      string  `json:"id"`
		Score   float64 `json:"score"`
		Snippet string  `json:"snippet"`
	} `json:"matches"`
}

// Query asks the model for up to limit candidate matches for the text.
func (c *Client) Query(ctx context.Context, text string, limit int) ([]match.Match, error) {
	return provider.Do(ctx, c.retry, backendName, c.logger, func(ctx context.Context) ([]match.Match, error) {
		return c.queryOnce(ctx, text, limit)
	})
}

func (c *Client) queryOnce(ctx context.Context, text string, limit int) ([]match.Match, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Query: %s\nMax matches: %d", text, limit),
			},
		},
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(callCtx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(backendName, "error").Inc()
		return nil, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(backendName, "error").Inc()
		return nil, domain.NewProviderError(0, "empty completion response")
	}

	var parsed matchesPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(backendName, "error").Inc()
		// The model violated JSON mode; treat as a provider hiccup.
		return nil, domain.NewProviderError(0, fmt.Sprintf("unparseable completion: %v", err))
	}

	metrics.ProviderRequestsTotal.WithLabelValues(backendName, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(backendName).Observe(duration.Seconds())

	matches := make([]match.Match, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		matches = append(matches, match.Match{ID: m.ID, Score: m.Score, Snippet: m.Snippet})
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// parseAPIError maps go-openai errors onto the provider error taxonomy by
// HTTP status.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return domain.NewProviderError(reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewProviderError(apiErr.HTTPStatusCode, apiErr.Message)
	}

	// Connection-level failure or blown per-call timeout.
	return domain.NewProviderError(0, err.Error())
}
