// Package rest talks the provider's native HTTP+JSON protocol: a query goes
// out, a bounded list of scored candidate matches comes back.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semrank/internal/domain"
	"github.com/kailas-cloud/semrank/internal/domain/search/match"
	"github.com/kailas-cloud/semrank/internal/metrics"
	"github.com/kailas-cloud/semrank/internal/provider"
)

const backendName = "rest"

// Client queries the provider's /v1/query endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	retry      provider.RetryConfig
	logger     *zap.Logger
}

// Config holds the REST provider settings.
type Config struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each individual network call, independent of the
	// caller's own deadline.
	Timeout    time.Duration
	MaxRetries int
	Logger     *zap.Logger
}

// NewClient creates a REST provider client.
func NewClient(cfg *Config) *Client {
	retry := provider.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		retry:      retry,
		logger:     cfg.Logger,
	}
}

type queryRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type queryResponse struct {
	Matches []struct {
		ID      string  `json:"id"`
		Score   float64 `json:"score"`
		Snippet string  `json:"snippet,omitempty"`
	} `json:"matches"`
}

// Query sends the text to the provider and returns up to limit candidate
// matches. Transient failures are retried with backoff; permanent failures
// propagate immediately.
func (c *Client) Query(ctx context.Context, text string, limit int) ([]match.Match, error) {
	return provider.Do(ctx, c.retry, backendName, c.logger, func(ctx context.Context) ([]match.Match, error) {
		return c.queryOnce(ctx, text, limit)
	})
}

func (c *Client) queryOnce(ctx context.Context, text string, limit int) ([]match.Match, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(queryRequest{Query: text, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/v1/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(backendName, "error").Inc()
		// Connection resets and blown per-call timeouts are transient.
		return nil, domain.NewProviderError(0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequestsTotal.WithLabelValues(backendName, "error").Inc()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, domain.NewProviderError(resp.StatusCode, string(detail))
	}

	var parsed queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(backendName, "error").Inc()
		return nil, domain.NewProviderError(0, fmt.Sprintf("decode response: %v", err))
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
