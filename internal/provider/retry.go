// Package provider holds the retry policy shared by remote provider
// backends.
package provider

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semrank/internal/domain"
	"github.com/kailas-cloud/semrank/internal/domain/search/match"
	"github.com/kailas-cloud/semrank/internal/metrics"
)

// RetryConfig bounds the retry loop a backend runs around one logical call.
type RetryConfig struct {
	// MaxRetries is the number of retry attempts after the initial one.
	MaxRetries int
	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the exponential growth of the delay.
	MaxDelay time.Duration
	// Multiplier grows the delay after each retry.
	Multiplier float64
}

// DefaultRetryConfig returns the stock retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     4 * time.Second,
		Multiplier:   2.0,
	}
}

// Do runs fn with bounded exponential backoff and jitter. Only transient
// provider failures are retried; permanent failures and context expiry
// propagate immediately. backend labels the retry metric.
func Do(
	ctx context.Context, cfg RetryConfig, backend string, logger *zap.Logger,
	fn func(ctx context.Context) ([]match.Match, error),
) ([]match.Match, error) {
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
		}

		matches, err := fn(ctx)
		if err == nil {
			return matches, nil
		}
		if !errors.Is(err, domain.ErrProviderUnavailable) {
			return nil, err
		}
		lastErr = err

		if attempt == cfg.MaxRetries {
			break
		}

		// Jitter: delay * (0.5 + rand(0, 0.5)), against synchronized retries.
		wait := time.Duration(float64(delay) * (0.5 + rand.Float64()*0.5))
		metrics.ProviderRetriesTotal.WithLabelValues(backend).Inc()
		logger.Warn("Provider call failed, retrying",
			zap.String("backend", backend),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, ctx.Err())
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return nil, fmt.Errorf("provider failed after %d retries: %w", cfg.MaxRetries, lastErr)
}
