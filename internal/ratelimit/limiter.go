// Package ratelimit bounds the rate of calls reaching the remote provider.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/semrank/internal/domain"
	"github.com/kailas-cloud/semrank/internal/metrics"
)

// Limiter is a token-bucket rate limiter shared across all concurrent
// callers of the service. Bucket capacity is the burst allowance, refilled at
// the configured requests-per-second.
type Limiter struct {
	bucket *rate.Limiter
	logger *zap.Logger
}

// New creates a limiter with the given steady rate and burst capacity.
// burst < 1 is raised to 1 so the bucket can hold at least one permit.
func New(perSecond float64, burst int, logger *zap.Logger) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		bucket: rate.NewLimiter(rate.Limit(perSecond), burst),
		logger: logger,
	}
}

// Acquire consumes one permit, waiting for a refill when the bucket is empty.
// The wait is bounded by the context deadline: a caller whose deadline cannot
// be met never receives a permit (and therefore never reaches the network).
// A context with an already-expired deadline fails immediately.
func (l *Limiter) Acquire(ctx context.Context) error {
	// Fast path: a free token needs no bookkeeping.
	if l.bucket.Allow() {
		metrics.RateLimiterWaitDuration.Observe(0)
		return nil
	}

	start := time.Now()
	err := l.bucket.Wait(ctx)
	waited := time.Since(start)
	metrics.RateLimiterWaitDuration.Observe(waited.Seconds())

	if err != nil {
		metrics.RateLimiterRejectsTotal.Inc()
		l.logger.Debug("Rate limit permit denied",
			zap.Duration("waited", waited),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	return nil
}

// TryAcquire consumes one permit only if one is immediately available.
func (l *Limiter) TryAcquire() error {
	if l.bucket.Allow() {
		return nil
	}
	metrics.RateLimiterRejectsTotal.Inc()
	return fmt.Errorf("%w: no permit available", domain.ErrRateLimited)
}
