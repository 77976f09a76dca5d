package search

import (
	"context"

	"github.com/kailas-cloud/semrank/internal/domain/search/match"
)

// Provider is the remote text-analysis backend. It is the only component in
// the system that performs network I/O, and it is called exclusively by the
// Service, after a rate-limiter permit has been acquired.
//
// Implementations own retry: transient failures are retried internally with
// backoff up to a bound, permanent failures propagate immediately. Errors
// unwrap onto domain.ErrProviderUnavailable or domain.ErrProviderRejected.
type Provider interface {
	Query(ctx context.Context, text string, limit int) ([]match.Match, error)
}
