// Package search orchestrates the query pipeline: normalize, cache lookup,
// rate-limit, provider call, local indexing, ranking, cache store.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semrank/internal/cache"
	"github.com/kailas-cloud/semrank/internal/domain"
	"github.com/kailas-cloud/semrank/internal/domain/document"
	"github.com/kailas-cloud/semrank/internal/domain/search/query"
	"github.com/kailas-cloud/semrank/internal/domain/search/result"
	"github.com/kailas-cloud/semrank/internal/index"
	"github.com/kailas-cloud/semrank/internal/logger"
	"github.com/kailas-cloud/semrank/internal/metrics"
	"github.com/kailas-cloud/semrank/internal/ranker"
	"github.com/kailas-cloud/semrank/internal/ratelimit"
)

// Service is the public entry point. One instance owns the cache and the
// rate limiter; it is safe for concurrent use, and unrelated queries proceed
// fully in parallel (only duplicate in-flight keys serialize, inside the
// cache).
type Service struct {
	provider Provider
	limiter  *ratelimit.Limiter
	results  *cache.ResultCache
	rank     *ranker.Ranker
	logger   *zap.Logger
}

// New creates a search service.
func New(
	provider Provider,
	limiter *ratelimit.Limiter,
	results *cache.ResultCache,
	rank *ranker.Ranker,
	logger *zap.Logger,
) *Service {
	return &Service{
		provider: provider,
		limiter:  limiter,
		results:  results,
		rank:     rank,
		logger:   logger,
	}
}

// Search runs one query over the supplied document set and returns a
// deterministically ranked result list of at most the query's limit.
//
// The caller's context deadline bounds the whole operation: it caps the
// rate-limiter wait and is re-checked before the provider call, so a caller
// that gave up while queueing never consumes remote quota. Identical queries
// within the cache TTL are served locally; identical queries in flight
// collapse into one upstream call.
func (s *Service) Search(
	ctx context.Context,
	text string,
	filters map[string]string,
	limit int,
	documents []document.Document,
) ([]result.Result, error) {
	start := time.Now()
	results, err := s.search(ctx, text, filters, limit, documents)
	metrics.SearchRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
	return results, nil
}

func (s *Service) search(
	ctx context.Context,
	text string,
	filters map[string]string,
	limit int,
	documents []document.Document,
) ([]result.Result, error) {
	q, err := query.New(text, filters, limit)
	if err != nil {
		return nil, fmt.Errorf("normalize query: %w", err)
	}
	if len(documents) == 0 {
		// Cheap to reject up front, before any quota is spent.
		return nil, fmt.Errorf("validate documents: %w: no documents", domain.ErrInvalidDocumentSet)
	}

	key := q.Fingerprint()

	return s.results.GetOrCompute(key, func() ([]result.Result, error) {
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("acquire rate limit: %w", err)
		}

		// The wait above may have consumed the caller's entire deadline; a
		// caller that already gave up must not reach the network.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("deadline expired after rate limit wait: %w: %v",
				domain.ErrRateLimited, err)
		}

		matches, err := s.provider.Query(ctx, q.Text(), q.Limit())
		if err != nil {
			return nil, fmt.Errorf("query provider: %w", err)
		}

		idx, err := s.buildIndex(q, documents)
		if err != nil {
			return nil, fmt.Errorf("build index: %w", err)
		}

		ranked := s.rank.Rank(matches, idx, q.Text(), q.Limit())

		logger.FromContext(ctx, s.logger).Debug("Search computed",
			zap.String("key", key),
			zap.Int("provider_matches", len(matches)),
			zap.Int("results", len(ranked)),
		)
		return ranked, nil
	})
}

// buildIndex indexes the candidate documents left after metadata filtering.
// An index is built per call and thrown away; only the ranked results are
// cached. When the filters exclude every document the search degrades to
// provider-only ranking (nil index).
func (s *Service) buildIndex(q query.Query, documents []document.Document) (*index.Index, error) {
	candidates := documents
	if len(q.Filters()) > 0 {
		candidates = make([]document.Document, 0, len(documents))
		for i := range documents {
			if documents[i].MatchesFilters(q.Filters()) {
				candidates = append(candidates, documents[i])
			}
		}
		if len(candidates) == 0 {
			return nil, nil
		}
	}
	return index.Build(candidates)
}
