// Package cache is the bounded, TTL'd, single-flight store for ranked search
// results.
package cache

import (
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/semrank/internal/domain/search/result"
	"github.com/kailas-cloud/semrank/internal/metrics"
)

// DefaultMaxEntries bounds cache memory when no size is configured.
const DefaultMaxEntries = 1024

// ResultCache keeps recent ranked results keyed by query fingerprint.
// Entries expire by TTL and the oldest entries are evicted beyond the size
// bound. Concurrent lookups for the same missing key collapse into one
// computation; every waiter observes that computation's outcome.
type ResultCache struct {
	entries *expirable.LRU[string, []result.Result]
	flight  singleflight.Group
	logger  *zap.Logger
}

// New creates a result cache with the given size bound and entry TTL.
func New(maxEntries int, ttl time.Duration, logger *zap.Logger) *ResultCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &ResultCache{
		entries: expirable.NewLRU[string, []result.Result](maxEntries, nil, ttl),
		logger:  logger,
	}
}

// Get returns the cached results for key, if present and unexpired.
// The returned slice is the caller's own copy.
func (c *ResultCache) Get(key string) ([]result.Result, bool) {
	cached, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return slices.Clone(cached), true
}

// GetOrCompute returns the cached results for key, or runs compute to fill
// the entry. Exactly one concurrent caller per key runs compute; the rest
// block and share its outcome. Failed computations are not stored, so the
// next caller after a failure computes again.
func (c *ResultCache) GetOrCompute(
	key string, compute func() ([]result.Result, error),
) ([]result.Result, error) {
	if cached, ok := c.entries.Get(key); ok {
		metrics.CacheTotal.WithLabelValues("hit").Inc()
		return slices.Clone(cached), nil
	}

	v, err, shared := c.flight.Do(key, func() (interface{}, error) {
		// A computation finishing between the lookup above and this point
		// already stored the entry; don't pay for the upstream call twice.
		if cached, ok := c.entries.Get(key); ok {
			return cached, nil
		}

		results, err := compute()
		if err != nil {
			return nil, err
		}

		if evicted := c.entries.Add(key, results); evicted {
			c.logger.Debug("Result cache evicted oldest entry", zap.String("key", key))
		}
		return results, nil
	})

	if shared {
		metrics.CacheTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheTotal.WithLabelValues("miss").Inc()
	}

	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]result.Result)), nil
}

// Len returns the number of live entries.
func (c *ResultCache) Len() int {
	return c.entries.Len()
}
