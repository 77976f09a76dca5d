// Package query defines the validated, normalized search query and its
// deterministic cache fingerprint.
package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/semrank/internal/domain"
)

// Query parameter limits.
const (
	// MaxTextLength is the maximum allowed query text length.
	MaxTextLength = 4096
	DefaultLimit  = 10
	MaxLimit      = 100
)

// Query is a validated search query.
type Query struct {
	text    string
	filters map[string]string
	limit   int
}

// New validates and normalizes search parameters. limit <= 0 takes the
// default; limit above MaxLimit is clamped. An explicitly negative limit is
// rejected rather than defaulted so caller bugs surface at construction.
func New(text string, filters map[string]string, limit int) (Query, error) {
	if strings.TrimSpace(text) == "" {
		return Query{}, fmt.Errorf("%w: text is required", domain.ErrInvalidQuery)
	}
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("%w: text too long (max %d chars)", domain.ErrInvalidQuery, MaxTextLength)
	}
	if limit < 0 {
		return Query{}, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidQuery, limit)
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	var f map[string]string
	if len(filters) > 0 {
		f = make(map[string]string, len(filters))
		for k, v := range filters {
			f[k] = v
		}
	}

	return Query{text: text, filters: f, limit: limit}, nil
}

// Text returns the search text.
func (q *Query) Text() string { return q.text }

// Filters returns the metadata filter map (may be nil).
func (q *Query) Filters() map[string]string { return q.filters }

// Limit returns the maximum result count, always in [1, MaxLimit].
func (q *Query) Limit() int { return q.limit }

// Fingerprint returns a deterministic cache key for the query. Filters are
// folded in sorted key order so insertion order never changes the key.
func (q *Query) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(q.text))
	h.Write([]byte{0})

	keys := make([]string, 0, len(q.filters))
	for k := range q.filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(q.filters[k]))
		h.Write([]byte{0})
	}

	h.Write([]byte(strconv.Itoa(q.limit)))
	return hex.EncodeToString(h.Sum(nil))
}
