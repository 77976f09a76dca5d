// Package ranker produces the final deterministic ordering of search results
// by blending remote-provider scores with local index scores.
package ranker

import (
	"sort"

	"github.com/kailas-cloud/semrank/internal/domain/search/match"
	"github.com/kailas-cloud/semrank/internal/domain/search/result"
	"github.com/kailas-cloud/semrank/internal/domain/search/source"
	"github.com/kailas-cloud/semrank/internal/index"
)

// Default blend weights. The exact split is a tunable, not a contract.
const (
	DefaultProviderWeight = 0.5
	DefaultLocalWeight    = 0.5
)

// Ranker blends provider and local relevance with configurable weights.
// Weights are normalized internally, so they need not sum to 1.
type Ranker struct {
	providerWeight float64
	localWeight    float64
}

// New creates a ranker. Negative weights are treated as zero; when both
// weights end up zero, the defaults apply.
func New(providerWeight, localWeight float64) *Ranker {
	if providerWeight < 0 {
		providerWeight = 0
	}
	if localWeight < 0 {
		localWeight = 0
	}
	if providerWeight == 0 && localWeight == 0 {
		providerWeight = DefaultProviderWeight
		localWeight = DefaultLocalWeight
	}
	return &Ranker{providerWeight: providerWeight, localWeight: localWeight}
}

// Rank merges provider matches with local index scores into a sorted result
// list of at most limit entries.
//
// Documents present in both rankings get the weighted blend of the two
// scores (source=blended). Provider matches absent from the local index keep
// their provider score unblended (source=provider). Indexed documents the
// provider did not return are scored locally (source=local) and included
// only when they overlap the query at all.
//
// Equal blended scores are ordered by ascending document id so identical
// inputs always produce identical output.
func (r *Ranker) Rank(
	matches []match.Match, idx *index.Index, queryText string, limit int,
) []result.Result {
	if limit <= 0 {
		return []result.Result{}
	}

	merged := make(map[string]result.Result)

	for _, m := range matches {
		providerScore := clamp01(m.Score)
		if idx != nil && idx.Contains(m.ID) {
			local := idx.Score(queryText, m.ID)
			blended := (r.providerWeight*providerScore + r.localWeight*local) /
				(r.providerWeight + r.localWeight)
			merged[m.ID] = result.New(m.ID, blended, source.Blended)
			continue
		}
		merged[m.ID] = result.New(m.ID, providerScore, source.Provider)
	}

	if idx != nil {
		for _, id := range idx.DocumentIDs() {
			if _, ok := merged[id]; ok {
				continue
			}
			local := idx.Score(queryText, id)
			if local == 0 {
				continue
			}
			merged[id] = result.New(id, local, source.Local)
		}
	}

	results := make([]result.Result, 0, len(merged))
	for _, res := range merged {
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score() != results[j].Score() {
			return results[i].Score() > results[j].Score()
		}
		return results[i].DocumentID() < results[j].DocumentID()
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
