package result

import "github.com/kailas-cloud/semrank/internal/domain/search/source"

// Result is a single ranked search hit. It references a document by id only;
// it does not keep the document alive.
type Result struct {
	documentID string
	score      float64
	src        source.Source
}

// New creates a search result.
func New(documentID string, score float64, src source.Source) Result {
	return Result{documentID: documentID, score: score, src: src}
}

// DocumentID returns the referenced document identifier.
func (r *Result) DocumentID() string { return r.documentID }

// Score returns the normalized relevance score in [0,1].
func (r *Result) Score() float64 { return r.score }

// Source returns where the score came from.
func (r *Result) Source() source.Source { return r.src }
