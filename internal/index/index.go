// Package index builds the per-query in-memory inverted index used for local
// relevance scoring.
package index

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kailas-cloud/semrank/internal/domain"
	"github.com/kailas-cloud/semrank/internal/domain/document"
)

// Score blends term coverage (how many query terms the document contains)
// with term density (how much of the document the matched terms occupy).
// Both components are in [0,1], so any convex combination is too.
const (
	coverageWeight = 0.5
	densityWeight  = 0.5
)

// Index is an immutable inverted index over one document set. A different
// document set requires a new Index.
type Index struct {
	postings map[string]map[string]int // token -> doc id -> term frequency
	docLens  map[string]int            // doc id -> token count
}

// Build tokenizes each document and constructs the index. It fails when the
// set is empty or contains duplicate ids with conflicting content; duplicates
// with identical content are collapsed silently (caller error, but harmless).
func Build(documents []document.Document) (*Index, error) {
	if len(documents) == 0 {
		return nil, fmt.Errorf("%w: no documents", domain.ErrInvalidDocumentSet)
	}

	idx := &Index{
		postings: make(map[string]map[string]int),
		docLens:  make(map[string]int, len(documents)),
	}
	contents := make(map[string]string, len(documents))

	for i := range documents {
		doc := &documents[i]
		if seen, ok := contents[doc.ID()]; ok {
			if seen != doc.Content() {
				return nil, fmt.Errorf(
					"%w: duplicate id %q with conflicting content",
					domain.ErrInvalidDocumentSet, doc.ID(),
				)
			}
			continue
		}
		contents[doc.ID()] = doc.Content()

		tokens := Tokenize(doc.Content())
		idx.docLens[doc.ID()] = len(tokens)
		for _, tok := range tokens {
			byDoc, ok := idx.postings[tok]
			if !ok {
				byDoc = make(map[string]int)
				idx.postings[tok] = byDoc
			}
			byDoc[doc.ID()]++
		}
	}

	return idx, nil
}

// Score computes the local relevance of a document for the query text,
// always in [0,1]. A document sharing no token with the query scores
// exactly 0. Unknown document ids also score 0.
func (idx *Index) Score(queryText, documentID string) float64 {
	docLen := idx.docLens[documentID]
	if docLen == 0 {
		return 0
	}

	terms := uniqueTokens(Tokenize(queryText))
	if len(terms) == 0 {
		return 0
	}

	matched := 0
	density := 0.0
	for _, term := range terms {
		tf := idx.postings[term][documentID]
		if tf == 0 {
			continue
		}
		matched++
		density += float64(tf) / float64(docLen)
	}
	if matched == 0 {
		return 0
	}

	coverage := float64(matched) / float64(len(terms))
	return coverageWeight*coverage + densityWeight*density
}

// Contains reports whether the document id is part of the indexed set.
func (idx *Index) Contains(documentID string) bool {
	_, ok := idx.docLens[documentID]
	return ok
}

// DocumentIDs returns the ids of all indexed documents (unordered).
func (idx *Index) DocumentIDs() []string {
	ids := make([]string, 0, len(idx.docLens))
	for id := range idx.docLens {
		ids = append(ids, id)
	}
	return ids
}

// Tokenize lowercases the text and splits it on any non-letter, non-digit
// rune.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
