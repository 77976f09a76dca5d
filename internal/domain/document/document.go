// Package document defines the immutable document value object the local
// index is built over.
package document

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/semrank/internal/domain"
)

// Document is a validated unit of indexable text. The id is immutable once
// constructed; two documents with equal ids refer to the same logical entity.
type Document struct {
	id       string
	content  string
	metadata map[string]string
}

// New validates and constructs a document. Metadata is copied so later caller
// mutation cannot reach into the value.
func New(id, content string, metadata map[string]string) (Document, error) {
	if strings.TrimSpace(id) == "" {
		return Document{}, fmt.Errorf("%w: id is required", domain.ErrInvalidDocument)
	}
	if strings.TrimSpace(content) == "" {
		return Document{}, fmt.Errorf("%w: content is required (id %q)", domain.ErrInvalidDocument, id)
	}

	var meta map[string]string
	if len(metadata) > 0 {
		meta = make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
	}

	return Document{id: id, content: content, metadata: meta}, nil
}

// ID returns the stable document identifier.
func (d *Document) ID() string { return d.id }

// Content returns the text body.
func (d *Document) Content() string { return d.content }

// Metadata returns the value for a metadata key.
func (d *Document) Metadata(key string) (string, bool) {
	v, ok := d.metadata[key]
	return v, ok
}

// MatchesFilters reports whether every filter key is present with the
// required value.
func (d *Document) MatchesFilters(filters map[string]string) bool {
	for k, want := range filters {
		if got, ok := d.metadata[k]; !ok || got != want {
			return false
		}
	}
	return true
}
