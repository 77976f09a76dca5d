package index

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/semrank/internal/domain"
	"github.com/kailas-cloud/semrank/internal/domain/document"
)

func makeDoc(t *testing.T, id, content string) document.Document {
	t.Helper()
	doc, err := document.New(id, content, nil)
	if err != nil {
		t.Fatalf("document.New(%q): %v", id, err)
	}
	return doc
}

func TestBuild_Empty(t *testing.T) {
	_, err := Build(nil)
	if !errors.Is(err, domain.ErrInvalidDocumentSet) {
		t.Fatalf("error %v is not ErrInvalidDocumentSet", err)
	}
}

func TestBuild_DuplicateConflictingContent(t *testing.T) {
	docs := []document.Document{
		makeDoc(t, "doc-1", "first version"),
		makeDoc(t, "doc-1", "second version"),
	}
	_, err := Build(docs)
	if !errors.Is(err, domain.ErrInvalidDocumentSet) {
		t.Fatalf("error %v is not ErrInvalidDocumentSet", err)
	}
}

func TestBuild_DuplicateIdenticalContent(t *testing.T) {
	docs := []document.Document{
		makeDoc(t, "doc-1", "same text"),
		makeDoc(t, "doc-1", "same text"),
	}
	idx, err := Build(docs)
	if err != nil {
		t.Fatalf("identical duplicates should be tolerated: %v", err)
	}
	if !idx.Contains("doc-1") {
		t.Error("doc-1 missing from index")
	}
	if got := len(idx.DocumentIDs()); got != 1 {
		t.Errorf("indexed %d documents, want 1", got)
	}
}

func TestScore_Range(t *testing.T) {
	docs := []document.Document{
		makeDoc(t, "a", "kubernetes deployment rollout strategies"),
		makeDoc(t, "b", "kubernetes kubernetes kubernetes"),
		makeDoc(t, "c", "cooking pasta at home"),
	}
	idx, err := Build(docs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	queries := []string{"kubernetes devops", "pasta", "kubernetes deployment rollout strategies", "unrelated words"}
	for _, q := range queries {
		for _, id := range []string{"a", "b", "c"} {
			s := idx.Score(q, id)
			if s < 0 || s > 1 {
				t.Errorf("Score(%q, %s) = %f, out of [0,1]", q, id, s)
			}
		}
	}
}

func TestScore_ZeroOverlap(t *testing.T) {
	idx, err := Build([]document.Document{makeDoc(t, "a", "cooking pasta at home")})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s := idx.Score("kubernetes devops", "a"); s != 0 {
		t.Errorf("zero-overlap score = %f, want exactly 0", s)
	}
}

func TestScore_UnknownDocument(t *testing.T) {
	idx, err := Build([]document.Document{makeDoc(t, "a", "some text")})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s := idx.Score("some text", "missing"); s != 0 {
		t.Errorf("unknown document score = %f, want 0", s)
	}
}

func TestScore_OrdersOverlapAboveNoise(t *testing.T) {
	docs := []document.Document{
		makeDoc(t, "hit", "kubernetes devops pipelines"),
		makeDoc(t, "partial", "devops without the orchestrator"),
		makeDoc(t, "miss", "gardening tips for spring"),
	}
	idx, err := Build(docs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	q := "kubernetes devops"
	hit, partial, miss := idx.Score(q, "hit"), idx.Score(q, "partial"), idx.Score(q, "miss")
	if !(hit > partial && partial > miss) {
		t.Errorf("expected hit > partial > miss, got %f, %f, %f", hit, partial, miss)
	}
	if miss != 0 {
		t.Errorf("miss = %f, want 0", miss)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Hello, World!  go1.25 CI/CD")
	want := []string{"hello", "world", "go1", "25", "ci", "cd"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}
