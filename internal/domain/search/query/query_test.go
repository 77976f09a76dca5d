package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/semrank/internal/domain"
)

func TestNew_Defaults(t *testing.T) {
	q, err := New("kubernetes devops", nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Limit() != DefaultLimit {
		t.Errorf("limit = %d, want default %d", q.Limit(), DefaultLimit)
	}
	if q.Text() != "kubernetes devops" {
		t.Errorf("text = %q", q.Text())
	}
}

func TestNew_ClampsLimit(t *testing.T) {
	q, err := New("query", nil, MaxLimit+500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Limit() != MaxLimit {
		t.Errorf("limit = %d, want clamp to %d", q.Limit(), MaxLimit)
	}
}

func TestNew_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		limit int
	}{
		{"empty text", "", 5},
		{"whitespace text", "   ", 5},
		{"negative limit", "query", -1},
		{"too long", strings.Repeat("a", MaxTextLength+1), 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.text, nil, tc.limit)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Errorf("error %v is not ErrInvalidQuery", err)
			}
		})
	}
}

func TestNew_CopiesFilters(t *testing.T) {
	filters := map[string]string{"lang": "go"}
	q, err := New("query", filters, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	filters["lang"] = "rust"
	if q.Filters()["lang"] != "go" {
		t.Error("query filters should be insulated from caller mutation")
	}
}

func TestFingerprint_FilterOrderIndependent(t *testing.T) {
	// Maps don't expose insertion order directly, so build the same logical
	// filter set twice with different construction order.
	a := map[string]string{}
	a["team"] = "platform"
	a["lang"] = "go"
	b := map[string]string{}
	b["lang"] = "go"
	b["team"] = "platform"

	qa, err := New("query", a, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	qb, err := New("query", b, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if qa.Fingerprint() != qb.Fingerprint() {
		t.Errorf("fingerprints differ: %s vs %s", qa.Fingerprint(), qb.Fingerprint())
	}
}

func TestFingerprint_SensitiveToInputs(t *testing.T) {
	base, _ := New("query", map[string]string{"k": "v"}, 5)

	otherText, _ := New("other query", map[string]string{"k": "v"}, 5)
	if base.Fingerprint() == otherText.Fingerprint() {
		t.Error("different text should produce a different fingerprint")
	}

	otherFilter, _ := New("query", map[string]string{"k": "w"}, 5)
	if base.Fingerprint() == otherFilter.Fingerprint() {
		t.Error("different filter value should produce a different fingerprint")
	}

	otherLimit, _ := New("query", map[string]string{"k": "v"}, 6)
	if base.Fingerprint() == otherLimit.Fingerprint() {
		t.Error("different limit should produce a different fingerprint")
	}
}

func TestFingerprint_FilterBoundaryUnambiguous(t *testing.T) {
	// "ab"->"c" must not collide with "a"->"bc".
	qa, _ := New("query", map[string]string{"ab": "c"}, 5)
	qb, _ := New("query", map[string]string{"a": "bc"}, 5)
	if qa.Fingerprint() == qb.Fingerprint() {
		t.Error("filter key/value boundary is ambiguous in the fingerprint")
	}
}
