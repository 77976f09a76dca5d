package cache

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semrank/internal/domain/search/result"
	"github.com/kailas-cloud/semrank/internal/domain/search/source"
)

func testResults(ids ...string) []result.Result {
	out := make([]result.Result, 0, len(ids))
	for i, id := range ids {
		out = append(out, result.New(id, 1.0-float64(i)*0.1, source.Blended))
	}
	return out
}

func TestGetOrCompute_StoresAndServes(t *testing.T) {
	c := New(16, time.Minute, zap.NewNop())

	want := testResults("a", "b", "c")
	got, err := c.GetOrCompute("key", func() ([]result.Result, error) {
		return want, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}

	// Round trip: reading back before expiry returns the same sequence in
	// the same order, without recomputing.
	cached, ok := c.Get("key")
	if !ok {
		t.Fatal("expected cache hit")
	}
	for i := range want {
		if cached[i].DocumentID() != want[i].DocumentID() || cached[i].Score() != want[i].Score() {
			t.Errorf("entry %d: got (%s, %f), want (%s, %f)",
				i, cached[i].DocumentID(), cached[i].Score(),
				want[i].DocumentID(), want[i].Score())
		}
	}
}

func TestGet_ReturnedSliceIsIsolated(t *testing.T) {
	c := New(16, time.Minute, zap.NewNop())

	if _, err := c.GetOrCompute("key", func() ([]result.Result, error) {
		return testResults("a", "b", "c"), nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, ok := c.Get("key")
	if !ok {
		t.Fatal("expected cache hit")
	}
	// Reordering a returned slice must not disturb the stored entry.
	first[0], first[2] = first[2], first[0]

	second, ok := c.Get("key")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if second[0].DocumentID() != "a" || second[2].DocumentID() != "c" {
		t.Errorf("cached order changed to (%s, %s, %s) after caller mutation",
			second[0].DocumentID(), second[1].DocumentID(), second[2].DocumentID())
	}

	// The same holds for hits served through GetOrCompute.
	third, err := c.GetOrCompute("key", func() ([]result.Result, error) {
		t.Fatal("compute must not run on a hit")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	third[0] = result.New("z", 0.1, source.Local)

	fourth, ok := c.Get("key")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if fourth[0].DocumentID() != "a" {
		t.Errorf("cached head is %s after caller mutation, want a", fourth[0].DocumentID())
	}
}

func TestGetOrCompute_HitSkipsCompute(t *testing.T) {
	c := New(16, time.Minute, zap.NewNop())

	var computes atomic.Int64
	compute := func() ([]result.Result, error) {
		computes.Add(1)
		return testResults("a"), nil
	}

	for i := 0; i < 5; i++ {
		if _, err := c.GetOrCompute("key", compute); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	if got := computes.Load(); got != 1 {
		t.Errorf("compute ran %d times, want 1", got)
	}
}

func TestGetOrCompute_SingleFlight(t *testing.T) {
	c := New(16, time.Minute, zap.NewNop())

	var computes atomic.Int64
	release := make(chan struct{})
	compute := func() ([]result.Result, error) {
		computes.Add(1)
		<-release
		return testResults("a"), nil
	}

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	lens := make([]int, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.GetOrCompute("same-key", compute)
			errs[i] = err
			lens[i] = len(res)
		}(i)
	}

	// Let every caller reach the flight group before the leader finishes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := computes.Load(); got != 1 {
		t.Errorf("compute ran %d times for one key, want 1", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Errorf("caller %d: unexpected error: %v", i, errs[i])
		}
		if lens[i] != 1 {
			t.Errorf("caller %d: got %d results, want 1", i, lens[i])
		}
	}
}

func TestGetOrCompute_FailureNotCached(t *testing.T) {
	c := New(16, time.Minute, zap.NewNop())

	boom := errors.New("provider down")
	var computes atomic.Int64
	failing := func() ([]result.Result, error) {
		computes.Add(1)
		return nil, boom
	}

	if _, err := c.GetOrCompute("key", failing); !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if _, ok := c.Get("key"); ok {
		t.Fatal("failure must not be cached")
	}

	// The next caller retries the computation rather than seeing a poisoned
	// entry.
	if _, err := c.GetOrCompute("key", failing); !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if got := computes.Load(); got != 2 {
		t.Errorf("compute ran %d times, want 2", got)
	}
}

func TestGetOrCompute_TTLExpiry(t *testing.T) {
	c := New(16, 30*time.Millisecond, zap.NewNop())

	var computes atomic.Int64
	compute := func() ([]result.Result, error) {
		computes.Add(1)
		return testResults("a"), nil
	}

	if _, err := c.GetOrCompute("key", compute); err != nil {
		t.Fatalf("first call: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get("key"); ok {
		t.Fatal("entry should have expired")
	}
	if _, err := c.GetOrCompute("key", compute); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if got := computes.Load(); got != 2 {
		t.Errorf("compute ran %d times, want 2 (recompute after expiry)", got)
	}
}

func TestBoundedEntries(t *testing.T) {
	c := New(4, time.Minute, zap.NewNop())

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("key-%d", i)
		if _, err := c.GetOrCompute(key, func() ([]result.Result, error) {
			return testResults("a"), nil
		}); err != nil {
			t.Fatalf("key %s: %v", key, err)
		}
	}

	if got := c.Len(); got > 4 {
		t.Errorf("cache holds %d entries, bound is 4", got)
	}
	// The most recent key survives, the oldest was evicted.
	if _, ok := c.Get("key-19"); !ok {
		t.Error("most recent key should still be cached")
	}
	if _, ok := c.Get("key-0"); ok {
		t.Error("oldest key should have been evicted")
	}
}
