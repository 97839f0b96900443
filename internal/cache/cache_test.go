package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/KaramelBytes/medcombo/internal/combo"
)

func countingCompute(calls *atomic.Int64, release <-chan struct{}) ComputeFunc {
	return func(col1, col2 string) (*combo.Result, error) {
		calls.Add(1)
		if release != nil {
			<-release
		}
		return &combo.Result{Col1: col1, Col2: col2}, nil
	}
}

func TestGetCoalescesConcurrentRequests(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	c, err := New(8, countingCompute(&calls, release))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	results := make([]*combo.Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.Get("metformin", "insulin")
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			results[i] = res
		}(i)
	}
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("compute called %d times, want 1", got)
	}
	for i, r := range results {
		if r != results[0] {
			t.Fatalf("result %d is a different instance", i)
		}
	}
	st := c.Stats()
	if st.Misses != 1 || st.Hits+st.Misses > n || st.Entries != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestGetOrderedPairsAreDistinct(t *testing.T) {
	var calls atomic.Int64
	c, err := New(8, countingCompute(&calls, nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a, _ := c.Get("metformin", "insulin")
	b, _ := c.Get("insulin", "metformin")
	if a == b || calls.Load() != 2 {
		t.Fatalf("swapped pair must be computed separately (calls=%d)", calls.Load())
	}
	if _, err := c.Get("metformin", "insulin"); err != nil || calls.Load() != 2 {
		t.Fatalf("expected cache hit, calls=%d err=%v", calls.Load(), err)
	}
}

func TestEviction(t *testing.T) {
	var calls atomic.Int64
	c, err := New(1, countingCompute(&calls, nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, _ = c.Get("a", "b")
	_, _ = c.Get("c", "d")
	_, _ = c.Get("a", "b")
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3 after eviction", calls.Load())
	}
	c.Purge()
	if c.Stats().Entries != 0 {
		t.Fatalf("Purge left entries")
	}
}

func TestDisabledRecomputes(t *testing.T) {
	var calls atomic.Int64
	c, err := New(0, countingCompute(&calls, nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, _ = c.Get("a", "b")
	_, _ = c.Get("a", "b")
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2 with caching disabled", calls.Load())
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	var calls atomic.Int64
	boom := errors.New("boom")
	c, err := New(4, func(col1, col2 string) (*combo.Result, error) {
		calls.Add(1)
		return nil, boom
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := c.Get("a", "b"); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}
