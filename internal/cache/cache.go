// Package cache memoizes combination results per ordered column pair.
//
// Results are computed at most once per pair at a time: concurrent requests
// for the same pair share one computation, and completed results stay in an
// LRU until evicted. Errors are never cached.
package cache

import (
	"fmt"
	"sync/atomic"

	"github.com/KaramelBytes/medcombo/internal/combo"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// ComputeFunc produces the result for an ordered column pair.
type ComputeFunc func(col1, col2 string) (*combo.Result, error)

type pairKey struct{ col1, col2 string }

// Results is a concurrency-safe result memo. Returned results are shared and must not be modified.
type Results struct {
	lru    *lru.Cache[pairKey, *combo.Result] // nil when caching is disabled
	group  singleflight.Group
	fn     ComputeFunc
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// New returns a memo holding up to size results. size <= 0 disables retention;
// concurrent identical requests are still coalesced.
func New(size int, fn ComputeFunc) (*Results, error) {
	r := &Results{fn: fn}
	if size > 0 {
		c, err := lru.New[pairKey, *combo.Result](size)
		if err != nil {
			return nil, fmt.Errorf("create lru: %w", err)
		}
		r.lru = c
	}
	return r, nil
}

// Get returns the cached result for (col1, col2), computing it if needed.
func (r *Results) Get(col1, col2 string) (*combo.Result, error) {
	key := pairKey{col1, col2}
	if res, ok := r.lookup(key); ok {
		r.hits.Add(1)
		return res, nil
	}
	v, err, _ := r.group.Do(col1+"\x00"+col2, func() (any, error) {
		// A flight that finished between lookup and Do has already filled the LRU.
		if res, ok := r.lookup(key); ok {
			r.hits.Add(1)
			return res, nil
		}
		r.misses.Add(1)
		res, err := r.fn(col1, col2)
		if err != nil {
			return nil, err
		}
		if r.lru != nil {
			r.lru.Add(key, res)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*combo.Result), nil
}

func (r *Results) lookup(key pairKey) (*combo.Result, bool) {
	if r.lru == nil {
		return nil, false
	}
	return r.lru.Get(key)
}

// Stats returns hit/miss counters and the current entry count.
func (r *Results) Stats() Stats {
	s := Stats{Hits: r.hits.Load(), Misses: r.misses.Load()}
	if r.lru != nil {
		s.Entries = r.lru.Len()
	}
	return s
}

// Purge drops every cached result.
func (r *Results) Purge() {
	if r.lru != nil {
		r.lru.Purge()
	}
}
