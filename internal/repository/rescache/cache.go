// Package rescache memoizes ranked results. Entries are tagged with the
// vector index generation they were computed against; a rebuild bumps the
// generation and makes every older entry invisible, so stale rankings are
// recomputed instead of served.
package rescache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/assessdex/assessdex/internal/domain"
)

type entry struct {
	generation      uint64
	recommendations []domain.Recommendation
}

// Cache is a bounded LRU of ranked results. Safe for concurrent use; the
// cached slices are treated as immutable once inserted.
type Cache struct {
	lru *lru.Cache[string, entry]
}

// New creates a cache holding at most capacity entries.
func New(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = 256
	}
	l, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("create result lru: %w", err)
	}
	return &Cache{lru: l}, nil
}

// Get returns the cached result for key if it was computed against the given
// index generation. A stale entry is evicted and reported as a miss.
func (c *Cache) Get(key string, generation uint64) ([]domain.Recommendation, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if e.generation != generation {
		c.lru.Remove(key)
		return nil, false
	}
	return e.recommendations, true
}

// Add stores a result computed against the given index generation, evicting
// the least-recently-used entry on overflow.
func (c *Cache) Add(key string, generation uint64, recs []domain.Recommendation) {
	c.lru.Add(key, entry{generation: generation, recommendations: recs})
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
