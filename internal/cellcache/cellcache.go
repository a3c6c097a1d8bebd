// Package cellcache memoizes sensitivity grid cells across runs. Keys are
// structural hashes of the fully overridden assumptions, so two grids that
// land on the same inputs share work.
package cellcache

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/iwvelando/corporate-valuation/pkg/valuation"
	"github.com/mitchellh/hashstructure/v2"
)

// Cache is a concurrency-safe in-memory valuation.CellCache.
type Cache struct {
	mu     sync.RWMutex
	values map[uint64]float64

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats summarizes cache usage.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{values: make(map[uint64]float64)}
}

// Get implements valuation.CellCache.
func (c *Cache) Get(key uint64) (float64, bool) {
	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Put implements valuation.CellCache.
func (c *Cache) Put(key uint64, value float64) {
	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	entries := len(c.values)
	c.mu.RUnlock()
	return Stats{Entries: entries, Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Reset drops every entry and zeroes the counters.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.values = make(map[uint64]float64)
	c.mu.Unlock()
	c.hits.Store(0)
	c.misses.Store(0)
}

type cellKey struct {
	Assumptions valuation.ExtendedAssumptions
	Metric      valuation.Metric
}

// Key is a valuation.KeyFunc hashing every assumption field and the metric.
func Key(x valuation.ExtendedAssumptions, metric valuation.Metric) (uint64, error) {
	h, err := hashstructure.Hash(cellKey{Assumptions: x, Metric: metric}, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, fmt.Errorf("hashing cell assumptions: %w", err)
	}
	return h, nil
}

var _ valuation.CellCache = (*Cache)(nil)
var _ valuation.KeyFunc = Key
