// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes query results keyed by normalized criteria.
package cache

import (
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pdiddy/paper-search/internal/observability"
	"github.com/pdiddy/paper-search/pkg/types"
)

// DefaultCapacity is the number of results kept when none is configured.
const DefaultCapacity = 100

// Searcher computes a result for criteria over records.
type Searcher interface {
	Search(c types.FilterCriteria, records []types.PaperRecord) types.QueryResult
}

// Key returns the normalized cache key for c: trimmed lowercased keywords,
// both year bounds and the sorted journal list.
func Key(c types.FilterCriteria) string {
	journals := append([]string(nil), c.Journals...)
	sort.Strings(journals)
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(c.Keywords)),
		strconv.Itoa(c.YearFrom),
		strconv.Itoa(c.YearTo),
		strings.Join(journals, "|"),
	}, "\x1f")
}

type entry struct {
	result     types.QueryResult
	generation uint64
}

// Stats counts cache activity.
type Stats struct {
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Stale     int `json:"stale"`
	Evictions int `json:"evictions"`
	Size      int `json:"size"`
}

// Cache is a bounded FIFO map from normalized criteria to results. Reading
// an entry does not change its eviction order. It is safe for concurrent use.
type Cache struct {
	searcher Searcher
	capacity int
	metrics  *observability.Metrics

	mu      sync.Mutex
	entries map[string]entry
	order   []string
	stats   Stats
}

// New returns a cache in front of s holding at most capacity results.
// A capacity of zero or less uses DefaultCapacity.
func New(s Searcher, capacity int, m *observability.Metrics) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		searcher: s,
		capacity: capacity,
		metrics:  m,
		entries:  make(map[string]entry),
	}
}

// GetOrCompute returns the cached result for c or computes and stores it.
// There is no invalidation when records grow; use GetOrComputeAt to tie
// entries to a store generation.
func (c *Cache) GetOrCompute(criteria types.FilterCriteria, records []types.PaperRecord) types.QueryResult {
	return c.lookup(criteria, records, 0, false)
}

// GetOrComputeAt is GetOrCompute for records taken at store generation gen.
// An entry computed at another generation is recomputed in place and keeps
// its position in the eviction order.
func (c *Cache) GetOrComputeAt(criteria types.FilterCriteria, records []types.PaperRecord, gen uint64) types.QueryResult {
	return c.lookup(criteria, records, gen, true)
}

func (c *Cache) lookup(criteria types.FilterCriteria, records []types.PaperRecord, gen uint64, checkGen bool) types.QueryResult {
	key := Key(criteria)

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && (!checkGen || e.generation == gen) {
		c.stats.Hits++
		c.mu.Unlock()
		c.metrics.RecordCacheLookup("hit")
		return e.result
	}
	stale := ok
	if stale {
		c.stats.Stale++
	} else {
		c.stats.Misses++
	}
	c.mu.Unlock()

	if stale {
		c.metrics.RecordCacheLookup("stale")
	} else {
		c.metrics.RecordCacheLookup("miss")
	}

	result := c.searcher.Search(criteria, records)
	c.metrics.RecordSearch(len(result))

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, present := c.entries[key]; !present {
		c.order = append(c.order, key)
	}
	c.entries[key] = entry{result: result, generation: gen}
	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = slices.Delete(c.order, 0, 1)
		delete(c.entries, oldest)
		c.stats.Evictions++
		c.metrics.RecordCacheEviction()
	}
	return result
}

// Contains reports whether criteria with the same key are cached.
func (c *Cache) Contains(criteria types.FilterCriteria) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[Key(criteria)]
	return ok
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a copy of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = len(c.entries)
	return s
}
