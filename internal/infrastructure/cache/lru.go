package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/project2052/calculation-service/internal/domain/model"
	"github.com/project2052/calculation-service/internal/domain/port"
)

// DefaultCapacity bounds the cache when no explicit capacity is configured.
const DefaultCapacity = 100

type entry struct {
	key        string
	input      model.CalculationEngineInput
	output     model.CalculationEngineOutput
	lastAccess time.Time
	hits       uint64
}

// LRU is a bounded, mutex-guarded calculation result store. Recency is
// tracked by list position (front = most recent), so eviction never scans
// timestamps. All methods are safe for concurrent use and atomic with
// respect to each other.
type LRU struct {
	mu        sync.Mutex
	capacity  int
	order     *list.List
	items     map[string]*list.Element
	hits      uint64
	misses    uint64
	evictions uint64
}

var _ port.CalculationCache = (*LRU)(nil)

// New creates an LRU bounded at capacity entries. Non-positive capacities
// fall back to DefaultCapacity.
func New(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Key derives the content hash key for an input. It delegates to
// GenerateKey so the key scheme stays private to this package.
func (c *LRU) Key(in model.CalculationEngineInput) (string, error) {
	return GenerateKey(in)
}

// Get returns the cached output for key and promotes the entry to
// most-recently-used. The returned output must be treated as read-only.
func (c *LRU) Get(key string) (*model.CalculationEngineOutput, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	c.hits++
	c.order.MoveToFront(el)

	e := el.Value.(*entry)
	e.lastAccess = time.Now()
	e.hits++

	out := e.output
	return &out, true
}

// Set stores a result under key. Storing an existing key refreshes its
// value and recency without evicting; storing a new key at capacity evicts
// the least-recently-used entry first.
func (c *LRU) Set(key string, input model.CalculationEngineInput, output model.CalculationEngineOutput) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.input = input
		e.output = output
		e.lastAccess = time.Now()
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	el := c.order.PushFront(&entry{
		key:        key,
		input:      input,
		output:     output,
		lastAccess: time.Now(),
	})
	c.items[key] = el
}

// Invalidate removes a single entry. Removing an absent key is a no-op.
func (c *LRU) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
}

// InvalidateByProposalID removes every entry whose key embeds the proposal
// ID and reports how many were dropped. This is a linear scan: the cache is
// small and invalidation is rare next to lookups.
func (c *LRU) InvalidateByProposalID(proposalID uuid.UUID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	needle := proposalID.String()
	removed := 0
	for key, el := range c.items {
		if strings.Contains(key, needle) {
			c.remove(el)
			removed++
		}
	}
	return removed
}

// Stats snapshots the usage counters. HitRate is hits/(hits+misses), zero
// when the cache has never been queried.
func (c *LRU) Stats() model.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := model.CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      c.order.Len(),
		Capacity:  c.capacity,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// evictOldest drops the back of the recency list. Callers hold the lock.
func (c *LRU) evictOldest() {
	back := c.order.Back()
	if back == nil {
		return
	}
	c.remove(back)
	c.evictions++
}

// remove unlinks an element from both the list and the index. Callers hold
// the lock.
func (c *LRU) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
