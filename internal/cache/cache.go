package cache

import (
	"container/list"
	"errors"
	"sync"
)

// NotFound is returned by Get when the key is not in the cache.
const NotFound = -1

// ErrInvalidCapacity is returned by New when Config.Capacity is not positive.
var ErrInvalidCapacity = errors.New("cache capacity must be positive")

// Config controls cache capacity and eviction notification.
//
// Capacity is fixed for the lifetime of the cache and must be > 0.
// OnEvict, if set, is called once for every entry removed to make room.
// It runs with the cache lock held and must not call back into the cache.
type Config struct {
	Capacity int
	OnEvict  func(key string, value int)
}

// Entry is a single key/value pair as seen in a snapshot.
type Entry struct {
	Key   string
	Value int
}

// Stats is a point-in-time copy of the cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a fixed-capacity key-value cache with least-recently-used eviction.
//
// A map gives O(1) key lookup and a doubly-linked list keeps recency order.
// Reads through Get/Lookup reorder the list, so every operation takes the
// same mutex; there is no read-only fast path.
type Cache struct {
	mu sync.Mutex

	capacity int
	items    map[string]*list.Element
	order    *list.List // Front = least recently used, Back = most recently used

	onEvict func(key string, value int)
	stats   Stats
}

// New constructs a cache holding at most cfg.Capacity entries.
func New(cfg Config) (*Cache, error) {
	if cfg.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Cache{
		capacity: cfg.Capacity,
		items:    make(map[string]*list.Element, cfg.Capacity),
		order:    list.New(),
		onEvict:  cfg.OnEvict,
	}, nil
}

// Get returns the value for key and marks it most recently used.
// It returns NotFound if the key is absent.
func (c *Cache) Get(key string) int {
	v, ok := c.Lookup(key)
	if !ok {
		return NotFound
	}
	return v
}

// Lookup is the comma-ok form of Get. A hit moves key to the most recently
// used position.
func (c *Cache) Lookup(key string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return 0, false
	}
	c.stats.Hits++
	c.order.MoveToBack(el)
	return el.Value.(*Entry).Value, true
}

// Peek returns the value for key without changing its recency.
func (c *Cache) Peek(key string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return 0, false
	}
	return el.Value.(*Entry).Value, true
}

// Put inserts or updates key.
//
// Updating an existing key replaces its value and marks it most recently
// used; it never evicts. Inserting a new key that pushes the cache past
// capacity evicts exactly one entry, the least recently used.
func (c *Cache) Put(key string, value int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*Entry).Value = value
		c.order.MoveToBack(el)
		return
	}

	c.items[key] = c.order.PushBack(&Entry{Key: key, Value: value})
	if c.order.Len() > c.capacity {
		c.removeOldestLocked()
	}
}

// PutIfAbsent inserts key only if it is not already cached, evicting like Put.
// It returns the value held in the cache after the call and whether this call
// inserted it. An existing entry keeps both its value and its recency.
func (c *Cache) PutIfAbsent(key string, value int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		return el.Value.(*Entry).Value, false
	}

	c.items[key] = c.order.PushBack(&Entry{Key: key, Value: value})
	if c.order.Len() > c.capacity {
		c.removeOldestLocked()
	}
	return value, true
}

// Contains reports whether key is present. It does not change recency.
func (c *Cache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns a copy of the hit, miss and eviction counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Entries returns a snapshot of the cache contents, least recently used first.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, *el.Value.(*Entry))
	}
	return out
}

// Keys returns keys in LRU -> MRU order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*Entry).Key)
	}
	return out
}

func (c *Cache) removeOldestLocked() {
	el := c.order.Front()
	if el == nil {
		return
	}
	e := el.Value.(*Entry)
	c.order.Remove(el)
	delete(c.items, e.Key)
	c.stats.Evictions++

	if c.onEvict != nil {
		c.onEvict(e.Key, e.Value)
	}
}
