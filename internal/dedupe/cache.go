// ABOUTME: Thread-safe TTL cache remembering which request keys produced which results
// ABOUTME: Backs Idempotency-Key handling so retried creates return the original task

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

// Defaults for the idempotency window used by the server.
const (
	DefaultTTL     = 24 * time.Hour
	DefaultMaxSize = 10000
)

// cacheEntry stores the remembered value, when it was stored, and its list element.
type cacheEntry struct {
	value     string
	timestamp time.Time
	element   *list.Element
}

// Cache is a TTL-based, size-limited map from request keys to result IDs.
// Uses a doubly-linked list to maintain insertion order for O(1) eviction.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   *list.List // keys in insertion order (oldest at front)
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New creates a cache that forgets keys after ttl and holds at most maxSize
// keys. Non-positive arguments select DefaultTTL and DefaultMaxSize.
// A background goroutine periodically removes expired entries until Close.
func New(ttl time.Duration, maxSize int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	c := &Cache{
		entries: make(map[string]*cacheEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get returns the value remembered for key, if it has not expired.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.timestamp) >= c.ttl {
		return "", false
	}
	return entry.value, true
}

// Put remembers value for key. If the cache is at capacity the oldest entry
// is evicted to make room.
func (c *Cache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	// Existing key: refresh and move to back
	if entry, exists := c.entries[key]; exists {
		entry.value = value
		entry.timestamp = now
		c.order.MoveToBack(entry.element)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(key)
	c.entries[key] = &cacheEntry{
		value:     value,
		timestamp: now,
		element:   elem,
	}
}

// Forget drops key, if present.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.order.Remove(entry.element)
		delete(c.entries, key)
	}
}

// Len reports the number of keys currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest removes the oldest entry. Must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}

	key, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.entries, key)
}

// cleanup runs in a background goroutine, periodically removing expired entries.
func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runCleanup()
		case <-c.done:
			return
		}
	}
}

// runCleanup removes all expired entries. Entries are ordered by timestamp,
// so it stops at the first live one.
func (c *Cache) runCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for e := c.order.Front(); e != nil; {
		key, _ := e.Value.(string)
		entry := c.entries[key]
		if now.Sub(entry.timestamp) < c.ttl {
			return
		}
		next := e.Next()
		c.order.Remove(e)
		delete(c.entries, key)
		e = next
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
