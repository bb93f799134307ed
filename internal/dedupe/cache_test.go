// ABOUTME: Tests for the idempotency key cache
// ABOUTME: Validates TTL expiration, size limits, eviction order, cleanup, and concurrency safety

package dedupe

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestCache(t *testing.T, ttl time.Duration, maxSize int) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(ttl, maxSize)
	c.now = clock.Now
	t.Cleanup(c.Close)
	return c, clock
}

func TestCache_GetMissing(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 10)

	_, ok := c.Get("never-stored")
	assert.False(t, ok)
}

func TestCache_PutGet(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 10)

	c.Put("user-1\x00key-a", "task-1")
	v, ok := c.Get("user-1\x00key-a")
	require.True(t, ok)
	assert.Equal(t, "task-1", v)

	// Same idempotency key under another user is a different entry
	_, ok = c.Get("user-2\x00key-a")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 10)

	c.Put("k", "v")
	clock.Advance(59 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCache_PutRefreshes(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 10)

	c.Put("k", "old")
	clock.Advance(50 * time.Second)
	c.Put("k", "new")
	clock.Advance(50 * time.Second)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_EvictsOldest(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 3)

	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("c", "3")
	c.Put("a", "1") // refresh moves a to the back
	c.Put("d", "4") // evicts b

	_, ok := c.Get("b")
	assert.False(t, ok)
	for _, k := range []string{"a", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
	assert.Equal(t, 3, c.Len())
}

func TestCache_Forget(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 10)

	c.Put("k", "v")
	c.Forget("k")
	c.Forget("absent")

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_RunCleanup(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 10)

	c.Put("old-1", "1")
	c.Put("old-2", "2")
	clock.Advance(45 * time.Second)
	c.Put("fresh", "3")
	clock.Advance(30 * time.Second)

	c.runCleanup()

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestCache_Defaults(t *testing.T) {
	c := New(0, 0)
	defer c.Close()

	assert.Equal(t, DefaultTTL, c.ttl)
	assert.Equal(t, DefaultMaxSize, c.maxSize)
}

func TestCache_CloseTwice(t *testing.T) {
	c := New(time.Minute, 10)
	c.Close()
	assert.NotPanics(t, c.Close)
}

func TestCache_Concurrent(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			c.Put(key, key)
			v, ok := c.Get(key)
			assert.True(t, ok)
			assert.Equal(t, key, v)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, c.Len())
}
