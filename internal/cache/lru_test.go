package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func put[T any](c *LRUCache[T], key string, v T) {
	c.GetOrCreate(key, func() T { return v })
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := NewLRUCache[int](2, 0, WithEvictHook(func(k string) { evicted = append(evicted, k) }))

	put(c, "a", 1)
	put(c, "b", 2)
	_, ok := c.Get("a") // a is now most recent
	require.True(t, ok)
	put(c, "c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, 2, c.Size())
}

func TestLRUSlidingExpiry(t *testing.T) {
	clock := newClock()
	c := NewLRUCache[string](10, time.Minute, WithClock(clock.Now))

	put(c, "k", "v")
	clock.Advance(50 * time.Second)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	// the hit above pushed expiry out again
	clock.Advance(50 * time.Second)
	_, ok = c.Get("k")
	assert.True(t, ok)

	clock.Advance(61 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestLRUGetOrCreate(t *testing.T) {
	c := NewLRUCache[*int](10, time.Minute)
	calls := 0
	create := func() *int { calls++; n := calls; return &n }

	first, created := c.GetOrCreate("s", create)
	require.True(t, created)
	second, created := c.GetOrCreate("s", create)
	require.False(t, created)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestLRUCleanExpired(t *testing.T) {
	clock := newClock()
	c := NewLRUCache[int](10, time.Minute, WithClock(clock.Now))

	put(c, "old", 1)
	clock.Advance(30 * time.Second)
	put(c, "new", 2)
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, c.CleanExpired())
	_, ok := c.Get("new")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Size())
}

func TestLRUGetMissing(t *testing.T) {
	c := NewLRUCache[int](10, 0)
	put(c, "a", 1)
	_, ok := c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Size(), "Get never inserts")
}

func TestManagerSweepAndRun(t *testing.T) {
	clock := newClock()
	c := NewLRUCache[int](10, time.Second, WithClock(clock.Now))
	put(c, "a", 1)
	put(c, "b", 2)

	m := NewManager(5*time.Millisecond, nil)
	m.Register(c)

	clock.Advance(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
	assert.Equal(t, 0, m.Sweep())
}
