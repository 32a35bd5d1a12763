// Copyright (C) 2025 Daily Secrets (dev@dailysecrets.app)
// Tests for the TTL + LRU cache store.

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStore_GetMissOnAbsent(t *testing.T) {
	s := New[string](Config{})
	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestStore_PutThenGet(t *testing.T) {
	s := New[string](Config{})
	s.Put("k", "v", time.Hour)

	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestStore_PutOverwrites(t *testing.T) {
	s := New[int](Config{})
	s.Put("k", 1, time.Hour)
	s.Put("k", 2, time.Hour)

	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, s.Len())
}

func TestStore_ExpiredEntryIsMissAndRemoved(t *testing.T) {
	clock := newFakeClock()
	s := New[string](Config{Now: clock.Now})

	s.Put("k", "v", time.Minute)
	clock.Advance(time.Minute + time.Second)

	_, ok := s.Get("k")
	assert.False(t, ok, "expired entry must never be returned")
	assert.Equal(t, 0, s.Len(), "expired entry is removed lazily on access")
}

func TestStore_EntryValidAtExactExpiry(t *testing.T) {
	clock := newFakeClock()
	s := New[string](Config{Now: clock.Now})

	s.Put("k", "v", time.Minute)
	clock.Advance(time.Minute) // now == expiresAt, not after

	_, ok := s.Get("k")
	assert.True(t, ok)
}

func TestStore_EvictExpired(t *testing.T) {
	clock := newFakeClock()
	s := New[string](Config{Now: clock.Now})

	s.Put("short", "a", time.Minute)
	s.Put("long", "b", time.Hour)
	clock.Advance(10 * time.Minute)

	assert.Equal(t, 1, s.EvictExpired())
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get("long")
	assert.True(t, ok)
}

func TestStore_LRUEvictionOnCapacity(t *testing.T) {
	clock := newFakeClock()
	s := New[string](Config{MaxEntries: 3, Now: clock.Now})

	s.Put("a", "1", time.Hour)
	clock.Advance(time.Second)
	s.Put("b", "2", time.Hour)
	clock.Advance(time.Second)
	s.Put("c", "3", time.Hour)
	clock.Advance(time.Second)

	// Touch "a" so "b" becomes the least recently accessed.
	_, ok := s.Get("a")
	require.True(t, ok)
	clock.Advance(time.Second)

	s.Put("d", "4", time.Hour)

	assert.Equal(t, 3, s.Len())
	_, ok = s.Get("b")
	assert.False(t, ok, "least-recently-accessed entry should be evicted")
	for _, key := range []string{"a", "c", "d"} {
		_, ok := s.Get(key)
		assert.True(t, ok, "entry %q should survive", key)
	}
}

func TestStore_CapacityEvictionPrefersExpired(t *testing.T) {
	clock := newFakeClock()
	s := New[string](Config{MaxEntries: 2, Now: clock.Now})

	s.Put("stale", "x", time.Minute)
	clock.Advance(time.Second)
	s.Put("fresh", "y", time.Hour)
	clock.Advance(5 * time.Minute) // "stale" is now expired

	// "stale" was accessed least recently AND is expired; either way it
	// must be the one to go.
	s.Put("new", "z", time.Hour)

	_, ok := s.Get("fresh")
	assert.True(t, ok)
	_, ok = s.Get("new")
	assert.True(t, ok)
	_, ok = s.Get("stale")
	assert.False(t, ok)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New[int](Config{MaxEntries: 64})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d", i%32)
				s.Put(key, w*1000+i, time.Hour)
				if v, ok := s.Get(key); ok {
					// A reader sees some complete value, never a torn one.
					assert.GreaterOrEqual(t, v, 0)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, s.Len(), 64)
}

func TestStore_ZeroMaxEntriesIsUnbounded(t *testing.T) {
	s := New[int](Config{})
	for i := 0; i < 500; i++ {
		s.Put(fmt.Sprintf("k%d", i), i, time.Hour)
	}
	assert.Equal(t, 500, s.Len())
}
