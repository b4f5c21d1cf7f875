package lfu

import (
	lfuerrors "github.com/mirkobrombin/go-lfu/v1/errors"
)

// maxPrealloc caps the arena capacity reserved up front so that very large
// caches grow on demand.
const maxPrealloc = 1024

// Cache is a fixed-capacity LFU cache.
//
// K must be comparable; V is copied in and out of the cache by value.
type Cache[K comparable, V any] struct {
	capacity int
	entries  []entry[K, V]
	free     int
	index    map[K]int
	buckets  map[uint64]*bucket
	minFreq  uint64
	onEvict  func(key K, value V)
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithOnEvict registers fn to be called whenever an entry is evicted to make
// room for a new key. fn runs synchronously inside Put and must not call
// back into the cache.
func WithOnEvict[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.onEvict = fn
	}
}

// New returns a Cache holding at most capacity entries.
//
// A zero capacity is valid and yields a cache that never stores anything.
// A negative capacity returns ErrNegativeCapacity.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) (*Cache[K, V], error) {
	if capacity < 0 {
		return nil, lfuerrors.ErrNegativeCapacity
	}
	c := &Cache[K, V]{
		capacity: capacity,
		entries:  make([]entry[K, V], 0, min(capacity, maxPrealloc)),
		free:     nilIndex,
		index:    make(map[K]int, min(capacity, maxPrealloc)),
		buckets:  make(map[uint64]*bucket),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the value stored for key and reports whether it was found.
// A hit counts as an access and promotes the entry to the next frequency.
// A miss has no side effects.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	i, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.touch(i)
	return c.entries[i].value, true
}

// Put stores value for key.
//
// Overwriting an existing key counts as an access. Inserting a new key into
// a full cache first evicts the oldest entry among those with the lowest
// frequency.
func (c *Cache[K, V]) Put(key K, value V) {
	if c.capacity == 0 {
		return
	}
	if i, ok := c.index[key]; ok {
		c.entries[i].value = value
		c.touch(i)
		return
	}
	if len(c.index) >= c.capacity {
		c.evict()
	}
	i := c.alloc(key, value)
	c.index[key] = i
	c.link(1, i)
	c.minFreq = 1
}

// Len returns the number of live entries.
func (c *Cache[K, V]) Len() int { return len(c.index) }

// Cap returns the capacity the cache was built with.
func (c *Cache[K, V]) Cap() int { return c.capacity }

// Frequency returns the access count of key without touching it.
func (c *Cache[K, V]) Frequency(key K) (uint64, bool) {
	i, ok := c.index[key]
	if !ok {
		return 0, false
	}
	return c.entries[i].freq, true
}

// MinFrequency returns the lowest frequency among live entries. It reports
// false when the cache is empty.
func (c *Cache[K, V]) MinFrequency() (uint64, bool) {
	if len(c.index) == 0 {
		return 0, false
	}
	return c.minFreq, true
}

// touch moves slot i from its bucket to the newest end of the next one.
func (c *Cache[K, V]) touch(i int) {
	from := c.entries[i].freq
	c.unlink(from, i)
	c.entries[i].freq = from + 1
	c.link(from+1, i)
	if from != c.minFreq {
		return
	}
	if _, ok := c.buckets[from]; ok {
		return
	}
	// Scan forward; the promoted entry guarantees a bucket at from+1.
	f := from + 1
	for {
		if _, ok := c.buckets[f]; ok {
			break
		}
		f++
	}
	c.minFreq = f
}

// evict drops the oldest entry of the minimum-frequency bucket. minFreq is
// left as is because Put resets it to 1 right after.
func (c *Cache[K, V]) evict() {
	b, ok := c.buckets[c.minFreq]
	if !ok {
		return
	}
	i := b.head
	key, value := c.entries[i].key, c.entries[i].value
	c.unlink(c.minFreq, i)
	delete(c.index, key)
	c.release(i)
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}
