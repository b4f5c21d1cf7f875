package lfu

// nilIndex marks the absence of a neighbour or of a free slot.
const nilIndex = -1

type entry[K comparable, V any] struct {
	key   K
	value V
	freq  uint64
	prev  int
	next  int
}

// bucket holds the arena indices of all entries sharing a frequency.
// head is the oldest entry, tail the newest.
type bucket struct {
	head int
	tail int
	size int
}

// alloc stores a fresh entry with frequency 1 and returns its slot.
// Freed slots are reused before the arena grows.
func (c *Cache[K, V]) alloc(key K, value V) int {
	e := entry[K, V]{key: key, value: value, freq: 1, prev: nilIndex, next: nilIndex}
	if c.free != nilIndex {
		i := c.free
		c.free = c.entries[i].next
		c.entries[i] = e
		return i
	}
	c.entries = append(c.entries, e)
	return len(c.entries) - 1
}

// release clears slot i and pushes it on the free list.
func (c *Cache[K, V]) release(i int) {
	c.entries[i] = entry[K, V]{freq: 0, prev: nilIndex, next: c.free}
	c.free = i
}

// link appends slot i at the newest end of the bucket for freq.
func (c *Cache[K, V]) link(freq uint64, i int) {
	b, ok := c.buckets[freq]
	if !ok {
		b = &bucket{head: nilIndex, tail: nilIndex}
		c.buckets[freq] = b
	}
	e := &c.entries[i]
	e.prev = b.tail
	e.next = nilIndex
	if b.tail != nilIndex {
		c.entries[b.tail].next = i
	} else {
		b.head = i
	}
	b.tail = i
	b.size++
}

// unlink detaches slot i from the bucket for freq and drops the bucket once
// it is empty.
func (c *Cache[K, V]) unlink(freq uint64, i int) {
	b := c.buckets[freq]
	e := &c.entries[i]
	if e.prev != nilIndex {
		c.entries[e.prev].next = e.next
	} else {
		b.head = e.next
	}
	if e.next != nilIndex {
		c.entries[e.next].prev = e.prev
	} else {
		b.tail = e.prev
	}
	e.prev, e.next = nilIndex, nilIndex
	b.size--
	if b.size == 0 {
		delete(c.buckets, freq)
	}
}
