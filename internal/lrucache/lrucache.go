package lrucache

import "slices"

type node[K, V comparable] struct {
	k K
	v V
}

type Cache[K, V comparable] struct {
	nodes []node[K, V]
	index uint // points to the last written entry
}

func New[K, V comparable](maxSize int) Cache[K, V] {
	if maxSize <= 0 {
		panic("lrucache max size must be > 0")
	}
	return Cache[K, V]{
		nodes: make([]node[K, V], 0, maxSize),
	}
}

func (c *Cache[K, V]) Get(k K) (v V, ok bool) {
	// lookup starting from index and then backwards
	i := c.index
	for range len(c.nodes) {
		n := &c.nodes[i]
		if n.k == k {
			return n.v, true
		}
		if i == 0 {
			i = uint(len(c.nodes))
		}
		i--
	}
	return v, ok
}

func (c *Cache[K, V]) Push(k K, v V) {
	// write the entry immediately after the one pointed by index (with wrapping)
	if len(c.nodes) < cap(c.nodes) {
		c.nodes = append(c.nodes, node[K, V]{k, v})
		c.index = uint(len(c.nodes) - 1)
	} else {
		c.index++
		if c.index >= uint(len(c.nodes)) {
			c.index = 0
		}
		c.nodes[c.index] = node[K, V]{k, v}
	}
}

// Len returns the number of entries currently stored.
func (c *Cache[K, V]) Len() int { return len(c.nodes) }

// Prune compacts the cache in place, keeping only entries for which
// keep returns true. Used to expire entries by TTL without the cache
// needing to know about time itself.
func (c *Cache[K, V]) Prune(keep func(k K, v V) bool) {
	// Rotate the oldest entry to the front so compaction keeps insertion
	// order and index ends on the newest surviving entry.
	if n := len(c.nodes); n > 0 {
		k := (int(c.index) + 1) % n
		slices.Reverse(c.nodes[:k])
		slices.Reverse(c.nodes[k:])
		slices.Reverse(c.nodes)
	}
	w := 0
	for _, n := range c.nodes {
		if keep(n.k, n.v) {
			c.nodes[w] = n
			w++
		}
	}
	c.nodes = c.nodes[:w]
	if w == 0 {
		c.index = 0
	} else {
		c.index = uint(w - 1)
	}
}
