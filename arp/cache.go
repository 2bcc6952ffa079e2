package arp

import (
	"time"

	"github.com/soypat/pnstack"
	"github.com/soypat/pnstack/internal/lrucache"
)

// capacity is the bounded number of learned mappings the cache holds
// at once; beyond it, the oldest insertion is silently overwritten.
const capacity = 16

type entry struct {
	mac  pnstack.MacAddress
	seen time.Time
}

// Cache maps IPv4 addresses to the MAC addresses they were last seen
// using. It is a bounded, insertion-order map: lookups are read-only,
// inserts happen only during ARP rx. Safe for
// concurrent use only through the single-writer/multi-reader lock the
// caller applies (see stack.State).
type Cache struct {
	c lrucache.Cache[pnstack.IPv4Addr, entry]
}

// NewCache returns an empty cache with the default capacity.
func NewCache() *Cache {
	return &Cache{c: lrucache.New[pnstack.IPv4Addr, entry](capacity)}
}

// Get returns the MAC address learned for ip, if any.
func (c *Cache) Get(ip pnstack.IPv4Addr) (pnstack.MacAddress, bool) {
	e, ok := c.c.Get(ip)
	return e.mac, ok
}

// Insert records that ip was last seen at mac as of now, replacing any
// earlier mapping for ip.
func (c *Cache) Insert(ip pnstack.IPv4Addr, mac pnstack.MacAddress, now time.Time) {
	if _, ok := c.c.Get(ip); ok {
		c.c.Prune(func(k pnstack.IPv4Addr, _ entry) bool { return k != ip })
	}
	c.c.Push(ip, entry{mac: mac, seen: now})
}

// Len reports how many mappings are currently stored.
func (c *Cache) Len() int { return c.c.Len() }

// Purge removes every entry last seen more than ttl before now. The
// core does not require eviction; this exists for long-running
// processes that would otherwise serve stale mappings forever.
func (c *Cache) Purge(ttl time.Duration, now time.Time) {
	c.c.Prune(func(_ pnstack.IPv4Addr, e entry) bool {
		return now.Sub(e.seen) < ttl
	})
}
