package stack

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/soypat/pnstack/arp"
	"github.com/soypat/pnstack/ethernet"
	"github.com/soypat/pnstack/tcp"

	"github.com/soypat/pnstack"
)

// recvBufferSize is the fixed capacity given to every accepted
// connection's receive ring buffer.
const recvBufferSize = 64 * 1024

// arpCacheTTL bounds how long a learned ARP mapping is trusted before
// Run's periodic PruneARP call evicts it; the core does not require
// eviction, but a long-running process would otherwise serve a stale
// mapping to a host whose interface card changed forever.
const arpCacheTTL = 5 * time.Minute

// State centralizes everything the pipeline mutates across
// iterations: the ARP cache and the TCP connection table, both guarded
// by one RWMutex, plus the immutable Config. Methods copy data out
// from under the lock before returning; none hold the lock across
// device I/O, so a blocked write never blocks a concurrent reader.
type State struct {
	mu       sync.RWMutex
	cfg      Config
	arpCache *arp.Cache
	tcpTable *tcp.Table
}

// NewState returns a State ready to drive one pipeline iteration at a
// time. cfg is copied; mutate the original freely after this call.
func NewState(cfg Config) *State {
	return &State{
		cfg:      cfg,
		arpCache: arp.NewCache(),
		tcpTable: tcp.NewTable(),
	}
}

// Config returns a copy of the immutable configuration.
func (s *State) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// WithARPCache runs fn with exclusive access to the shared ARP cache.
// fn must not retain the pointer past its return, since cache contents
// may be pruned concurrently once the lock is released.
func (s *State) WithARPCache(fn func(c *arp.Cache)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.arpCache)
}

// WithTCPTable runs fn with exclusive access to the connection table.
func (s *State) WithTCPTable(fn func(t *tcp.Table)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.tcpTable)
}

// ResolveARP returns the MAC address for target, consulting the cache
// under lock, broadcasting a single request on a miss, then polling the
// cache at arp.ResolvePollInterval intervals. Unlike routing the call
// through WithARPCache, the lock here is held only for the brief Get
// calls: the broadcast write and the poll wait both run lock-free, so a
// stalled resolution never blocks concurrent ARP/TCP handling.
func (s *State) ResolveARP(ctx context.Context, w ethernet.Writer, scratch []byte, ourMAC pnstack.MacAddress, ourIP, target pnstack.IPv4Addr) (pnstack.MacAddress, error) {
	if mac, ok := s.arpGet(target); ok {
		return mac, nil
	}
	if err := arp.TxRequest(w, scratch, ourMAC, ourIP, target); err != nil {
		return pnstack.MacAddress{}, err
	}
	ticker := time.NewTicker(arp.ResolvePollInterval)
	defer ticker.Stop()
	for i := 0; i < arp.ResolvePollAttempts; i++ {
		select {
		case <-ctx.Done():
			return pnstack.MacAddress{}, ctx.Err()
		case <-ticker.C:
			if mac, ok := s.arpGet(target); ok {
				return mac, nil
			}
		}
	}
	return pnstack.MacAddress{}, fmt.Errorf("%w: %s", arp.ErrCannotResolve, target)
}

func (s *State) arpGet(ip pnstack.IPv4Addr) (pnstack.MacAddress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.arpCache.Get(ip)
}

// PruneARP evicts every ARP cache entry last seen more than
// arpCacheTTL before now.
func (s *State) PruneARP(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arpCache.Purge(arpCacheTTL, now)
}

// Listen registers a new listening TCP endpoint.
func (s *State) Listen(local tcp.Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tcpTable.Listen(local, recvBufferSize)
}
