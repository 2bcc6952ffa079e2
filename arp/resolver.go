package arp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soypat/pnstack"
	"github.com/soypat/pnstack/ethernet"
)

// ErrIgnore signals an ARP packet outside the IPv4-over-Ethernet case
// this stack speaks: a quiet, expected drop.
var ErrIgnore = errors.New("arp: unsupported hardware/protocol type")

// ErrCannotResolve is returned by Resolve when the target never
// answered the broadcast request within the polling window.
var ErrCannotResolve = errors.New("arp: could not resolve mac address")

const (
	// ResolvePollInterval and ResolvePollAttempts are exported so a
	// caller that needs to poll the cache itself (stack.State, to avoid
	// holding its lock across Resolve's broadcast+wait) can reproduce
	// the same timing Resolve uses internally.
	ResolvePollInterval = time.Second
	ResolvePollAttempts = 5
)

// Rx parses an ARP packet and unconditionally learns the sender's
// mapping into cache. It reports whether the packet is a request for
// ourIP, along with the requester's address pair needed to answer it.
func Rx(buf []byte, ourIP pnstack.IPv4Addr, cache *Cache, now time.Time) (requesterMAC pnstack.MacAddress, requesterIP pnstack.IPv4Addr, wantsReply bool, err error) {
	h, err := NewHeader(buf)
	if err != nil {
		return pnstack.MacAddress{}, pnstack.IPv4Addr{}, false, err
	}
	htype, hlen := h.Hardware()
	ptype, plen := h.Protocol()
	if htype != hwEthernet || ptype != pnstack.EtherTypeIPv4 || hlen != 6 || plen != 4 {
		return pnstack.MacAddress{}, pnstack.IPv4Addr{}, false, ErrIgnore
	}
	senderMAC, senderIP := h.Sender()
	requesterMAC = pnstack.MacAddress(*senderMAC)
	requesterIP = pnstack.IPv4Addr(*senderIP)
	cache.Insert(requesterIP, requesterMAC, now)

	_, targetIP := h.Target()
	wantsReply = h.Operation() == pnstack.ARPRequest && pnstack.IPv4Addr(*targetIP) == ourIP
	return requesterMAC, requesterIP, wantsReply, nil
}

// TxRequest broadcasts an ARP request for target.
func TxRequest(w ethernet.Writer, scratch []byte, ourMAC pnstack.MacAddress, ourIP, target pnstack.IPv4Addr) error {
	var body [headerSize]byte
	h, _ := NewHeader(body[:])
	h.SetHardwareProtocol()
	h.SetOperation(pnstack.ARPRequest)
	sm, si := h.Sender()
	*sm, *si = ourMAC, ourIP
	tm, ti := h.Target()
	*tm, *ti = pnstack.MacAddress{}, target
	return ethernet.Tx(w, scratch, ourMAC, pnstack.BroadcastMAC, pnstack.EtherTypeARP, body[:])
}

// TxReply answers a request from (requesterMAC, requesterIP) with our
// own address pair.
func TxReply(w ethernet.Writer, scratch []byte, ourMAC pnstack.MacAddress, ourIP pnstack.IPv4Addr, requesterMAC pnstack.MacAddress, requesterIP pnstack.IPv4Addr) error {
	var body [headerSize]byte
	h, _ := NewHeader(body[:])
	h.SetHardwareProtocol()
	h.SetOperation(pnstack.ARPReply)
	sm, si := h.Sender()
	*sm, *si = ourMAC, ourIP
	tm, ti := h.Target()
	*tm, *ti = requesterMAC, requesterIP
	return ethernet.Tx(w, scratch, ourMAC, requesterMAC, pnstack.EtherTypeARP, body[:])
}

// Resolve returns the MAC address for target, consulting cache first.
// On a miss it sends exactly one broadcast request and polls the cache
// up to five times at one-second intervals, returning ErrCannotResolve
// if none of the polls observe an answer. ctx cancellation aborts the
// wait early.
func Resolve(ctx context.Context, w ethernet.Writer, scratch []byte, cache *Cache, ourMAC pnstack.MacAddress, ourIP, target pnstack.IPv4Addr) (pnstack.MacAddress, error) {
	if mac, ok := cache.Get(target); ok {
		return mac, nil
	}
	if err := TxRequest(w, scratch, ourMAC, ourIP, target); err != nil {
		return pnstack.MacAddress{}, err
	}
	ticker := time.NewTicker(ResolvePollInterval)
	defer ticker.Stop()
	for i := 0; i < ResolvePollAttempts; i++ {
		select {
		case <-ctx.Done():
			return pnstack.MacAddress{}, ctx.Err()
		case <-ticker.C:
			if mac, ok := cache.Get(target); ok {
				return mac, nil
			}
		}
	}
	return pnstack.MacAddress{}, fmt.Errorf("%w: %s", ErrCannotResolve, target)
}
