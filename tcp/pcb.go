package tcp

import (
	"github.com/soypat/pnstack"
	"github.com/soypat/pnstack/internal"
)

// State is a TCP connection state restricted to the states this
// ingress-only stack needs. States beyond SYN-RECEIVED are an explicit
// non-goal; ESTABLISHED and later belong to a future extension.
type State uint8

const (
	StateClosed State = iota
	StateListen
	StateSynReceived
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateListen:
		return "LISTEN"
	case StateSynReceived:
		return "SYN-RECEIVED"
	default:
		return "State(unknown)"
	}
}

// Endpoint is an (IP, port) pair. The zero value represents the
// wildcard foreign endpoint (ANY, 0) used by a PCB in LISTEN.
type Endpoint struct {
	IP   pnstack.IPv4Addr
	Port uint16
}

// sendSpace tracks local data being sent, restricted to the fields
// needed to complete a passive open.
type sendSpace struct {
	ISS uint32 // initial send sequence number, chosen locally
	UNA uint32 // oldest unacknowledged sequence number
	NXT uint32 // next sequence number to send
	WND uint16 // window most recently advertised by remote
}

// recvSpace tracks remote data being received.
type recvSpace struct {
	IRS uint32 // initial receive sequence number, from the peer's SYN
	NXT uint32 // next sequence number expected from remote
	WND uint16 // window we advertise to remote
}

// PCB is a protocol control block. Only CLOSED, LISTEN, and
// SYN_RECEIVED are reachable; a PCB never observes data transfer.
type PCB struct {
	State          State
	Local, Foreign Endpoint
	snd            sendSpace
	rcv            recvSpace
	RecvBuffer     internal.Ring
}

// NewListener returns a PCB in LISTEN bound to local, with foreign
// left at its wildcard zero value.
func NewListener(local Endpoint, recvBufSize int) *PCB {
	return &PCB{
		State:      StateListen,
		Local:      local,
		RecvBuffer: internal.Ring{Buf: make([]byte, recvBufSize)},
	}
}

// ISS returns the initial send sequence number chosen for this connection.
func (p *PCB) ISS() uint32 { return p.snd.ISS }

// IRS returns the initial receive sequence number taken from the peer's SYN.
func (p *PCB) IRS() uint32 { return p.rcv.IRS }

// RecvNext returns the next sequence number expected from the remote peer.
func (p *PCB) RecvNext() uint32 { return p.rcv.NXT }

// RecvWindow returns the window currently advertised to the remote peer.
func (p *PCB) RecvWindow() uint16 { return p.rcv.WND }

func (p *PCB) matchesFourTuple(local, foreign Endpoint) bool {
	return p.Local == local && p.Foreign == foreign
}

func (p *PCB) matchesListen(local Endpoint) bool {
	return p.State == StateListen &&
		(p.Local.IP == (pnstack.IPv4Addr{}) || p.Local.IP == local.IP) &&
		p.Local.Port == local.Port
}

// acceptSyn transitions a freshly allocated PCB into SYN_RECEIVED in
// response to an inbound SYN, per the passive-open row of the
// segment-arrives table: irs = seg.seq, iss = a fresh random value,
// rcv.next = irs+1, rcv.window = the receive buffer's capacity, capped
// at 65535, the largest value the 16-bit window field holds.
func (p *PCB) acceptSyn(local, foreign Endpoint, seq uint32, iss uint32, recvBufSize int) {
	p.State = StateSynReceived
	p.Local = local
	p.Foreign = foreign
	p.RecvBuffer = internal.Ring{Buf: make([]byte, recvBufSize)}
	p.rcv.IRS = seq
	p.rcv.NXT = seq + 1
	p.rcv.WND = uint16(min(p.RecvBuffer.Free(), 0xffff))
	p.snd.ISS = iss
	p.snd.UNA = iss
	p.snd.NXT = iss + 1
}

// Table holds every active PCB. At most one PCB may match a concrete
// four-tuple; lookups try the four-tuple first, then fall back to a
// LISTEN match.
type Table struct {
	pcbs []*PCB
}

// NewTable returns an empty connection table.
func NewTable() *Table { return &Table{} }

// Listen adds a new PCB in LISTEN bound to local and returns it.
func (t *Table) Listen(local Endpoint, recvBufSize int) *PCB {
	pcb := NewListener(local, recvBufSize)
	t.pcbs = append(t.pcbs, pcb)
	return pcb
}

// Find returns the PCB that should handle a segment addressed
// local<-foreign: an exact four-tuple match takes priority over a
// PCB in LISTEN whose local endpoint matches.
func (t *Table) Find(local, foreign Endpoint) *PCB {
	for _, p := range t.pcbs {
		if p.matchesFourTuple(local, foreign) {
			return p
		}
	}
	for _, p := range t.pcbs {
		if p.matchesListen(local) {
			return p
		}
	}
	return nil
}

// Add inserts a PCB directly, used when accepting a new connection
// out of a LISTEN match.
func (t *Table) Add(pcb *PCB) { t.pcbs = append(t.pcbs, pcb) }

// Close removes pcb from the table.
func (t *Table) Close(pcb *PCB) {
	for i, p := range t.pcbs {
		if p == pcb {
			t.pcbs = append(t.pcbs[:i], t.pcbs[i+1:]...)
			return
		}
	}
}

// Established calls fn for every PCB currently in SYN_RECEIVED or
// later; an extension point for a future data-transfer layer.
func (t *Table) Established(fn func(*PCB)) {
	for _, p := range t.pcbs {
		if p.State == StateSynReceived {
			fn(p)
		}
	}
}
