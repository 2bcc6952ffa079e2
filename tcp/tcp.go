package tcp

import (
	"errors"

	"github.com/soypat/pnstack"
	"github.com/soypat/pnstack/ipv4"
)

// ErrIgnore signals an incoming RST with no matching PCB: the segment
// is simply dropped, per RFC 9293's rule against answering a RST with
// another RST.
var ErrIgnore = errors.New("tcp: rst with no matching connection")

const dataOffsetWords = 5 // no options: 5 * 4 = 20 bytes

// Action tells the caller what, if anything, to transmit in response
// to an inbound segment.
type Action uint8

const (
	ActionNone Action = iota
	ActionSendRST
	ActionSendSynAck
)

// Rx dispatches an inbound segment: first against the concrete
// four-tuple, then against a PCB in LISTEN. iss supplies a fresh
// initial sequence number for newly accepted connections.
func Rx(buf []byte, srcIP, dstIP pnstack.IPv4Addr, table *Table, iss func() uint32, recvBufSize int) (h Header, pcb *PCB, action Action, err error) {
	h, err = NewHeader(buf)
	if err != nil {
		return Header{}, nil, ActionNone, err
	}
	local := Endpoint{IP: dstIP, Port: h.DestinationPort()}
	foreign := Endpoint{IP: srcIP, Port: h.SourcePort()}
	_, flags := h.OffsetAndFlags()

	found := table.Find(local, foreign)
	if found == nil {
		if flags.Has(FlagRST) {
			return h, nil, ActionNone, ErrIgnore
		}
		return h, nil, ActionSendRST, nil
	}

	switch found.State {
	case StateListen:
		if flags.Has(FlagRST) {
			return h, found, ActionNone, nil
		}
		if flags.Has(FlagSYN) {
			accepted := &PCB{}
			accepted.acceptSyn(local, foreign, h.Seq(), iss(), recvBufSize)
			table.Add(accepted)
			return h, accepted, ActionSendSynAck, nil
		}
		if flags.Has(FlagACK) {
			// RFC 9293 3.10.7.1: an ACK with no SYN outside an
			// established connection is answered with a RST.
			return h, found, ActionSendRST, nil
		}
		return h, found, ActionNone, nil
	case StateSynReceived:
		// A retransmitted SYN for an already-accepted connection is a
		// no-op: the four-tuple match above already found it, so no
		// second PCB is created.
		return h, found, ActionNone, nil
	default:
		return h, found, ActionNone, nil
	}
}

// BuildSynAck writes a SYN+ACK segment answering the SYN that moved
// pcb into SYN_RECEIVED.
func BuildSynAck(buf []byte, pcb *PCB) (Header, error) {
	return buildSegment(buf, pcb.Local.Port, pcb.Foreign.Port, pcb.ISS(), pcb.RecvNext(), FlagSYN|FlagACK, pcb.RecvWindow(), nil, pcb.Local.IP, pcb.Foreign.IP)
}

// BuildRST writes a RST answering an incoming segment with no
// matching connection, choosing the ACK/SEQ fields per RFC 9293
// 3.10.7.1: if the incoming segment was unacknowledged, the RST
// carries SEQ=0 and ACK=seg.seq+segLen; otherwise it carries
// SEQ=seg.ack and no ACK flag. segLen is the incoming segment's length
// in sequence space: payload octets plus one each for SYN and FIN.
func BuildRST(buf []byte, incoming Header, segLen int, localIP, foreignIP pnstack.IPv4Addr) (Header, error) {
	_, flags := incoming.OffsetAndFlags()
	if flags.Has(FlagACK) {
		return buildSegment(buf, incoming.DestinationPort(), incoming.SourcePort(), incoming.Ack(), 0, FlagRST, 0, nil, localIP, foreignIP)
	}
	ackNum := incoming.Seq() + uint32(segLen)
	return buildSegment(buf, incoming.DestinationPort(), incoming.SourcePort(), 0, ackNum, FlagRST|FlagACK, 0, nil, localIP, foreignIP)
}

func buildSegment(buf []byte, srcPort, dstPort uint16, seq, ack uint32, flags Flags, window uint16, payload []byte, srcIP, dstIP pnstack.IPv4Addr) (Header, error) {
	total := headerSize + len(payload)
	h, err := NewHeader(buf[:total])
	if err != nil {
		return Header{}, err
	}
	h.SetSourcePort(srcPort)
	h.SetDestinationPort(dstPort)
	h.SetSeq(seq)
	h.SetAck(ack)
	h.SetOffsetAndFlags(dataOffsetWords, flags)
	h.SetWindowSize(window)
	h.SetUrgentPtr(0)
	copy(h.Payload(), payload)
	h.SetChecksum(0)
	pseudo := ipv4.PseudoChecksum(srcIP, dstIP, pnstack.IPProtoTCP, uint16(total))
	h.SetChecksum(pnstack.NeverZero(h.ComputeChecksum(&pseudo)))
	return h, nil
}
