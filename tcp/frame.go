// Package tcp implements TCP segment codec, pseudo-header checksum,
// and the ingress-only passive-open state machine (LISTEN →
// SYN-RECEIVED). Connection data transfer, retransmission, and
// congestion control are out of scope.
package tcp

import (
	"encoding/binary"
	"errors"

	"github.com/soypat/pnstack"
)

const headerSize = 20

var errShort = errors.New("tcp: buffer shorter than header")

// Flags holds the six control bits this stack cares about.
type Flags uint8

const (
	FlagFIN Flags = 1 << iota
	FlagSYN
	FlagRST
	FlagPSH
	FlagACK
	FlagURG

	flagMask = FlagFIN | FlagSYN | FlagRST | FlagPSH | FlagACK | FlagURG
)

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

func (f Flags) String() string {
	var buf [6]byte
	n := 0
	add := func(set bool, c byte) {
		if set {
			buf[n] = c
			n++
		}
	}
	add(f.Has(FlagSYN), 'S')
	add(f.Has(FlagACK), 'A')
	add(f.Has(FlagFIN), 'F')
	add(f.Has(FlagRST), 'R')
	add(f.Has(FlagPSH), 'P')
	add(f.Has(FlagURG), 'U')
	if n == 0 {
		return "-"
	}
	return string(buf[:n])
}

// Header is a byte-exact view over a 20-byte TCP segment header; TCP
// options are out of scope, so HeaderLength is always 20.
type Header struct {
	buf []byte
}

// NewHeader wraps buf as a TCP header. buf must be at least 20 bytes.
func NewHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, errShort
	}
	return Header{buf: buf}, nil
}

// RawData returns the underlying slice the header was built over.
func (h Header) RawData() []byte { return h.buf }

func (h Header) SourcePort() uint16 { return binary.BigEndian.Uint16(h.buf[0:2]) }
func (h Header) SetSourcePort(p uint16) { binary.BigEndian.PutUint16(h.buf[0:2], p) }

func (h Header) DestinationPort() uint16 { return binary.BigEndian.Uint16(h.buf[2:4]) }
func (h Header) SetDestinationPort(p uint16) { binary.BigEndian.PutUint16(h.buf[2:4], p) }

func (h Header) Seq() uint32 { return binary.BigEndian.Uint32(h.buf[4:8]) }
func (h Header) SetSeq(v uint32) { binary.BigEndian.PutUint32(h.buf[4:8], v) }

func (h Header) Ack() uint32 { return binary.BigEndian.Uint32(h.buf[8:12]) }
func (h Header) SetAck(v uint32) { binary.BigEndian.PutUint32(h.buf[8:12], v) }

// OffsetAndFlags returns the data offset (in 32-bit words) and the
// six control flags.
func (h Header) OffsetAndFlags() (offset uint8, flags Flags) {
	return h.buf[12] >> 4, Flags(h.buf[13]) & flagMask
}

// SetOffsetAndFlags sets the data offset (in 32-bit words) and flags.
func (h Header) SetOffsetAndFlags(offset uint8, flags Flags) {
	h.buf[12] = offset << 4
	h.buf[13] = uint8(flags & flagMask)
}

func (h Header) WindowSize() uint16 { return binary.BigEndian.Uint16(h.buf[14:16]) }
func (h Header) SetWindowSize(v uint16) { binary.BigEndian.PutUint16(h.buf[14:16], v) }

func (h Header) Checksum() uint16 { return binary.BigEndian.Uint16(h.buf[16:18]) }
func (h Header) SetChecksum(cs uint16) { binary.BigEndian.PutUint16(h.buf[16:18], cs) }

func (h Header) UrgentPtr() uint16 { return binary.BigEndian.Uint16(h.buf[18:20]) }
func (h Header) SetUrgentPtr(v uint16) { binary.BigEndian.PutUint16(h.buf[18:20], v) }

// HeaderLength always returns 20: TCP options are not implemented.
func (h Header) HeaderLength() int { return headerSize }

// Payload returns the segment data following the fixed header.
func (h Header) Payload() []byte { return h.buf[headerSize:] }

// ComputeChecksum folds the RFC 1071 checksum over a TCP pseudo-header
// (src/dst/protocol/length, seeded by the caller via ipv4.PseudoChecksum)
// plus this segment's header and payload.
func (h Header) ComputeChecksum(pseudo *pnstack.Checksum) uint16 {
	c := *pseudo
	c.Write(h.buf)
	return c.Sum16()
}
