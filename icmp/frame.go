// Package icmp implements ICMPv4 echo request/reply handling: the
// 4-byte header plus echo body codec and the rx/tx pong responder.
package icmp

import (
	"encoding/binary"
	"errors"

	"github.com/soypat/pnstack"
)

const (
	headerSize   = 4
	echoBodySize = 4 // identifier(2) + sequence(2); data follows
)

// Type is the ICMP message type field.
type Type uint8

const (
	TypeEchoReply   Type = 0
	TypeDestUnreach Type = 3
	TypeRedirect    Type = 5
	TypeEchoRequest Type = 8
	TypeTimeExceeded Type = 11
)

var errShort = errors.New("icmp: buffer shorter than header")

// Header is a byte-exact view over the 4-byte ICMP header.
type Header struct {
	buf []byte
}

// NewHeader wraps buf as an ICMP header. buf must be at least 4 bytes.
func NewHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, errShort
	}
	return Header{buf: buf}, nil
}

// RawData returns the underlying slice the header was built over.
func (h Header) RawData() []byte { return h.buf }

// Type returns the message type field.
func (h Header) Type() Type { return Type(h.buf[0]) }

// SetType sets the message type field.
func (h Header) SetType(t Type) { h.buf[0] = uint8(t) }

// Code returns the message code field.
func (h Header) Code() uint8 { return h.buf[1] }

// SetCode sets the message code field.
func (h Header) SetCode(c uint8) { h.buf[1] = c }

// Checksum returns the checksum field.
func (h Header) Checksum() uint16 { return binary.BigEndian.Uint16(h.buf[2:4]) }

// SetChecksum sets the checksum field.
func (h Header) SetChecksum(cs uint16) { binary.BigEndian.PutUint16(h.buf[2:4], cs) }

// Identifier returns the echo body's identifier field. Only meaningful
// for Echo request/reply messages.
func (h Header) Identifier() uint16 { return binary.BigEndian.Uint16(h.buf[4:6]) }

// SetIdentifier sets the echo body's identifier field.
func (h Header) SetIdentifier(id uint16) { binary.BigEndian.PutUint16(h.buf[4:6], id) }

// Sequence returns the echo body's sequence number field.
func (h Header) Sequence() uint16 { return binary.BigEndian.Uint16(h.buf[6:8]) }

// SetSequence sets the echo body's sequence number field.
func (h Header) SetSequence(seq uint16) { binary.BigEndian.PutUint16(h.buf[6:8], seq) }

// Data returns the echo body's raw payload, following id/seq.
func (h Header) Data() []byte { return h.buf[headerSize+echoBodySize:] }

// ComputeChecksum folds the RFC 1071 checksum over the whole message.
// Called with the checksum field zeroed, it produces the value to
// store; called with the field as received, a correct message folds
// to zero.
func (h Header) ComputeChecksum() uint16 {
	var c pnstack.Checksum
	c.Write(h.buf)
	return c.Sum16()
}

