// Package ipv4 implements the 20-byte IPv4 header codec, validation,
// and the destination-classifying rx/tx pair.
package ipv4

import (
	"encoding/binary"
	"errors"

	"github.com/soypat/pnstack"
)

const headerSize = 20

var errShort = errors.New("ipv4: buffer shorter than header")

// Header is a byte-exact view over an IPv4 header. Options, when
// present, are parsed past the fixed fields but not acted upon.
type Header struct {
	buf []byte
}

// NewHeader wraps buf as an IPv4 header. buf must be at least 20 bytes.
func NewHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, errShort
	}
	return Header{buf: buf}, nil
}

// RawData returns the underlying slice the header was built over.
func (h Header) RawData() []byte { return h.buf }

// VersionAndIHL returns the version (should be 4) and the header
// length in 32-bit words (IHL).
func (h Header) VersionAndIHL() (version, ihl uint8) {
	v := h.buf[0]
	return v >> 4, v & 0xf
}

// SetVersionAndIHL sets the version/IHL byte.
func (h Header) SetVersionAndIHL(version, ihl uint8) { h.buf[0] = version<<4 | ihl&0xf }

// HeaderLength returns the header length in bytes, including options.
func (h Header) HeaderLength() int {
	_, ihl := h.VersionAndIHL()
	return int(ihl) * 4
}

// TotalLength returns the entire datagram size, header plus payload.
func (h Header) TotalLength() uint16 { return binary.BigEndian.Uint16(h.buf[2:4]) }

// SetTotalLength sets the total length field.
func (h Header) SetTotalLength(tl uint16) { binary.BigEndian.PutUint16(h.buf[2:4], tl) }

// ID returns the fragment identification field.
func (h Header) ID() uint16 { return binary.BigEndian.Uint16(h.buf[4:6]) }

// SetID sets the fragment identification field.
func (h Header) SetID(id uint16) { binary.BigEndian.PutUint16(h.buf[4:6], id) }

// TTL returns the time-to-live field.
func (h Header) TTL() uint8 { return h.buf[8] }

// SetTTL sets the time-to-live field.
func (h Header) SetTTL(ttl uint8) { h.buf[8] = ttl }

// Protocol returns the encapsulated protocol field.
func (h Header) Protocol() pnstack.IPProto { return pnstack.IPProto(h.buf[9]) }

// SetProtocol sets the encapsulated protocol field.
func (h Header) SetProtocol(p pnstack.IPProto) { h.buf[9] = uint8(p) }

// Checksum returns the header checksum field.
func (h Header) Checksum() uint16 { return binary.BigEndian.Uint16(h.buf[10:12]) }

// SetChecksum sets the header checksum field.
func (h Header) SetChecksum(cs uint16) { binary.BigEndian.PutUint16(h.buf[10:12], cs) }

// SourceAddr returns a pointer into the header's source address field.
func (h Header) SourceAddr() *[4]byte { return (*[4]byte)(h.buf[12:16]) }

// DestinationAddr returns a pointer into the header's destination address field.
func (h Header) DestinationAddr() *[4]byte { return (*[4]byte)(h.buf[16:20]) }

// Payload returns the datagram's payload, starting after the header
// (including any options) and ending at TotalLength.
func (h Header) Payload() []byte {
	off := h.HeaderLength()
	return h.buf[off:h.TotalLength()]
}

// ComputeChecksum folds the RFC 1071 checksum over the header
// (including options) with the checksum field as currently stored.
// Called with the field zeroed, it produces the value to store; called
// on a received header, a correct header folds to zero.
func (h Header) ComputeChecksum() uint16 {
	var c pnstack.Checksum
	c.Write(h.buf[0:h.HeaderLength()])
	return c.Sum16()
}

