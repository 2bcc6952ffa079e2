// Package ethernet implements the link layer: the 14-byte Ethernet II
// header codec plus the address-filtered rx/tx pair that every other
// layer hands its frames to.
package ethernet

import (
	"encoding/binary"
	"errors"

	"github.com/soypat/pnstack"
)

const headerSize = 14

var errShort = errors.New("ethernet: buffer shorter than header")

// Header is a byte-exact view over an Ethernet II header: 6 bytes
// destination MAC, 6 bytes source MAC, 2 bytes EtherType.
type Header struct {
	buf []byte
}

// NewHeader wraps buf as an Ethernet header. buf must be at least 14 bytes.
func NewHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, errShort
	}
	return Header{buf: buf}, nil
}

// RawData returns the underlying slice the header was built over.
func (h Header) RawData() []byte { return h.buf }

// DestinationMAC returns a pointer into the frame's destination address.
func (h Header) DestinationMAC() *[6]byte { return (*[6]byte)(h.buf[0:6]) }

// SourceMAC returns a pointer into the frame's source address.
func (h Header) SourceMAC() *[6]byte { return (*[6]byte)(h.buf[6:12]) }

// SetDestinationMAC writes the destination address field.
func (h Header) SetDestinationMAC(mac pnstack.MacAddress) { copy(h.buf[0:6], mac[:]) }

// SetSourceMAC writes the source address field.
func (h Header) SetSourceMAC(mac pnstack.MacAddress) { copy(h.buf[6:12], mac[:]) }

// EtherType returns the frame's EtherType field.
func (h Header) EtherType() pnstack.EtherType {
	return pnstack.EtherType(binary.BigEndian.Uint16(h.buf[12:14]))
}

// SetEtherType sets the frame's EtherType field.
func (h Header) SetEtherType(et pnstack.EtherType) {
	binary.BigEndian.PutUint16(h.buf[12:14], uint16(et))
}

// Payload returns the bytes following the fixed 14-byte header.
func (h Header) Payload() []byte { return h.buf[headerSize:] }

