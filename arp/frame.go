// Package arp implements RFC 826 Address Resolution Protocol handling
// for IPv4-over-Ethernet: the 28-byte header codec, a bounded learning
// cache, and the request/reply/resolve free functions.
package arp

import (
	"encoding/binary"
	"errors"

	"github.com/soypat/pnstack"
)

const headerSize = 28

const hwEthernet uint16 = 1

var errShort = errors.New("arp: buffer too short for IPv4-over-Ethernet header")

// Header is a byte-exact view over an ARP packet restricted to the
// IPv4-over-Ethernet case this stack speaks: htype=1, ptype=0x0800,
// hlen=6, plen=4, giving a fixed 28-byte layout.
type Header struct {
	buf []byte
}

// NewHeader wraps buf as an ARP header. buf must be at least 28 bytes.
func NewHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, errShort
	}
	return Header{buf: buf}, nil
}

// RawData returns the underlying slice the header was built over.
func (h Header) RawData() []byte { return h.buf }

// Hardware returns the hardware type and address length fields.
func (h Header) Hardware() (htype uint16, hlen uint8) {
	return binary.BigEndian.Uint16(h.buf[0:2]), h.buf[4]
}

// Protocol returns the protocol type and address length fields.
func (h Header) Protocol() (ptype pnstack.EtherType, plen uint8) {
	return pnstack.EtherType(binary.BigEndian.Uint16(h.buf[2:4])), h.buf[5]
}

// SetHardwareProtocol fills in htype/hlen/ptype/plen for the
// IPv4-over-Ethernet case.
func (h Header) SetHardwareProtocol() {
	binary.BigEndian.PutUint16(h.buf[0:2], hwEthernet)
	h.buf[4] = 6
	binary.BigEndian.PutUint16(h.buf[2:4], uint16(pnstack.EtherTypeIPv4))
	h.buf[5] = 4
}

// Operation returns the ARP operation field.
func (h Header) Operation() pnstack.ARPOp {
	return pnstack.ARPOp(binary.BigEndian.Uint16(h.buf[6:8]))
}

// SetOperation sets the ARP operation field.
func (h Header) SetOperation(op pnstack.ARPOp) {
	binary.BigEndian.PutUint16(h.buf[6:8], uint16(op))
}

// Sender returns pointers to the sender hardware and protocol addresses.
func (h Header) Sender() (mac *[6]byte, ip *[4]byte) {
	return (*[6]byte)(h.buf[8:14]), (*[4]byte)(h.buf[14:18])
}

// Target returns pointers to the target hardware and protocol addresses.
func (h Header) Target() (mac *[6]byte, ip *[4]byte) {
	return (*[6]byte)(h.buf[18:24]), (*[4]byte)(h.buf[24:28])
}

