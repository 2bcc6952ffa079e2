package ipv4

import (
	"errors"

	"github.com/soypat/pnstack"
	"github.com/soypat/pnstack/ethernet"
)

var (
	// ErrIgnore signals a datagram addressed to another host: routing
	// is out of scope, so it is dropped without being an error.
	ErrIgnore = errors.New("ipv4: addressed to another host")

	ErrNotIPv4           = errors.New("ipv4: version field is not 4")
	ErrUnsupportedOption = errors.New("ipv4: header carries options longer than 20 bytes")
	ErrShortBuffer       = errors.New("ipv4: total length exceeds buffer")
	ErrBadChecksum       = errors.New("ipv4: header checksum mismatch")
	ErrDead              = errors.New("ipv4: packet arrived with ttl=0")
)

// PseudoChecksum returns a checksum seeded with the TCP/UDP
// pseudo-header fields: source, destination, protocol, and length.
// The caller folds their segment's bytes into the result.
func PseudoChecksum(srcIP, dstIP pnstack.IPv4Addr, proto pnstack.IPProto, length uint16) pnstack.Checksum {
	var c pnstack.Checksum
	c.Write(srcIP[:])
	c.Write(dstIP[:])
	c.AddUint16(uint16(proto))
	c.AddUint16(length)
	return c
}

// Classify reports whether dst selects this host, directly or via the
// configured broadcast address, or whether it is bound for some other
// host (in which case the datagram is dropped, since routing is not
// implemented).
func Classify(dst, ourIP, netmask pnstack.IPv4Addr) (isUs bool) {
	if dst == ourIP || dst == pnstack.BroadcastIPv4 {
		return true
	}
	bcast := pnstack.IPv4Addr{
		ourIP[0] | ^netmask[0],
		ourIP[1] | ^netmask[1],
		ourIP[2] | ^netmask[2],
		ourIP[3] | ^netmask[3],
	}
	return dst == bcast
}

// Rx parses and validates a 20-byte IPv4 header and returns the
// sender's address, the encapsulated protocol, and the payload. Headers
// carrying options are rejected with ErrUnsupportedOption.
// Datagrams addressed to another host return ErrIgnore with no other
// error; routing is not implemented.
func Rx(buf []byte, ourIP, netmask pnstack.IPv4Addr) (h Header, srcIP pnstack.IPv4Addr, proto pnstack.IPProto, payload []byte, err error) {
	h, err = NewHeader(buf)
	if err != nil {
		return Header{}, pnstack.IPv4Addr{}, 0, nil, err
	}
	version, ihl := h.VersionAndIHL()
	if version != 4 {
		return h, pnstack.IPv4Addr{}, 0, nil, ErrNotIPv4
	}
	if int(ihl)*4 > headerSize {
		// Options are parsed as part of HeaderLength but never acted upon.
		return h, pnstack.IPv4Addr{}, 0, nil, ErrUnsupportedOption
	}
	tl := h.TotalLength()
	if tl < headerSize || int(tl) > len(buf) {
		return h, pnstack.IPv4Addr{}, 0, nil, ErrShortBuffer
	}
	if h.ComputeChecksum() != 0 {
		return h, pnstack.IPv4Addr{}, 0, nil, ErrBadChecksum
	}
	if h.TTL() == 0 {
		return h, pnstack.IPv4Addr{}, 0, nil, ErrDead
	}
	dst := pnstack.IPv4Addr(*h.DestinationAddr())
	if !Classify(dst, ourIP, netmask) {
		return h, pnstack.IPv4Addr{}, 0, nil, ErrIgnore
	}
	srcIP = pnstack.IPv4Addr(*h.SourceAddr())
	return h, srcIP, h.Protocol(), h.Payload(), nil
}

// Resolver resolves an IPv4 address to the MAC it should be sent to,
// blocking as necessary (see arp.Resolve).
type Resolver func(dst pnstack.IPv4Addr) (pnstack.MacAddress, error)

// Tx builds a 20-byte IPv4 header (version=4, ihl=5, ttl=0xff) around
// payload addressed to dstIP into ipBuf, resolves the destination MAC
// via resolve, and hands the combined header+payload to ethernet.Tx
// using ethScratch as the frame staging buffer.
func Tx(w ethernet.Writer, ipBuf, ethScratch []byte, ourMAC pnstack.MacAddress, ourIP, dstIP pnstack.IPv4Addr, proto pnstack.IPProto, id uint16, payload []byte, resolve Resolver) error {
	total := headerSize + len(payload)
	if len(ipBuf) < total {
		return ErrShortBuffer
	}
	h, err := NewHeader(ipBuf[:total])
	if err != nil {
		return err
	}
	h.SetVersionAndIHL(4, 5)
	ipBuf[1] = 0 // ToS
	h.SetTotalLength(uint16(total))
	h.SetID(id)
	ipBuf[6], ipBuf[7] = 0, 0 // flags/fragment offset
	h.SetTTL(0xff)
	h.SetProtocol(proto)
	h.SetChecksum(0)
	*h.SourceAddr() = ourIP
	*h.DestinationAddr() = dstIP
	copy(ipBuf[headerSize:total], payload)
	h.SetChecksum(h.ComputeChecksum())

	dstMAC, err := resolve(dstIP)
	if err != nil {
		return err
	}
	return ethernet.Tx(w, ethScratch, ourMAC, dstMAC, pnstack.EtherTypeIPv4, ipBuf[:total])
}
