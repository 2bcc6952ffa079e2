package ethernet

import (
	"errors"

	"github.com/soypat/pnstack"
)

// ErrIgnore signals a frame that parsed correctly but is not addressed
// to this host: a quiet, expected drop, never logged at default verbosity.
var ErrIgnore = errors.New("ethernet: frame not addressed to us")

var errShortWrite = errors.New("ethernet: short write")
var errScratchTooSmall = errors.New("ethernet: scratch buffer too small for frame")

// Writer is the write half of a LinkDevice: one frame per call, with a
// short write treated as fatal by the caller.
type Writer interface {
	Write(buf []byte) (n int, err error)
}

// Rx parses the 14-byte header out of buf and applies the address
// filter: a frame is accepted iff its destination is devMAC or the
// broadcast address. Frames addressed elsewhere return ErrIgnore.
func Rx(buf []byte, devMAC pnstack.MacAddress) (hdr Header, payload []byte, err error) {
	hdr, err = NewHeader(buf)
	if err != nil {
		return Header{}, nil, err
	}
	dst := pnstack.MacAddress(*hdr.DestinationMAC())
	if dst != devMAC && !dst.IsBroadcast() {
		return hdr, nil, ErrIgnore
	}
	return hdr, hdr.Payload(), nil
}

// Tx serializes a 14-byte header into scratch followed by payload and
// writes exactly one frame to w. A short write is returned as an error;
// the caller treats it as fatal to the current transmission attempt.
func Tx(w Writer, scratch []byte, srcMAC, dstMAC pnstack.MacAddress, et pnstack.EtherType, payload []byte) error {
	total := headerSize + len(payload)
	if len(scratch) < total {
		return errScratchTooSmall
	}
	hdr, err := NewHeader(scratch[:total])
	if err != nil {
		return err
	}
	hdr.SetDestinationMAC(dstMAC)
	hdr.SetSourceMAC(srcMAC)
	hdr.SetEtherType(et)
	copy(scratch[headerSize:total], payload)
	n, err := w.Write(scratch[:total])
	if err != nil {
		return err
	}
	if n != total {
		return errShortWrite
	}
	return nil
}
