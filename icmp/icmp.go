package icmp

import "errors"

// ErrIgnore signals a message type this stack parses but does not act
// on (anything but Echo Request): a quiet, expected drop from the
// responder's point of view, though the message is still valid.
var ErrIgnore = errors.New("icmp: message type not handled")

var ErrBadChecksum = errors.New("icmp: checksum mismatch")

// Rx parses an ICMP message and validates its checksum. It reports
// ErrIgnore for any type other than Echo Request, since only the echo
// responder is implemented; callers that want to inspect other types
// can still use the returned Header before checking the error.
func Rx(buf []byte) (h Header, err error) {
	h, err = NewHeader(buf)
	if err != nil {
		return Header{}, err
	}
	if h.ComputeChecksum() != 0 {
		return h, ErrBadChecksum
	}
	if h.Type() != TypeEchoRequest {
		return h, ErrIgnore
	}
	if len(buf) < headerSize+echoBodySize {
		return h, errShort
	}
	return h, nil
}

// BuildEchoReply writes an Echo Reply into replyBuf copying code,
// identifier, sequence number, and data verbatim from req, and
// recomputes the checksum.
func BuildEchoReply(replyBuf []byte, req Header) (Header, error) {
	h, err := NewHeader(replyBuf)
	if err != nil {
		return Header{}, err
	}
	h.SetType(TypeEchoReply)
	h.SetCode(req.Code())
	h.SetIdentifier(req.Identifier())
	h.SetSequence(req.Sequence())
	copy(h.Data(), req.Data())
	h.SetChecksum(0)
	h.SetChecksum(h.ComputeChecksum())
	return h, nil
}
