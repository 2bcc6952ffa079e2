package icmp

import "testing"

func buildEchoRequest(t *testing.T, id, seq uint16, data []byte) []byte {
	t.Helper()
	buf := make([]byte, headerSize+echoBodySize+len(data))
	h, err := NewHeader(buf)
	if err != nil {
		t.Fatal(err)
	}
	h.SetType(TypeEchoRequest)
	h.SetCode(0)
	h.SetIdentifier(id)
	h.SetSequence(seq)
	copy(h.Data(), data)
	h.SetChecksum(0)
	h.SetChecksum(h.ComputeChecksum())
	return buf
}

func TestEchoPong(t *testing.T) {
	data := make([]byte, 32)
	req := buildEchoRequest(t, 1, 5, data)

	h, err := Rx(req)
	if err != nil {
		t.Fatal(err)
	}

	replyBuf := make([]byte, len(req))
	reply, err := BuildEchoReply(replyBuf, h)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Type() != TypeEchoReply || reply.Code() != 0 {
		t.Fatal("unexpected reply type/code")
	}
	if reply.Identifier() != 1 || reply.Sequence() != 5 {
		t.Fatal("identifier/sequence not preserved")
	}
	if reply.ComputeChecksum() != 0 {
		t.Fatal("reply checksum does not validate")
	}
}

func TestRxRejectsBadChecksum(t *testing.T) {
	req := buildEchoRequest(t, 1, 1, nil)
	req[2] ^= 0xff
	_, err := Rx(req)
	if err != ErrBadChecksum {
		t.Fatalf("want ErrBadChecksum, got %v", err)
	}
}

func TestRxIgnoresNonEchoRequest(t *testing.T) {
	buf := make([]byte, headerSize)
	h, _ := NewHeader(buf)
	h.SetType(TypeEchoReply)
	h.SetChecksum(0)
	h.SetChecksum(h.ComputeChecksum())
	_, err := Rx(buf)
	if err != ErrIgnore {
		t.Fatalf("want ErrIgnore, got %v", err)
	}
}
