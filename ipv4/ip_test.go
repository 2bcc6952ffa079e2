package ipv4

import (
	"errors"
	"testing"

	"github.com/soypat/pnstack"
)

var (
	ourIP   = pnstack.IPv4Addr{192, 168, 1, 3}
	netmask = pnstack.IPv4Addr{255, 255, 255, 0}
)

func buildValid(t *testing.T, dst pnstack.IPv4Addr, ttl uint8) []byte {
	t.Helper()
	buf := make([]byte, headerSize)
	h, err := NewHeader(buf)
	if err != nil {
		t.Fatal(err)
	}
	h.SetVersionAndIHL(4, 5)
	h.SetTotalLength(headerSize)
	h.SetID(0x1234)
	h.SetTTL(ttl)
	h.SetProtocol(pnstack.IPProtoICMP)
	*h.SourceAddr() = pnstack.IPv4Addr{10, 0, 0, 5}
	*h.DestinationAddr() = dst
	h.SetChecksum(0)
	h.SetChecksum(h.ComputeChecksum())
	return buf
}

func TestRxAcceptsDirectAddress(t *testing.T) {
	_, src, proto, _, err := Rx(buildValid(t, ourIP, 64), ourIP, netmask)
	if err != nil {
		t.Fatal(err)
	}
	if src != (pnstack.IPv4Addr{10, 0, 0, 5}) || proto != pnstack.IPProtoICMP {
		t.Fatal("unexpected src/proto")
	}
}

func TestRxAcceptsSubnetBroadcast(t *testing.T) {
	_, _, _, _, err := Rx(buildValid(t, pnstack.IPv4Addr{192, 168, 1, 255}, 64), ourIP, netmask)
	if err != nil {
		t.Fatal(err)
	}
}

func TestRxAcceptsLimitedBroadcast(t *testing.T) {
	_, _, _, _, err := Rx(buildValid(t, pnstack.BroadcastIPv4, 64), ourIP, netmask)
	if err != nil {
		t.Fatal(err)
	}
}

func TestRxIgnoresAnotherHost(t *testing.T) {
	_, _, _, _, err := Rx(buildValid(t, pnstack.IPv4Addr{192, 168, 1, 77}, 64), ourIP, netmask)
	if !errors.Is(err, ErrIgnore) {
		t.Fatalf("want ErrIgnore, got %v", err)
	}
}

func TestRxRejectsTTLZero(t *testing.T) {
	_, _, _, _, err := Rx(buildValid(t, ourIP, 0), ourIP, netmask)
	if !errors.Is(err, ErrDead) {
		t.Fatalf("want ErrDead, got %v", err)
	}
}

func TestRxRejectsBadChecksum(t *testing.T) {
	buf := buildValid(t, ourIP, 64)
	buf[1] ^= 0xff // flip a bit in the ToS field, corrupting the checksum
	_, _, _, _, err := Rx(buf, ourIP, netmask)
	if !errors.Is(err, ErrBadChecksum) {
		t.Fatalf("want ErrBadChecksum, got %v", err)
	}
}

type captureWriter struct{ buf []byte }

func (w *captureWriter) Write(p []byte) (int, error) {
	w.buf = append([]byte(nil), p...)
	return len(p), nil
}

func TestTxProducesValidChecksum(t *testing.T) {
	var w captureWriter
	var ipBuf [64]byte
	var ethScratch [96]byte
	resolved := pnstack.MacAddress{1, 2, 3, 4, 5, 6}
	err := Tx(&w, ipBuf[:], ethScratch[:], pnstack.MacAddress{9, 9, 9, 9, 9, 9}, ourIP, pnstack.IPv4Addr{10, 0, 0, 5}, pnstack.IPProtoICMP, 7, []byte("hi"), func(pnstack.IPv4Addr) (pnstack.MacAddress, error) {
		return resolved, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	h, err := NewHeader(w.buf[14:])
	if err != nil {
		t.Fatal(err)
	}
	if h.ComputeChecksum() != 0 {
		t.Fatal("transmitted header has invalid checksum")
	}
	if *h.SourceAddr() != ourIP {
		t.Fatal("source address mismatch")
	}
}
