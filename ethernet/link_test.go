package ethernet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/soypat/pnstack"
)

func TestRoundTrip(t *testing.T) {
	var buf [64]byte
	src := pnstack.MacAddress{0x18, 0xec, 0xe7, 0x56, 0x5e, 0x60}
	dst := pnstack.MacAddress{0xa8, 0x5e, 0x45, 0x2f, 0x94, 0x2e}
	hdr, err := NewHeader(buf[:])
	if err != nil {
		t.Fatal(err)
	}
	hdr.SetSourceMAC(src)
	hdr.SetDestinationMAC(dst)
	hdr.SetEtherType(pnstack.EtherTypeARP)

	got, payload, err := Rx(buf[:], dst)
	if err != nil {
		t.Fatal(err)
	}
	if *got.SourceMAC() != src || *got.DestinationMAC() != dst {
		t.Fatal("address mismatch after round trip")
	}
	if got.EtherType() != pnstack.EtherTypeARP {
		t.Fatal("ethertype mismatch")
	}
	if len(payload) != len(buf)-headerSize {
		t.Fatalf("payload length = %d, want %d", len(payload), len(buf)-headerSize)
	}
}

func TestRxFiltersUnaddressedFrames(t *testing.T) {
	var buf [64]byte
	hdr, _ := NewHeader(buf[:])
	hdr.SetDestinationMAC(pnstack.MacAddress{1, 2, 3, 4, 5, 6})

	_, _, err := Rx(buf[:], pnstack.MacAddress{9, 9, 9, 9, 9, 9})
	if !errors.Is(err, ErrIgnore) {
		t.Fatalf("want ErrIgnore, got %v", err)
	}
}

func TestRxAcceptsBroadcast(t *testing.T) {
	var buf [64]byte
	hdr, _ := NewHeader(buf[:])
	hdr.SetDestinationMAC(pnstack.BroadcastMAC)

	_, _, err := Rx(buf[:], pnstack.MacAddress{9, 9, 9, 9, 9, 9})
	if err != nil {
		t.Fatalf("broadcast frame should be accepted: %v", err)
	}
}

type captureWriter struct {
	buf []byte
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.buf = append([]byte(nil), p...)
	return len(p), nil
}

func TestTxBuildsFrame(t *testing.T) {
	var scratch [128]byte
	var w captureWriter
	src := pnstack.MacAddress{1, 1, 1, 1, 1, 1}
	dst := pnstack.MacAddress{2, 2, 2, 2, 2, 2}
	payload := []byte("hello")

	err := Tx(&w, scratch[:], src, dst, pnstack.EtherTypeIPv4, payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(w.buf) != headerSize+len(payload) {
		t.Fatalf("wrote %d bytes, want %d", len(w.buf), headerSize+len(payload))
	}
	if !bytes.Equal(w.buf[headerSize:], payload) {
		t.Fatal("payload not written verbatim")
	}
	hdr, _ := NewHeader(w.buf)
	if *hdr.SourceMAC() != src || *hdr.DestinationMAC() != dst {
		t.Fatal("addresses not set correctly")
	}
}
