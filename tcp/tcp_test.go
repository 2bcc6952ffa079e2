package tcp

import (
	"testing"

	"github.com/soypat/pnstack"
	"github.com/soypat/pnstack/ipv4"
)

var (
	ourIP    = pnstack.IPv4Addr{192, 168, 1, 3}
	clientIP = pnstack.IPv4Addr{10, 0, 0, 5}
)

func buildSyn(t *testing.T, seq uint32, srcPort, dstPort uint16) []byte {
	t.Helper()
	buf := make([]byte, headerSize)
	h, err := NewHeader(buf)
	if err != nil {
		t.Fatal(err)
	}
	h.SetSourcePort(srcPort)
	h.SetDestinationPort(dstPort)
	h.SetSeq(seq)
	h.SetOffsetAndFlags(dataOffsetWords, FlagSYN)
	h.SetWindowSize(1024)
	return buf
}

func fixedISS() uint32 { return 0xaaaa0000 }

func TestPassiveOpenTransitionsToSynReceived(t *testing.T) {
	table := NewTable()
	table.Listen(Endpoint{IP: ourIP, Port: 80}, 65536)

	seg := buildSyn(t, 100, 40000, 80)
	_, pcb, action, err := Rx(seg, clientIP, ourIP, table, fixedISS, 65536)
	if err != nil {
		t.Fatal(err)
	}
	if action != ActionSendSynAck {
		t.Fatalf("got action %d, want ActionSendSynAck", action)
	}
	if pcb.State != StateSynReceived {
		t.Fatalf("got state %s, want SYN-RECEIVED", pcb.State)
	}
	if pcb.IRS() != 100 {
		t.Fatalf("irs = %d, want 100", pcb.IRS())
	}
	if pcb.snd.UNA != fixedISS() || pcb.snd.NXT != fixedISS()+1 {
		t.Fatalf("snd.una/nxt incorrect: %d/%d", pcb.snd.UNA, pcb.snd.NXT)
	}

	var out [headerSize]byte
	synAck, err := BuildSynAck(out[:], pcb)
	if err != nil {
		t.Fatal(err)
	}
	_, flags := synAck.OffsetAndFlags()
	if !flags.Has(FlagSYN) || !flags.Has(FlagACK) {
		t.Fatal("expected SYN|ACK segment")
	}
	if synAck.Seq() != fixedISS() || synAck.Ack() != 101 {
		t.Fatalf("seq/ack = %d/%d, want %d/101", synAck.Seq(), synAck.Ack(), fixedISS())
	}
}

func TestDuplicateSynDoesNotCreateSecondPCB(t *testing.T) {
	table := NewTable()
	table.Listen(Endpoint{IP: ourIP, Port: 80}, 65536)

	seg := buildSyn(t, 100, 40000, 80)
	_, _, _, err := Rx(seg, clientIP, ourIP, table, fixedISS, 65536)
	if err != nil {
		t.Fatal(err)
	}
	_, pcb, action, err := Rx(seg, clientIP, ourIP, table, fixedISS, 65536)
	if err != nil {
		t.Fatal(err)
	}
	if action != ActionNone {
		t.Fatalf("got action %d, want ActionNone for duplicate SYN", action)
	}
	if pcb.State != StateSynReceived {
		t.Fatal("duplicate SYN should not regress state")
	}
	count := 0
	table.Established(func(*PCB) { count++ })
	if count != 1 {
		t.Fatalf("table has %d established PCBs, want 1", count)
	}
}

func TestTableCloseFreesSlot(t *testing.T) {
	table := NewTable()
	table.Listen(Endpoint{IP: ourIP, Port: 80}, 65536)

	seg := buildSyn(t, 100, 40000, 80)
	_, pcb, _, err := Rx(seg, clientIP, ourIP, table, fixedISS, 65536)
	if err != nil {
		t.Fatal(err)
	}

	table.Close(pcb)

	count := 0
	table.Established(func(*PCB) { count++ })
	if count != 0 {
		t.Fatalf("table still reports %d established PCBs after Close", count)
	}
	// The concrete four-tuple PCB is gone; only the LISTEN PCB remains,
	// so the same lookup now falls through to it instead.
	if got := table.Find(pcb.Local, pcb.Foreign); got == nil || got.State != StateListen {
		t.Fatal("closing the accepted PCB should not remove the LISTEN PCB backing it")
	}
}

func TestSynToUnlistenedPortSendsRST(t *testing.T) {
	table := NewTable()
	seg := buildSyn(t, 100, 40000, 81)
	_, pcb, action, err := Rx(seg, clientIP, ourIP, table, fixedISS, 65536)
	if err != nil {
		t.Fatal(err)
	}
	if action != ActionSendRST {
		t.Fatalf("got action %d, want ActionSendRST", action)
	}
	if pcb != nil {
		t.Fatal("no PCB should be allocated for an unlistened port")
	}
}

func TestListenAckWithoutSynSendsRST(t *testing.T) {
	table := NewTable()
	table.Listen(Endpoint{IP: ourIP, Port: 80}, 65536)

	buf := make([]byte, headerSize)
	h, _ := NewHeader(buf)
	h.SetSourcePort(40000)
	h.SetDestinationPort(80)
	h.SetAck(1)
	h.SetOffsetAndFlags(dataOffsetWords, FlagACK)

	_, _, action, err := Rx(buf, clientIP, ourIP, table, fixedISS, 65536)
	if err != nil {
		t.Fatal(err)
	}
	if action != ActionSendRST {
		t.Fatalf("got action %d, want ActionSendRST", action)
	}
}

func TestHeaderFieldsRoundTrip(t *testing.T) {
	buf := make([]byte, headerSize)
	h, err := NewHeader(buf)
	if err != nil {
		t.Fatal(err)
	}
	h.SetSourcePort(40000)
	h.SetDestinationPort(80)
	h.SetSeq(100)
	h.SetAck(101)
	h.SetOffsetAndFlags(dataOffsetWords, FlagSYN|FlagACK)
	h.SetWindowSize(4096)
	h.SetUrgentPtr(0)

	got, err := NewHeader(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.SourcePort() != 40000 || got.DestinationPort() != 80 {
		t.Fatal("port mismatch after round trip")
	}
	if got.Seq() != 100 || got.Ack() != 101 {
		t.Fatal("seq/ack mismatch after round trip")
	}
	if got.WindowSize() != 4096 {
		t.Fatalf("window = %d, want 4096", got.WindowSize())
	}
	if got.UrgentPtr() != 0 {
		t.Fatalf("urgent ptr = %d, want 0", got.UrgentPtr())
	}
	offset, flags := got.OffsetAndFlags()
	if offset != dataOffsetWords || !flags.Has(FlagSYN) || !flags.Has(FlagACK) {
		t.Fatal("offset/flags mismatch after round trip")
	}
}

func TestChecksumRoundTrips(t *testing.T) {
	table := NewTable()
	table.Listen(Endpoint{IP: ourIP, Port: 80}, 65536)
	seg := buildSyn(t, 100, 40000, 80)
	_, pcb, _, err := Rx(seg, clientIP, ourIP, table, fixedISS, 65536)
	if err != nil {
		t.Fatal(err)
	}
	var out [headerSize]byte
	synAck, err := BuildSynAck(out[:], pcb)
	if err != nil {
		t.Fatal(err)
	}
	pseudo := ipv4.PseudoChecksum(pcb.Local.IP, pcb.Foreign.IP, pnstack.IPProtoTCP, headerSize)
	if got := synAck.ComputeChecksum(&pseudo); got != 0 {
		t.Fatalf("checksum does not validate: folds to %#x", got)
	}
}
