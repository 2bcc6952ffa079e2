package stack

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/soypat/pnstack"
	"github.com/soypat/pnstack/arp"
	"github.com/soypat/pnstack/device"
	"github.com/soypat/pnstack/ethernet"
	"github.com/soypat/pnstack/icmp"
	"github.com/soypat/pnstack/internal"
	"github.com/soypat/pnstack/ipv4"
	"github.com/soypat/pnstack/tcp"
)

const scratchSize = 2048

// purgeARPEvery is how many received frames pass between sweeps of the
// ARP cache for entries older than arpCacheTTL. A fixed packet count
// rather than a wall-clock ticker keeps Run single-threaded: no extra
// goroutine needs to coordinate with the receive loop over the lock.
const purgeARPEvery = 256

// logger mirrors the teacher's thin slog wrapper: one method per
// level, so call sites read as "what happened" rather than threading
// a level constant through every call.
type logger struct{ log *slog.Logger }

func (l logger) error(msg string, attrs ...slog.Attr) {
	l.log.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}
func (l logger) info(msg string, attrs ...slog.Attr) {
	l.log.LogAttrs(context.Background(), slog.LevelInfo, msg, attrs...)
}

// Run drives the receive loop: LinkDevice.Read → ethernet.Rx →
// {arp.Rx | ipv4.Rx → {icmp.Rx | tcp.Rx}}, dispatching any reply the
// layer produces back out through LinkDevice.Write. It returns nil on
// clean EOF (Read returning 0, nil), a *DeviceError on a read/write
// failure, and otherwise keeps iterating: per spec, no non-device
// error short-circuits the loop. ctx cancellation stops the loop
// between iterations.
func Run(ctx context.Context, dev device.LinkDevice, st *State) error {
	cfg := st.Config()
	lg := logger{log: slog.Default()}
	if cfg.Debug {
		lg.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	ourMAC := cfg.DeviceAddr
	rxBuf := make([]byte, scratchSize)
	txBuf := make([]byte, scratchSize)
	idSeed := uint16(time.Now().UnixNano())
	issSeed := uint32(time.Now().UnixNano())
	nextID := func() uint16 { idSeed = internal.Prand16(idSeed); return idSeed }
	nextISS := func() uint32 { issSeed = internal.Prand32(issSeed); return issSeed }
	framesSinceARPPurge := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := dev.Read(rxBuf)
		if err != nil {
			return &DeviceError{Err: err}
		}
		if n == 0 {
			return nil // clean EOF
		}
		if cfg.Debug {
			lg.info("rx frame", slog.Int("bytes", n))
		}

		framesSinceARPPurge++
		if framesSinceARPPurge >= purgeARPEvery {
			framesSinceARPPurge = 0
			st.PruneARP(time.Now())
		}

		err = rx(rxBuf[:n], txBuf, dev, ourMAC, &cfg, st, nextID, nextISS)
		if err == nil || errors.Is(err, ErrIgnore) {
			continue
		}
		if cfg.Debug {
			lg.error("rx", slog.String("err", err.Error()))
		}
		var devErr *DeviceError
		if errors.As(err, &devErr) {
			return devErr
		}
	}
}

func rx(buf, scratch []byte, dev device.LinkDevice, ourMAC pnstack.MacAddress, cfg *Config, st *State, nextID func() uint16, nextISS func() uint32) error {
	eh, payload, err := ethernet.Rx(buf, ourMAC)
	if err != nil {
		if errors.Is(err, ethernet.ErrIgnore) {
			return ErrIgnore
		}
		return &LinkError{Err: err}
	}

	switch eh.EtherType() {
	case pnstack.EtherTypeARP:
		if !cfg.AcceptsInternet("ARP") {
			return ErrIgnore
		}
		return rxARP(payload, scratch, dev, ourMAC, cfg.IPAddr, st)
	case pnstack.EtherTypeIPv4:
		if !cfg.AcceptsInternet("IP") {
			return ErrIgnore
		}
		return rxIPv4(payload, scratch, dev, ourMAC, cfg, st, nextID, nextISS)
	default:
		return ErrIgnore
	}
}

func rxARP(payload, scratch []byte, dev device.LinkDevice, ourMAC pnstack.MacAddress, ourIP pnstack.IPv4Addr, st *State) error {
	var requesterMAC pnstack.MacAddress
	var requesterIP pnstack.IPv4Addr
	var wantsReply bool
	var rxErr error
	st.WithARPCache(func(c *arp.Cache) {
		requesterMAC, requesterIP, wantsReply, rxErr = arp.Rx(payload, ourIP, c, time.Now())
	})
	if rxErr != nil {
		if errors.Is(rxErr, arp.ErrIgnore) {
			return ErrIgnore
		}
		return &LinkError{Err: rxErr}
	}
	if !wantsReply {
		return nil
	}
	err := arp.TxReply(dev, scratch, ourMAC, ourIP, requesterMAC, requesterIP)
	if err != nil {
		return &DeviceError{Err: err}
	}
	return nil
}

func rxIPv4(payload, scratch []byte, dev device.LinkDevice, ourMAC pnstack.MacAddress, cfg *Config, st *State, nextID func() uint16, nextISS func() uint32) error {
	h, srcIP, proto, body, err := ipv4.Rx(payload, cfg.IPAddr, cfg.NetworkMask)
	if err != nil {
		if errors.Is(err, ipv4.ErrIgnore) {
			return ErrIgnore
		}
		return &InternetError{Err: err}
	}
	dstIP := *h.DestinationAddr()

	resolve := func(dst pnstack.IPv4Addr) (pnstack.MacAddress, error) {
		return st.ResolveARP(context.Background(), dev, scratch, ourMAC, cfg.IPAddr, dst)
	}

	switch proto {
	case pnstack.IPProtoICMP:
		if !cfg.AcceptsTransport("ICMP") {
			return ErrIgnore
		}
		return rxICMP(body, scratch, dev, ourMAC, cfg.IPAddr, srcIP, nextID(), resolve)
	case pnstack.IPProtoTCP:
		if !cfg.AcceptsTransport("TCP") {
			return ErrIgnore
		}
		return rxTCP(body, scratch, dev, ourMAC, srcIP, dstIP, nextID(), st, nextISS, resolve)
	default:
		return ErrIgnore
	}
}

func rxICMP(body, scratch []byte, dev device.LinkDevice, ourMAC pnstack.MacAddress, ourIP, peerIP pnstack.IPv4Addr, id uint16, resolve ipv4.Resolver) error {
	req, err := icmp.Rx(body)
	if err != nil {
		if errors.Is(err, icmp.ErrIgnore) {
			return ErrIgnore
		}
		return &TransportError{Err: err}
	}
	replyBody := make([]byte, len(body))
	reply, err := icmp.BuildEchoReply(replyBody, req)
	if err != nil {
		return &TransportError{Err: err}
	}
	var ipBuf [scratchSize]byte
	err = ipv4.Tx(dev, ipBuf[:], scratch, ourMAC, ourIP, peerIP, pnstack.IPProtoICMP, id, reply.RawData(), resolve)
	if err != nil {
		if errors.Is(err, arp.ErrCannotResolve) {
			return &InternetError{Err: err}
		}
		return &DeviceError{Err: err}
	}
	return nil
}

func rxTCP(body, scratch []byte, dev device.LinkDevice, ourMAC pnstack.MacAddress, srcIP, dstIP pnstack.IPv4Addr, id uint16, st *State, nextISS func() uint32, resolve ipv4.Resolver) error {
	var h tcp.Header
	var pcb *tcp.PCB
	var action tcp.Action
	var rxErr error
	st.WithTCPTable(func(table *tcp.Table) {
		h, pcb, action, rxErr = tcp.Rx(body, srcIP, dstIP, table, nextISS, recvBufferSize)
	})
	if rxErr != nil {
		if errors.Is(rxErr, tcp.ErrIgnore) {
			return ErrIgnore
		}
		return &TransportError{Err: rxErr}
	}

	var segBuf [64]byte
	var seg tcp.Header
	var buildErr error
	switch action {
	case tcp.ActionSendSynAck:
		seg, buildErr = tcp.BuildSynAck(segBuf[:], pcb)
	case tcp.ActionSendRST:
		_, flags := h.OffsetAndFlags()
		segLen := len(h.Payload())
		if flags.Has(tcp.FlagSYN) {
			segLen++
		}
		if flags.Has(tcp.FlagFIN) {
			segLen++
		}
		seg, buildErr = tcp.BuildRST(segBuf[:], h, segLen, dstIP, srcIP)
	default:
		return nil
	}
	if buildErr != nil {
		return &TransportError{Err: buildErr}
	}

	var ipBuf [scratchSize]byte
	err := ipv4.Tx(dev, ipBuf[:], scratch, ourMAC, dstIP, srcIP, pnstack.IPProtoTCP, id, seg.RawData(), resolve)
	if err != nil {
		if errors.Is(err, arp.ErrCannotResolve) {
			return &InternetError{Err: err}
		}
		return &DeviceError{Err: err}
	}
	return nil
}
