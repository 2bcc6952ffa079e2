//go:build linux

package device

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/soypat/pnstack"
)

// RawSocket is an AF_PACKET/SOCK_RAW socket bound to an existing network
// interface, sending and receiving whole Ethernet frames with no
// protocol filtering: every EtherType arrives.
type RawSocket struct {
	fd   int
	name string
	mac  pnstack.MacAddress
}

// OpenRawSocket binds a raw socket to ifaceName. The caller needs
// CAP_NET_RAW (or root) for this to succeed.
func OpenRawSocket(ifaceName string) (*RawSocket, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("device: lookup interface %q: %w", ifaceName, err)
	}
	proto := htons(unix.ETH_P_ALL)
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(proto))
	if err != nil {
		return nil, fmt.Errorf("device: open raw socket: %w", err)
	}
	addr := &unix.SockaddrLinklayer{
		Protocol: proto,
		Ifindex:  iface.Index,
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("device: bind raw socket to %q: %w", ifaceName, err)
	}
	mac, err := queryHardwareAddr(fd, iface.Name)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &RawSocket{fd: fd, name: iface.Name, mac: mac}, nil
}

func (r *RawSocket) Read(buf []byte) (int, error)  { return unix.Read(r.fd, buf) }
func (r *RawSocket) Write(buf []byte) (int, error) { return unix.Write(r.fd, buf) }
func (r *RawSocket) Close() error                  { return unix.Close(r.fd) }

// DeviceMAC returns the MAC address bound at open time.
func (r *RawSocket) DeviceMAC() pnstack.MacAddress { return r.mac }

// queryHardwareAddr asks the kernel for ifaceName's MAC address over
// fd, which must already be a socket (any domain works for SIOCGIFHWADDR).
func queryHardwareAddr(fd int, ifaceName string) (pnstack.MacAddress, error) {
	var mac pnstack.MacAddress
	ifr, err := unix.NewIfreq(ifaceName)
	if err != nil {
		return mac, fmt.Errorf("device: build ifreq for %q: %w", ifaceName, err)
	}
	if err := unix.IoctlIfreq(fd, unix.SIOCGIFHWADDR, ifr); err != nil {
		return mac, fmt.Errorf("device: query hwaddr of %q: %w", ifaceName, err)
	}
	raw := ifr.Bytes()
	family := uint16(raw[0]) | uint16(raw[1])<<8
	if family != unix.ARPHRD_ETHER {
		return mac, fmt.Errorf("device: %q is not an Ethernet interface (sa_family=%d)", ifaceName, family)
	}
	copy(mac[:], raw[2:8])
	return mac, nil
}

// htons converts a uint16 from host to network byte order.
func htons(i uint16) uint16 { return (i<<8)&0xff00 | i>>8 }
