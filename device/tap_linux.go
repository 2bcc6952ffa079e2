//go:build linux

package device

import (
	"fmt"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/soypat/pnstack"
)

// Tap opens /dev/net/tun in TAP mode, presenting a virtual Ethernet
// interface that userspace reads and writes whole frames to.
type Tap struct {
	fd   int
	name string
	mac  pnstack.MacAddress
}

// OpenTap creates (or attaches to) a TAP interface named name. When
// cidr is non-empty the interface is brought up and assigned that
// address via the "ip" command, mirroring how a developer would wire
// it up by hand.
func OpenTap(name, cidr string) (*Tap, error) {
	fd, err := unix.Open("/dev/net/tun", unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("device: open /dev/net/tun: %w", err)
	}
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("device: build ifreq for %q: %w", name, err)
	}
	ifr.SetUint16(unix.IFF_TAP | unix.IFF_NO_PI)
	if err := unix.IoctlIfreq(fd, unix.TUNSETIFF, ifr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("device: TUNSETIFF on %q: %w", name, err)
	}
	if cidr != "" {
		if err := exec.Command("ip", "link", "set", "dev", name, "up").Run(); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("device: bring up %q: %w", name, err)
		}
		if err := exec.Command("ip", "addr", "add", cidr, "dev", name).Run(); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("device: assign %s to %q: %w", cidr, name, err)
		}
	}
	mac, err := queryTapHardwareAddr(name)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Tap{fd: fd, name: name, mac: mac}, nil
}

func (t *Tap) Read(buf []byte) (int, error)  { return unix.Read(t.fd, buf) }
func (t *Tap) Write(buf []byte) (int, error) { return unix.Write(t.fd, buf) }
func (t *Tap) Close() error                  { return unix.Close(t.fd) }

// DeviceMAC returns the MAC address bound at open time.
func (t *Tap) DeviceMAC() pnstack.MacAddress { return t.mac }

// queryTapHardwareAddr asks the kernel for the TAP interface's assigned
// MAC address; this requires a socket bound to the host's protocol
// stack, separate from the TUNSETIFF file descriptor.
func queryTapHardwareAddr(name string) (pnstack.MacAddress, error) {
	sock, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return pnstack.MacAddress{}, fmt.Errorf("device: open query socket: %w", err)
	}
	defer unix.Close(sock)
	return queryHardwareAddr(sock, name)
}
