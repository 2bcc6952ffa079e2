// Package device provides link-layer I/O for the stack: a raw AF_PACKET
// socket bound to an existing network interface, and TUN/TAP device
// creation on Linux.
package device

import "github.com/soypat/pnstack"

// LinkDevice is anything the pipeline can read Ethernet frames from and
// write Ethernet frames to: a raw socket, a TAP interface, or a test
// double. Read returning n==0 with a nil error signals clean EOF.
type LinkDevice interface {
	Read(buf []byte) (int, error)
	Write(buf []byte) (int, error)
	DeviceMAC() pnstack.MacAddress
	Close() error
}
