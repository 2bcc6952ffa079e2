//go:build !linux

package device

import (
	"errors"

	"github.com/soypat/pnstack"
)

// RawSocket and Tap are Linux-only (AF_PACKET and /dev/net/tun); on
// other platforms every operation that returns an error reports
// errors.ErrUnsupported and DeviceMAC returns the zero address, so the
// package still builds for cross-compilation and `go vet` elsewhere.
type RawSocket struct{}

func OpenRawSocket(ifaceName string) (*RawSocket, error) { return nil, errors.ErrUnsupported }

func (r *RawSocket) Read(buf []byte) (int, error)  { return 0, errors.ErrUnsupported }
func (r *RawSocket) Write(buf []byte) (int, error) { return 0, errors.ErrUnsupported }
func (r *RawSocket) Close() error                  { return errors.ErrUnsupported }
func (r *RawSocket) DeviceMAC() pnstack.MacAddress { return pnstack.MacAddress{} }

type Tap struct{}

func OpenTap(name, cidr string) (*Tap, error) { return nil, errors.ErrUnsupported }

func (t *Tap) Read(buf []byte) (int, error)  { return 0, errors.ErrUnsupported }
func (t *Tap) Write(buf []byte) (int, error) { return 0, errors.ErrUnsupported }
func (t *Tap) Close() error                  { return errors.ErrUnsupported }
func (t *Tap) DeviceMAC() pnstack.MacAddress { return pnstack.MacAddress{} }
