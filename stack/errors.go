package stack

import "errors"

// ErrIgnore is the single soft signal shared by every layer: the byte
// stream handled was valid but fell outside the configured filters (an
// address that isn't ours, a protocol the config excludes). It is
// never logged at default verbosity and never stops the receive loop.
var ErrIgnore = errors.New("stack: ignored, outside configured filter")

// Kind identifies which tier of the pipeline raised an error.
type Kind uint8

const (
	KindDevice Kind = iota
	KindLink
	KindInternet
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindDevice:
		return "device"
	case KindLink:
		return "link"
	case KindInternet:
		return "internet"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// DeviceError wraps a failure reading from or writing to the LinkDevice
// itself: short writes, read errors, anything below Ethernet.
type DeviceError struct{ Err error }

func (e *DeviceError) Error() string { return "stack: device: " + e.Err.Error() }
func (e *DeviceError) Unwrap() error { return e.Err }
func (e *DeviceError) Kind() Kind    { return KindDevice }

// LinkError wraps a failure in the Ethernet/ARP layer.
type LinkError struct{ Err error }

func (e *LinkError) Error() string { return "stack: link: " + e.Err.Error() }
func (e *LinkError) Unwrap() error { return e.Err }
func (e *LinkError) Kind() Kind    { return KindLink }

// InternetError wraps a failure in the IPv4 layer.
type InternetError struct{ Err error }

func (e *InternetError) Error() string { return "stack: internet: " + e.Err.Error() }
func (e *InternetError) Unwrap() error { return e.Err }
func (e *InternetError) Kind() Kind    { return KindInternet }

// TransportError wraps a failure in the ICMP/TCP layer.
type TransportError struct{ Err error }

func (e *TransportError) Error() string { return "stack: transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Kind() Kind    { return KindTransport }
