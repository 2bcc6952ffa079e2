package pnstack

import "fmt"

// MacAddress is an IEEE 802 48-bit hardware address.
type MacAddress [6]byte

// BroadcastMAC is the link-layer broadcast address ff:ff:ff:ff:ff:ff.
var BroadcastMAC = MacAddress{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

func (m MacAddress) String() string {
	const hex = "0123456789abcdef"
	buf := make([]byte, 17)
	for i, b := range m {
		buf[i*3] = hex[b>>4]
		buf[i*3+1] = hex[b&0xf]
		if i != 5 {
			buf[i*3+2] = ':'
		}
	}
	return string(buf)
}

// IsBroadcast reports whether m is the link-layer broadcast address.
func (m MacAddress) IsBroadcast() bool { return m == BroadcastMAC }

// MarshalText implements encoding.TextMarshaler, so a MacAddress
// round-trips through YAML config and slog attributes as
// "aa:bb:cc:dd:ee:ff" instead of a byte array.
func (m MacAddress) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MacAddress) UnmarshalText(text []byte) error {
	var parsed [6]byte
	n, err := fmt.Sscanf(string(text), "%02x:%02x:%02x:%02x:%02x:%02x",
		&parsed[0], &parsed[1], &parsed[2], &parsed[3], &parsed[4], &parsed[5])
	if err != nil || n != 6 {
		return fmt.Errorf("pnstack: invalid MAC address %q", text)
	}
	*m = MacAddress(parsed)
	return nil
}

// IPv4Addr is a 32-bit Internet Protocol version 4 address.
type IPv4Addr [4]byte

// BroadcastIPv4 is the limited broadcast address 255.255.255.255.
var BroadcastIPv4 = IPv4Addr{255, 255, 255, 255}

func (a IPv4Addr) String() string {
	buf := make([]byte, 0, 15)
	for i, b := range a {
		buf = appendUint8(buf, b)
		if i != 3 {
			buf = append(buf, '.')
		}
	}
	return string(buf)
}

func appendUint8(buf []byte, v uint8) []byte {
	if v >= 100 {
		buf = append(buf, '0'+v/100)
	}
	if v >= 10 {
		buf = append(buf, '0'+(v/10)%10)
	}
	return append(buf, '0'+v%10)
}

// IsBroadcast reports whether a is the limited broadcast address.
func (a IPv4Addr) IsBroadcast() bool { return a == BroadcastIPv4 }

// MarshalText implements encoding.TextMarshaler, so an IPv4Addr
// round-trips through YAML config as a dotted-quad string.
func (a IPv4Addr) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *IPv4Addr) UnmarshalText(text []byte) error {
	var parsed [4]int
	n, err := fmt.Sscanf(string(text), "%d.%d.%d.%d", &parsed[0], &parsed[1], &parsed[2], &parsed[3])
	if err != nil || n != 4 {
		return fmt.Errorf("pnstack: invalid IPv4 address %q", text)
	}
	for i, v := range parsed {
		if v < 0 || v > 255 {
			return fmt.Errorf("pnstack: invalid IPv4 address %q", text)
		}
		a[i] = byte(v)
	}
	return nil
}
