package stack

import (
	"fmt"
	"strings"

	"github.com/soypat/pnstack"
)

// Config is the immutable, post-load configuration for a running
// stack. Field order and yaml tags mirror the recognized configuration
// keys exactly.
type Config struct {
	DeviceAddr  pnstack.MacAddress `yaml:"device_addr"`
	IPAddr      pnstack.IPv4Addr   `yaml:"ip_addr"`
	NetworkMask pnstack.IPv4Addr   `yaml:"network_mask"`
	Debug       bool               `yaml:"debug"`
	Internet    []string           `yaml:"internet"`
	Transport   []string           `yaml:"transport"`
}

// AcceptsInternet reports whether proto ("IP", "ARP", or "IPv6") passes
// the configured L3 filter.
func (c *Config) AcceptsInternet(proto string) bool { return contains(c.Internet, proto) }

// AcceptsTransport reports whether proto ("ICMP", "TCP", or "UDP")
// passes the configured L4 filter.
func (c *Config) AcceptsTransport(proto string) bool { return contains(c.Transport, proto) }

func contains(set []string, want string) bool {
	for _, s := range set {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

// Validate rejects a configuration that is structurally unusable: a
// CLI consuming this should treat a non-nil return as exit code 2.
func (c *Config) Validate() error {
	if c.DeviceAddr == (pnstack.MacAddress{}) {
		return fmt.Errorf("stack: device_addr is required")
	}
	if c.IPAddr == (pnstack.IPv4Addr{}) {
		return fmt.Errorf("stack: ip_addr is required")
	}
	if c.NetworkMask == (pnstack.IPv4Addr{}) {
		return fmt.Errorf("stack: network_mask is required")
	}
	if len(c.Internet) == 0 {
		return fmt.Errorf("stack: internet filter must name at least one protocol")
	}
	if len(c.Transport) == 0 {
		return fmt.Errorf("stack: transport filter must name at least one protocol")
	}
	return nil
}
