package stack

import (
	"testing"

	"github.com/soypat/pnstack"
)

func validConfig() Config {
	return Config{
		DeviceAddr:  pnstack.MacAddress{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01},
		IPAddr:      pnstack.IPv4Addr{192, 168, 1, 3},
		NetworkMask: pnstack.IPv4Addr{255, 255, 255, 0},
		Internet:    []string{"IP", "ARP"},
		Transport:   []string{"ICMP", "TCP"},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
	}{
		{"device_addr", func(c *Config) { c.DeviceAddr = pnstack.MacAddress{} }},
		{"ip_addr", func(c *Config) { c.IPAddr = pnstack.IPv4Addr{} }},
		{"network_mask", func(c *Config) { c.NetworkMask = pnstack.IPv4Addr{} }},
		{"internet", func(c *Config) { c.Internet = nil }},
		{"transport", func(c *Config) { c.Transport = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error when %s is missing", tt.name)
			}
		})
	}
}

func TestFiltersAreCaseInsensitive(t *testing.T) {
	cfg := validConfig()
	cfg.Internet = []string{"ip", "arp"}
	cfg.Transport = []string{"icmp"}
	if !cfg.AcceptsInternet("IP") || !cfg.AcceptsInternet("ARP") {
		t.Fatal("internet filter should match case-insensitively")
	}
	if !cfg.AcceptsTransport("ICMP") {
		t.Fatal("transport filter should match case-insensitively")
	}
	if cfg.AcceptsTransport("TCP") {
		t.Fatal("transport filter should reject protocols not listed")
	}
}

func TestMacAddressTextRoundTrip(t *testing.T) {
	mac := pnstack.MacAddress{0x02, 0x42, 0xac, 0x11, 0x00, 0x02}
	text, err := mac.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "02:42:ac:11:00:02" {
		t.Fatalf("got %q", text)
	}
	var got pnstack.MacAddress
	if err := got.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if got != mac {
		t.Fatalf("round trip mismatch: got %v, want %v", got, mac)
	}
}

func TestIPv4AddrTextRoundTrip(t *testing.T) {
	ip := pnstack.IPv4Addr{10, 0, 0, 5}
	text, err := ip.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "10.0.0.5" {
		t.Fatalf("got %q", text)
	}
	var got pnstack.IPv4Addr
	if err := got.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if got != ip {
		t.Fatalf("round trip mismatch: got %v, want %v", got, ip)
	}
}
