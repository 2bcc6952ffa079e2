package pnstack

// EtherType identifies the payload protocol carried by an Ethernet frame.
type EtherType uint16

// Ethernet type values used by this stack. The full IANA registry has
// hundreds of entries; only the ones this stack parses are named here.
const (
	EtherTypeIPv4 EtherType = 0x0800
	EtherTypeARP  EtherType = 0x0806
)

func (e EtherType) String() string {
	switch e {
	case EtherTypeIPv4:
		return "IPv4"
	case EtherTypeARP:
		return "ARP"
	default:
		return "EtherType(unknown)"
	}
}

// IPProto is the IPv4 protocol number carried in the header's Protocol field.
type IPProto uint8

// IP protocol numbers this stack dispatches on.
const (
	IPProtoICMP IPProto = 1
	IPProtoTCP  IPProto = 6
)

func (p IPProto) String() string {
	switch p {
	case IPProtoICMP:
		return "ICMP"
	case IPProtoTCP:
		return "TCP"
	default:
		return "IPProto(unknown)"
	}
}

// ARPOp is the ARP header's operation field: request or reply.
type ARPOp uint16

const (
	ARPRequest ARPOp = 1
	ARPReply   ARPOp = 2
)

func (op ARPOp) String() string {
	switch op {
	case ARPRequest:
		return "request"
	case ARPReply:
		return "reply"
	default:
		return "ARPOp(unknown)"
	}
}

const (
	sizeHeaderEthernet = 14
	sizeHeaderARPv4     = 28
	sizeHeaderIPv4      = 20
	sizeHeaderICMP      = 4
	sizeHeaderTCP       = 20
)
