package reassembly

import (
	"net/netip"
	"time"
)

// Packet is the parsed packet view the engine consumes. Producing one from
// a real capture (pcap, AF_PACKET, etc.) is the caller's job; the engine
// never touches raw bytes or does its own header parsing.
type Packet interface {
	// NetworkOK reports whether an IPv4 or IPv6 layer was present.
	NetworkOK() bool
	// TransportOK reports whether a TCP layer was present.
	TransportOK() bool

	SrcIP() netip.Addr
	DstIP() netip.Addr
	SrcPort() uint16
	DstPort() uint16

	Seq() uint32
	PayloadLen() int
	Payload() []byte

	SYN() bool
	FIN() bool
	RST() bool

	Timestamp() time.Time
}
