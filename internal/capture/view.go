package capture

import (
	"net/netip"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/nettap/tcpreasm/internal/reassembly"
)

// packetView adapts a decoded gopacket.Packet into the reassembly engine's
// Packet contract. It is the only place in the repository that translates
// wire bytes into the engine's view of a segment.
type packetView struct {
	networkOK, transportOK bool
	srcIP, dstIP            netip.Addr
	srcPort, dstPort        uint16
	seq                     uint32
	payload                 []byte
	syn, fin, rst           bool
	ts                      time.Time
}

var _ reassembly.Packet = packetView{}

func newPacketView(pkt gopacket.Packet) packetView {
	v := packetView{ts: pkt.Metadata().Timestamp}

	if net := pkt.NetworkLayer(); net != nil {
		switch n := net.(type) {
		case *layers.IPv4:
			if addr, ok := netip.AddrFromSlice(n.SrcIP.To4()); ok {
				v.srcIP = addr
				v.networkOK = true
			}
			if addr, ok := netip.AddrFromSlice(n.DstIP.To4()); ok {
				v.dstIP = addr
			}
		case *layers.IPv6:
			if addr, ok := netip.AddrFromSlice(n.SrcIP.To16()); ok {
				v.srcIP = addr
				v.networkOK = true
			}
			if addr, ok := netip.AddrFromSlice(n.DstIP.To16()); ok {
				v.dstIP = addr
			}
		}
	}

	if trans := pkt.TransportLayer(); trans != nil {
		if tcp, ok := trans.(*layers.TCP); ok {
			v.transportOK = true
			v.srcPort = uint16(tcp.SrcPort)
			v.dstPort = uint16(tcp.DstPort)
			v.seq = tcp.Seq
			v.payload = tcp.LayerPayload()
			v.syn = tcp.SYN
			v.fin = tcp.FIN
			v.rst = tcp.RST
		}
	}

	return v
}

func (v packetView) NetworkOK() bool      { return v.networkOK }
func (v packetView) TransportOK() bool    { return v.transportOK }
func (v packetView) SrcIP() netip.Addr    { return v.srcIP }
func (v packetView) DstIP() netip.Addr    { return v.dstIP }
func (v packetView) SrcPort() uint16      { return v.srcPort }
func (v packetView) DstPort() uint16      { return v.dstPort }
func (v packetView) Seq() uint32          { return v.seq }
func (v packetView) PayloadLen() int      { return len(v.payload) }
func (v packetView) Payload() []byte      { return v.payload }
func (v packetView) SYN() bool            { return v.syn }
func (v packetView) FIN() bool            { return v.fin }
func (v packetView) RST() bool            { return v.rst }
func (v packetView) Timestamp() time.Time { return v.ts }
