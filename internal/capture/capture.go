package capture

import (
	"context"
	"fmt"
	"log"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"github.com/nettap/tcpreasm/internal/reassembly"
)

// InterfaceCapture reads live traffic off a network interface via libpcap
// and hands parsed packets to the reassembly engine.
type InterfaceCapture struct {
	handle *pcap.Handle
	iface  string
	stats  *Stats
}

// NewInterfaceCapture opens a live capture on iface, optionally restricted
// by a BPF filter expression.
func NewInterfaceCapture(iface, filter string) (*InterfaceCapture, error) {
	handle, err := pcap.OpenLive(iface, 65536, true, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("capture: open interface %s: %w", iface, err)
	}

	if filter != "" {
		if err := handle.SetBPFFilter(filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("capture: set bpf filter %q: %w", filter, err)
		}
	}

	return &InterfaceCapture{handle: handle, iface: iface, stats: NewStats()}, nil
}

// Run decodes packets until ctx is canceled or the capture source is
// exhausted, invoking onPacket for every packet that carries an IP and a
// TCP layer. Non-TCP/IP packets are silently skipped before reaching the
// engine's own rejection of packets without those layers.
func (c *InterfaceCapture) Run(ctx context.Context, onPacket func(reassembly.Packet)) error {
	source := gopacket.NewPacketSource(c.handle, c.handle.LinkType())
	packets := source.Packets()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pkt, ok := <-packets:
			if !ok {
				return nil
			}
			c.stats.recordPacket(len(pkt.Data()))

			view := newPacketView(pkt)
			if !view.NetworkOK() || !view.TransportOK() {
				continue
			}
			c.stats.recordTCP()
			onPacket(view)
		}
	}
}

// Stats returns a snapshot of capture counters.
func (c *InterfaceCapture) Stats() Snapshot {
	return c.stats.Snapshot()
}

// Close releases the underlying pcap handle.
func (c *InterfaceCapture) Close() {
	if c.handle != nil {
		c.handle.Close()
	}
	log.Printf("[INFO] capture: closed interface %s", c.iface)
}
