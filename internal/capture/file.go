package capture

import (
	"context"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"github.com/nettap/tcpreasm/internal/reassembly"
)

// FileCapture replays a pcap/pcapng file instead of a live interface, for
// feeding previously captured traffic back through the engine.
type FileCapture struct {
	handle *pcap.Handle
	path   string
	stats  *Stats
}

// NewFileCapture opens path for offline replay.
func NewFileCapture(path string) (*FileCapture, error) {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, fmt.Errorf("capture: open file %s: %w", path, err)
	}
	return &FileCapture{handle: handle, path: path, stats: NewStats()}, nil
}

// Run decodes every packet in the file, in file order, stopping early if
// ctx is canceled.
func (c *FileCapture) Run(ctx context.Context, onPacket func(reassembly.Packet)) error {
	source := gopacket.NewPacketSource(c.handle, c.handle.LinkType())

	for pkt := range source.Packets() {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.stats.recordPacket(len(pkt.Data()))

		view := newPacketView(pkt)
		if !view.NetworkOK() || !view.TransportOK() {
			continue
		}
		c.stats.recordTCP()
		onPacket(view)
	}
	return nil
}

// Stats returns a snapshot of replay counters.
func (c *FileCapture) Stats() Snapshot {
	return c.stats.Snapshot()
}

// Close releases the underlying pcap handle.
func (c *FileCapture) Close() {
	if c.handle != nil {
		c.handle.Close()
	}
}
