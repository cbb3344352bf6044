package capture

import (
	"sync/atomic"
	"time"
)

// Stats tracks packet-ingestion counters, adapted from the daemon's
// original per-interface counters but shared between live and offline
// capture sources.
type Stats struct {
	startTime    time.Time
	totalPackets uint64
	totalBytes   uint64
	tcpPackets   uint64
}

// Snapshot is a point-in-time copy of Stats, safe to read without races.
type Snapshot struct {
	UptimeSeconds float64
	TotalPackets  uint64
	TotalBytes    uint64
	TCPPackets    uint64
}

// NewStats creates a fresh counter set, timed from now.
func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

func (s *Stats) recordPacket(size int) {
	atomic.AddUint64(&s.totalPackets, 1)
	atomic.AddUint64(&s.totalBytes, uint64(size))
}

func (s *Stats) recordTCP() {
	atomic.AddUint64(&s.tcpPackets, 1)
}

// Snapshot returns a consistent-enough snapshot of the current counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		UptimeSeconds: time.Since(s.startTime).Seconds(),
		TotalPackets:  atomic.LoadUint64(&s.totalPackets),
		TotalBytes:    atomic.LoadUint64(&s.totalBytes),
		TCPPackets:    atomic.LoadUint64(&s.tcpPackets),
	}
}
