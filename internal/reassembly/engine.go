// Package reassembly implements TCP stream reassembly: demultiplexing a
// stream of captured packets into individual connections and their two
// directional half-streams, and delivering the reconstructed byte stream
// of each direction in strict sequence order via callbacks.
//
// The package performs no I/O and does no packet parsing of its own; it
// consumes an already-parsed Packet view. It is not internally
// synchronized — callers that reassemble from multiple goroutines must
// serialize their own calls.
package reassembly

import (
	"fmt"
	"log"
	"net/netip"
	"time"
)

// Reassembly is the main entry point: it classifies incoming packets,
// advances per-connection state, and invokes the configured Callbacks.
type Reassembly struct {
	callbacks Callbacks
	config    Config

	conns    map[FlowKey]*connectionState
	connInfo map[FlowKey]ConnectionData
	cleanup  *cleanupQueue

	purgeTimepoint time.Time
}

// New constructs a Reassembly instance. A zero Config is normalized to
// DefaultConfig()'s numeric fields (RemoveConnInfo keeps whatever the
// caller set; pass DefaultConfig() to get true).
func New(callbacks Callbacks, config Config) *Reassembly {
	return &Reassembly{
		callbacks: callbacks,
		config:    normalizeConfig(config),
		conns:     make(map[FlowKey]*connectionState),
		connInfo:  make(map[FlowKey]ConnectionData),
		cleanup:   newCleanupQueue(),
	}
}

// ReassemblePacket feeds one packet into the engine. Packets without both
// a network and a transport layer are silently ignored.
func (r *Reassembly) ReassemblePacket(pkt Packet) {
	if !pkt.NetworkOK() || !pkt.TransportOK() {
		return
	}

	tuple := ConnectionTuple{
		SrcIP:   pkt.SrcIP(),
		DstIP:   pkt.DstIP(),
		SrcPort: pkt.SrcPort(),
		DstPort: pkt.DstPort(),
	}
	key := tuple.flowKey()

	conn, exists := r.conns[key]
	if !exists {
		meta := tuple.newConnectionData(pkt.Timestamp())
		conn = newConnectionState(meta)
		r.conns[key] = conn
		r.connInfo[key] = meta
		if r.callbacks.OnConnectionStart != nil {
			r.callbacks.OnConnectionStart(meta)
		}
	}

	sideIdx := r.classifySide(conn, tuple.SrcIP, tuple.SrcPort)
	side := &conn.sides[sideIdx]

	seq := pkt.Seq()
	payloadLen := pkt.PayloadLen()

	switch {
	case payloadLen == 0 && pkt.SYN() && !side.seqInit:
		// SYN-only first packet on this side: the next byte is seq+1,
		// and this carries no data to deliver.
		side.expectedSeq = seq + 1
		side.seqInit = true
	case !side.seqInit:
		side.expectedSeq = seq
		side.seqInit = true
	}

	if conn.prevSide != -1 && conn.prevSide != sideIdx {
		other := &conn.sides[conn.prevSide]
		r.flush(other, conn.prevSide, conn.meta, false)
	}

	if payloadLen > 0 {
		r.ingestData(side, sideIdx, conn.meta, seq, pkt.Payload())
	}

	conn.prevSide = sideIdx

	if pkt.FIN() || pkt.RST() {
		side.gotFinOrRst = true
		if conn.sides[0].gotFinOrRst && conn.sides[1].gotFinOrRst {
			r.terminate(key, conn, ClosedByFinRst, pkt.Timestamp())
		}
	}

	r.maybeAutoPurge(pkt.Timestamp())
}

// classifySide determines which side of the connection this packet
// belongs to, populating side 0 or side 1's identity on first sight.
func (r *Reassembly) classifySide(conn *connectionState, srcIP netip.Addr, srcPort uint16) int {
	if conn.numSidesSeen == 0 {
		conn.sides[0].srcIP = srcIP
		conn.sides[0].srcPort = srcPort
		conn.numSidesSeen = 1
		return 0
	}
	if conn.sides[0].identifies(srcIP, srcPort) {
		return 0
	}
	if conn.numSidesSeen == 1 {
		conn.sides[1].srcIP = srcIP
		conn.sides[1].srcPort = srcPort
		conn.numSidesSeen = 2
		return 1
	}
	return 1
}

// ingestData classifies one data-bearing segment against the side's
// expected sequence number: retransmission, left-overlap, exact match, or
// future fragment.
func (r *Reassembly) ingestData(side *sideState, sideIdx int, meta ConnectionData, seq uint32, payload []byte) {
	end := seq + uint32(len(payload))

	switch {
	case seqLT(end, side.expectedSeq) || end == side.expectedSeq:
		// Already-seen data: drop.
		return
	case seqLT(seq, side.expectedSeq) && seqLT(side.expectedSeq, end):
		trim := side.expectedSeq - seq
		r.deliverExact(side, sideIdx, meta, payload[trim:])
	case seq == side.expectedSeq:
		r.deliverExact(side, sideIdx, meta, payload)
	default:
		buf := make([]byte, len(payload))
		copy(buf, payload)
		side.fragments.insert(&tcpFragment{seq: seq, data: buf})
	}
}

// deliverExact delivers a segment known to start exactly at expectedSeq,
// advances expectedSeq, and drains any now-contiguous buffered fragments.
func (r *Reassembly) deliverExact(side *sideState, sideIdx int, meta ConnectionData, payload []byte) {
	side.expectedSeq += uint32(len(payload))
	r.deliver(sideIdx, payload, meta)
	r.drainSide(side, sideIdx, meta)
}

// drainSide repeatedly scans the fragment store for anything that overlaps
// or abuts expectedSeq, delivering it and restarting the scan, until
// nothing more can be delivered.
func (r *Reassembly) drainSide(side *sideState, sideIdx int, meta ConnectionData) {
	for {
		progressed := false
		for i, f := range side.fragments.frags {
			if seqLE(f.end(), side.expectedSeq) {
				side.fragments.removeAt(i)
				progressed = true
				break
			}
			if seqLE(f.seq, side.expectedSeq) && seqLT(side.expectedSeq, f.end()) {
				side.fragments.removeAt(i)
				offset := side.expectedSeq - f.seq
				tail := f.data[offset:]
				side.expectedSeq += uint32(len(tail))
				r.deliver(sideIdx, tail, meta)
				progressed = true
				break
			}
		}
		if !progressed {
			return
		}
	}
}

// flush is the out-of-order flush invoked on a direction switch (one
// round) or on connection close (cleanWhole, repeated until the fragment
// store is empty). It surfaces the gap in front of the closest buffered
// fragment as a synthetic "[N bytes missing]" marker before delivering it.
func (r *Reassembly) flush(side *sideState, sideIdx int, meta ConnectionData, cleanWhole bool) {
	for {
		if side.fragments.empty() {
			return
		}

		best := 0
		bestDist := side.fragments.frags[0].seq - side.expectedSeq
		for i := 1; i < len(side.fragments.frags); i++ {
			dist := side.fragments.frags[i].seq - side.expectedSeq
			if dist < bestDist {
				best, bestDist = i, dist
			}
		}

		f := side.fragments.removeAt(best)
		if bestDist > 0 {
			r.deliver(sideIdx, missingDataMarker(bestDist), meta)
		}

		side.expectedSeq = f.seq + uint32(len(f.data))
		r.deliver(sideIdx, f.data, meta)
		r.drainSide(side, sideIdx, meta)

		if !cleanWhole {
			return
		}
	}
}

func missingDataMarker(n uint32) []byte {
	return []byte(fmt.Sprintf("[%d bytes missing]", n))
}

func (r *Reassembly) deliver(sideIdx int, payload []byte, meta ConnectionData) {
	if len(payload) == 0 || r.callbacks.OnMessageReady == nil {
		return
	}
	r.callbacks.OnMessageReady(sideIdx, payload, meta)
}

// terminate runs the close sequence for a connection: flush both sides in
// full, fire OnConnectionEnd, destroy the live state, and schedule the
// info-table entry for cleanup.
func (r *Reassembly) terminate(key FlowKey, conn *connectionState, reason EndReason, endTime time.Time) {
	r.flush(&conn.sides[0], 0, conn.meta, true)
	r.flush(&conn.sides[1], 1, conn.meta, true)

	conn.meta.EndTime = endTime
	r.connInfo[key] = conn.meta

	if r.callbacks.OnConnectionEnd != nil {
		r.callbacks.OnConnectionEnd(conn.meta, reason)
	}

	delete(r.conns, key)

	if r.config.RemoveConnInfo {
		// Scheduled off wall-clock time, not endTime: endTime is the
		// packet timestamp for FIN/RST closes, which lags real time
		// during offline replay and would make connections purge-eligible
		// almost immediately instead of after ClosedConnectionDelay.
		r.cleanup.schedule(key, time.Now().Add(r.config.ClosedConnectionDelay).Unix())
	}
}

// CloseConnection closes a connection manually. Closing an unknown or
// already-closed flow key is logged and otherwise a no-op.
func (r *Reassembly) CloseConnection(key FlowKey) {
	conn, ok := r.conns[key]
	if !ok {
		log.Printf("[WARN] reassembly: closeConnection: flow %d is unknown or already closed", key)
		return
	}
	r.terminate(key, conn, ClosedManually, time.Now())
}

// CloseAllConnections closes every currently open connection manually.
func (r *Reassembly) CloseAllConnections() {
	keys := make([]FlowKey, 0, len(r.conns))
	for k := range r.conns {
		keys = append(keys, k)
	}
	now := time.Now()
	for _, k := range keys {
		if conn, ok := r.conns[k]; ok {
			r.terminate(k, conn, ClosedManually, now)
		}
	}
}

// PurgeClosedConnections removes purge-eligible entries from the info
// table, up to limitOverride (0 uses the configured MaxNumToClean), and
// returns the count removed.
func (r *Reassembly) PurgeClosedConnections(limitOverride int) int {
	limit := r.config.MaxNumToClean
	if limitOverride > 0 {
		limit = limitOverride
	}
	return r.cleanup.purge(r.connInfo, limit, time.Now().Unix())
}

func (r *Reassembly) maybeAutoPurge(now time.Time) {
	if r.purgeTimepoint.IsZero() {
		r.purgeTimepoint = now
		return
	}
	if now.Sub(r.purgeTimepoint) >= time.Second {
		r.PurgeClosedConnections(0)
		r.purgeTimepoint = now
	}
}

// GetConnectionInformation returns a snapshot of every connection managed
// by this instance, open or closed, keyed by flow key.
func (r *Reassembly) GetConnectionInformation() map[FlowKey]ConnectionData {
	out := make(map[FlowKey]ConnectionData, len(r.connInfo))
	for k, v := range r.connInfo {
		out[k] = v
	}
	return out
}

// IsConnectionOpen reports whether conn is currently open (+1), closed but
// still in the info table (0), or unknown to this instance (-1).
func (r *Reassembly) IsConnectionOpen(conn ConnectionData) int {
	if _, ok := r.conns[conn.FlowKey]; ok {
		return 1
	}
	if _, ok := r.connInfo[conn.FlowKey]; ok {
		return 0
	}
	return -1
}
