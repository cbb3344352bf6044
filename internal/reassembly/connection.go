package reassembly

import (
	"net/netip"
	"time"
)

// ConnectionTuple is the 5-tuple of one direction of a connection as seen
// on the wire. It is used only to derive the flow key and populate
// ConnectionData; the engine never canonicalizes which side is "client".
type ConnectionTuple struct {
	SrcIP   netip.Addr
	DstIP   netip.Addr
	SrcPort uint16
	DstPort uint16
}

// flowKey derives the direction-independent flow key for this tuple.
func (t ConnectionTuple) flowKey() FlowKey {
	return computeFlowKey(t.SrcIP, t.SrcPort, t.DstIP, t.DstPort)
}

// newConnectionData builds the initial ConnectionData record for a
// connection first seen as this tuple at startTime.
func (t ConnectionTuple) newConnectionData(startTime time.Time) ConnectionData {
	return ConnectionData{
		SrcIP:     t.SrcIP,
		DstIP:     t.DstIP,
		SrcPort:   t.SrcPort,
		DstPort:   t.DstPort,
		FlowKey:   t.flowKey(),
		StartTime: startTime,
	}
}

// ConnectionData is the read-only connection record handed to callbacks and
// returned by GetConnectionInformation. It describes the side first seen.
type ConnectionData struct {
	SrcIP     netip.Addr
	DstIP     netip.Addr
	SrcPort   uint16
	DstPort   uint16
	FlowKey   FlowKey
	StartTime time.Time
	EndTime   time.Time
}

// sideState is one of the two directional half-streams of a connection.
type sideState struct {
	srcIP   netip.Addr
	srcPort uint16

	seqInit     bool
	expectedSeq uint32

	fragments fragmentStore

	gotFinOrRst bool
}

func (s *sideState) identifies(ip netip.Addr, port uint16) bool {
	return s.srcIP == ip && s.srcPort == port
}

// connectionState is the live, mutating state for one connection. It is
// destroyed on termination; only its ConnectionData survives, in the
// info table.
type connectionState struct {
	sides        [2]sideState
	numSidesSeen int
	prevSide     int // index of the side flushed most recently, -1 initially
	meta         ConnectionData
}

func newConnectionState(meta ConnectionData) *connectionState {
	return &connectionState{prevSide: -1, meta: meta}
}
