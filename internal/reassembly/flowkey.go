package reassembly

import (
	"hash/fnv"
	"net/netip"
)

// FlowKey is a direction-independent identifier for one TCP connection: both
// directions of the same connection hash to the same key.
type FlowKey uint32

type endpoint struct {
	ip   netip.Addr
	port uint16
}

func (e endpoint) less(o endpoint) bool {
	as, os := e.ip.String(), o.ip.String()
	if as != os {
		return as < os
	}
	return e.port < o.port
}

// computeFlowKey hashes the sorted endpoint pair so that a packet seen from
// either direction of the connection produces the same key. Collisions are
// accepted as a rare correctness risk, per the data model.
func computeFlowKey(srcIP netip.Addr, srcPort uint16, dstIP netip.Addr, dstPort uint16) FlowKey {
	a := endpoint{srcIP, srcPort}
	b := endpoint{dstIP, dstPort}
	if b.less(a) {
		a, b = b, a
	}

	h := fnv.New32a()
	h.Write(a.ip.AsSlice())
	h.Write([]byte{byte(a.port >> 8), byte(a.port)})
	h.Write(b.ip.AsSlice())
	h.Write([]byte{byte(b.port >> 8), byte(b.port)})
	return FlowKey(h.Sum32())
}
