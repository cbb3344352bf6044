package monitor

import (
	"log"
	"sync"

	"github.com/nettap/tcpreasm/internal/capture"
	"github.com/nettap/tcpreasm/internal/reassembly"
	"github.com/nettap/tcpreasm/internal/resolver"
)

// Hub tracks per-connection summaries derived from the reassembly engine's
// callbacks and hands a copy of each updated summary to its onUpdate
// callback, which the daemon wires to Server.Broadcast. It holds
// no reassembly state of its own beyond what it needs for display; the
// engine remains the source of truth.
type Hub struct {
	mu        sync.RWMutex
	summaries map[reassembly.FlowKey]*ConnectionSummary

	resolver *resolver.HostResolver

	onUpdate func(*ConnectionSummary)
}

// NewHub creates a hub that resolves endpoint hostnames through host (may
// be nil to skip hostname resolution) and invokes onUpdate whenever a
// summary changes, for broadcasting.
func NewHub(host *resolver.HostResolver, onUpdate func(*ConnectionSummary)) *Hub {
	return &Hub{
		summaries: make(map[reassembly.FlowKey]*ConnectionSummary),
		resolver:  host,
		onUpdate:  onUpdate,
	}
}

// Callbacks returns the reassembly.Callbacks wiring the engine to this hub.
func (h *Hub) Callbacks() reassembly.Callbacks {
	return reassembly.Callbacks{
		OnConnectionStart: h.onConnectionStart,
		OnMessageReady:    h.onMessageReady,
		OnConnectionEnd:   h.onConnectionEnd,
	}
}

func (h *Hub) onConnectionStart(data reassembly.ConnectionData) {
	key := data.FlowKey
	summary := newSummary(key, data)

	h.mu.Lock()
	h.summaries[key] = summary
	h.mu.Unlock()

	if h.resolver != nil {
		go h.resolveHostnames(key, data)
	}

	h.publish(summary)
}

func (h *Hub) resolveHostnames(key reassembly.FlowKey, data reassembly.ConnectionData) {
	src := h.resolver.Resolve(data.SrcIP.String())
	dst := h.resolver.Resolve(data.DstIP.String())

	h.mu.Lock()
	summary, ok := h.summaries[key]
	if ok {
		summary.applyHostnames(src, dst)
	}
	h.mu.Unlock()

	if ok {
		h.publish(summary)
	}
}

func (h *Hub) onMessageReady(side int, payload []byte, meta reassembly.ConnectionData) {
	h.mu.Lock()
	summary, ok := h.summaries[meta.FlowKey]
	if !ok {
		h.mu.Unlock()
		return
	}
	summary.MessageCount++
	summary.BytesDelivered += uint64(len(payload))
	if isMissingDataMarker(payload) {
		summary.MissingCount++
	} else if summary.ServerName == "" {
		if name := capture.ExtractSNI(payload); name != "" {
			summary.ServerName = name
		}
	}
	h.mu.Unlock()

	h.publish(summary)
}

func (h *Hub) onConnectionEnd(data reassembly.ConnectionData, reason reassembly.EndReason) {
	key := data.FlowKey

	h.mu.Lock()
	summary, ok := h.summaries[key]
	if ok {
		summary.Open = false
		summary.EndTime = data.EndTime
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	log.Printf("[INFO] monitor: connection %d ended (%s)", key, reason)
	h.publish(summary)
}

func (h *Hub) publish(summary *ConnectionSummary) {
	if h.onUpdate == nil {
		return
	}
	h.mu.RLock()
	clone := *summary
	h.mu.RUnlock()
	h.onUpdate(&clone)
}

// Snapshot returns the current summaries for every connection the hub has
// seen, for serving a full-state request on viewer connect.
func (h *Hub) Snapshot() []*ConnectionSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*ConnectionSummary, 0, len(h.summaries))
	for _, s := range h.summaries {
		clone := *s
		out = append(out, &clone)
	}
	return out
}

// Forget drops summaries for connections the engine has purged, keeping
// the hub's own memory bounded in line with the engine's cleanup queue.
func (h *Hub) Forget(keys []reassembly.FlowKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, key := range keys {
		delete(h.summaries, key)
	}
}

func isMissingDataMarker(payload []byte) bool {
	const prefix = "["
	const suffix = " bytes missing]"
	if len(payload) < len(prefix)+len(suffix) {
		return false
	}
	return string(payload[:len(prefix)]) == prefix &&
		string(payload[len(payload)-len(suffix):]) == suffix
}
