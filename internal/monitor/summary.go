package monitor

import (
	"time"

	"github.com/nettap/tcpreasm/internal/reassembly"
)

// ConnectionSummary is the display-facing projection of a connection's
// reassembly activity, broadcast to connected viewers as JSON.
type ConnectionSummary struct {
	FlowKey       uint32    `json:"flowKey"`
	SrcHost       string    `json:"srcHost"`
	DstHost       string    `json:"dstHost"`
	SrcPort       uint16    `json:"srcPort"`
	DstPort       uint16    `json:"dstPort"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime,omitempty"`
	Open          bool      `json:"open"`
	MessageCount   uint64 `json:"messageCount"`
	BytesDelivered uint64 `json:"bytesDelivered"`
	MissingCount   uint64 `json:"missingCount"`
	ServerName     string `json:"serverName,omitempty"`
}

func newSummary(key reassembly.FlowKey, data reassembly.ConnectionData) *ConnectionSummary {
	return &ConnectionSummary{
		FlowKey:   uint32(key),
		SrcHost:   data.SrcIP.String(),
		DstHost:   data.DstIP.String(),
		SrcPort:   data.SrcPort,
		DstPort:   data.DstPort,
		StartTime: data.StartTime,
		Open:      true,
	}
}

func (s *ConnectionSummary) applyHostnames(src, dst string) {
	if src != "" {
		s.SrcHost = src
	}
	if dst != "" {
		s.DstHost = dst
	}
}
