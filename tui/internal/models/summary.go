// Package models mirrors the wire shape of the daemon's connection
// summaries, kept independent of the daemon's own package so the viewer
// can be built and shipped separately.
package models

import (
	"strconv"
	"time"
)

// ConnectionSummary is the JSON shape broadcast by the daemon's monitor
// server, one per tracked connection.
type ConnectionSummary struct {
	FlowKey        uint32    `json:"flowKey"`
	SrcHost        string    `json:"srcHost"`
	DstHost        string    `json:"dstHost"`
	SrcPort        uint16    `json:"srcPort"`
	DstPort        uint16    `json:"dstPort"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime,omitempty"`
	Open           bool      `json:"open"`
	MessageCount   uint64    `json:"messageCount"`
	BytesDelivered uint64    `json:"bytesDelivered"`
	MissingCount   uint64    `json:"missingCount"`
	ServerName     string    `json:"serverName,omitempty"`
}

// SrcEndpoint renders the source side of the connection as "host:port".
func (c ConnectionSummary) SrcEndpoint() string {
	return c.SrcHost + ":" + strconv.Itoa(int(c.SrcPort))
}

// DstEndpoint renders the destination side as "host:port".
func (c ConnectionSummary) DstEndpoint() string {
	return c.DstHost + ":" + strconv.Itoa(int(c.DstPort))
}
