package reassembly

// EndReason describes why a connection was terminated.
type EndReason int

const (
	// ClosedByFinRst means both sides signaled FIN or RST.
	ClosedByFinRst EndReason = iota
	// ClosedManually means the caller invoked CloseConnection or
	// CloseAllConnections.
	ClosedManually
)

func (r EndReason) String() string {
	switch r {
	case ClosedByFinRst:
		return "ClosedByFinRst"
	case ClosedManually:
		return "ClosedManually"
	default:
		return "unknown"
	}
}

// Callbacks are the engine's three notification points. All three fire
// synchronously, on the goroutine that called ReassemblePacket,
// CloseConnection, or CloseAllConnections. None may re-enter the same
// Reassembly instance.
type Callbacks struct {
	// OnConnectionStart fires exactly once, on the first packet of a new
	// flow key, before any OnMessageReady for that connection.
	OnConnectionStart func(conn ConnectionData)

	// OnMessageReady fires with reassembled, in-order payload for one
	// side of a connection. Synthetic "[N bytes missing]" markers arrive
	// through this same callback. The payload slice is only valid for
	// the duration of the call.
	OnMessageReady func(side int, payload []byte, conn ConnectionData)

	// OnConnectionEnd fires at most once per connection, strictly after
	// its last OnMessageReady.
	OnConnectionEnd func(conn ConnectionData, reason EndReason)
}
