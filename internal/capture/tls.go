package capture

import "encoding/binary"

const (
	tlsHandshakeRecord = 0x16
	tlsClientHello      = 0x01
	tlsExtensionSNI     = 0x0000
	sniHostNameType     = 0x00
)

// cursor is a tiny bounds-checked reader over a byte slice, used to walk
// the fixed-then-variable-length fields of a TLS ClientHello without
// hand-tracking an offset at every call site.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

func (c *cursor) skip(n int) bool {
	if n < 0 || c.remaining() < n {
		return false
	}
	c.pos += n
	return true
}

func (c *cursor) byte() (byte, bool) {
	if c.remaining() < 1 {
		return 0, false
	}
	b := c.buf[c.pos]
	c.pos++
	return b, true
}

func (c *cursor) uint16() (uint16, bool) {
	if c.remaining() < 2 {
		return 0, false
	}
	v := binary.BigEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, true
}

func (c *cursor) take(n int) ([]byte, bool) {
	if n < 0 || c.remaining() < n {
		return nil, false
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, true
}

// ExtractSNI returns the Server Name Indication hostname from a TLS
// ClientHello record, or "" if payload isn't a ClientHello, is truncated,
// or carries no SNI extension. It is an example of a higher-level
// analyzer layered on top of reassembled TCP payload, per the engine's
// stated purpose as a substrate for protocol parsers.
func ExtractSNI(payload []byte) string {
	c := &cursor{buf: payload}

	recordType, ok := c.byte()
	if !ok || recordType != tlsHandshakeRecord {
		return ""
	}
	if !c.skip(4) { // legacy version (2) + record length (2)
		return ""
	}

	handshakeType, ok := c.byte()
	if !ok || handshakeType != tlsClientHello {
		return ""
	}
	if !c.skip(3) { // handshake length
		return ""
	}
	if !c.skip(2) { // client version
		return ""
	}
	if !c.skip(32) { // random
		return ""
	}

	sessionIDLen, ok := c.byte()
	if !ok || !c.skip(int(sessionIDLen)) {
		return ""
	}

	cipherSuitesLen, ok := c.uint16()
	if !ok || !c.skip(int(cipherSuitesLen)) {
		return ""
	}

	compressionLen, ok := c.byte()
	if !ok || !c.skip(int(compressionLen)) {
		return ""
	}

	extsLen, ok := c.uint16()
	if !ok {
		return ""
	}
	extsEnd := c.pos + int(extsLen)
	if extsEnd > len(c.buf) {
		return ""
	}

	for c.pos < extsEnd {
		extType, ok := c.uint16()
		if !ok {
			return ""
		}
		extLen, ok := c.uint16()
		if !ok {
			return ""
		}
		body, ok := c.take(int(extLen))
		if !ok {
			return ""
		}
		if extType == tlsExtensionSNI {
			return parseServerNameList(body)
		}
	}

	return ""
}

func parseServerNameList(data []byte) string {
	c := &cursor{buf: data}

	listLen, ok := c.uint16()
	if !ok {
		return ""
	}
	listEnd := c.pos + int(listLen)
	if listEnd > len(data) {
		return ""
	}

	for c.pos < listEnd {
		nameType, ok := c.byte()
		if !ok {
			return ""
		}
		nameLen, ok := c.uint16()
		if !ok {
			return ""
		}
		name, ok := c.take(int(nameLen))
		if !ok {
			return ""
		}
		if nameType == sniHostNameType && isValidHostname(name) {
			return string(name)
		}
	}
	return ""
}

func isValidHostname(b []byte) bool {
	if len(b) == 0 || len(b) > 255 {
		return false
	}
	prevDot := false
	for _, ch := range b {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-':
			prevDot = false
		case ch == '.':
			if prevDot {
				return false
			}
			prevDot = true
		default:
			return false
		}
	}
	return true
}
