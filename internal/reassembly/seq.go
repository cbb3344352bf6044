package reassembly

// TCP sequence numbers live on a 2^32 circle. Every comparison here treats
// them as such instead of comparing raw magnitudes, so wraparound near
// 0xffffffff behaves the same as anywhere else on the circle.

// seqLT reports whether a precedes b on the sequence circle.
func seqLT(a, b uint32) bool {
	return int32(a-b) < 0
}

// seqLE reports whether a precedes or equals b on the sequence circle.
func seqLE(a, b uint32) bool {
	return a == b || seqLT(a, b)
}

// seqGT reports whether a follows b on the sequence circle.
func seqGT(a, b uint32) bool {
	return seqLT(b, a)
}
