package reassembly

import "testing"

func TestSeqComparisonsWrapAround(t *testing.T) {
	const max = ^uint32(0)

	if !seqLT(max, 5) {
		t.Error("expected max to precede 5 across the wraparound")
	}
	if seqLT(5, max) {
		t.Error("did not expect 5 to precede max across the wraparound")
	}
	if !seqLE(max, max) {
		t.Error("expected seqLE to be reflexive")
	}
	if !seqGT(5, max) {
		t.Error("expected 5 to follow max across the wraparound")
	}
}

func TestSeqComparisonsWithinRange(t *testing.T) {
	if !seqLT(10, 20) {
		t.Error("expected 10 < 20")
	}
	if seqLT(20, 10) {
		t.Error("did not expect 20 < 10")
	}
	if !seqLE(10, 10) {
		t.Error("expected seqLE(10, 10)")
	}
	if !seqGT(20, 10) {
		t.Error("expected 20 > 10")
	}
}
