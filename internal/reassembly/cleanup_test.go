package reassembly

import "testing"

func TestCleanupQueuePurgeRespectsTimeAndLimit(t *testing.T) {
	q := newCleanupQueue()
	info := map[FlowKey]ConnectionData{
		1: {FlowKey: 1},
		2: {FlowKey: 2},
		3: {FlowKey: 3},
	}

	q.schedule(1, 100)
	q.schedule(2, 100)
	q.schedule(3, 200)

	// Nothing eligible yet.
	if n := q.purge(info, 30, 50); n != 0 {
		t.Fatalf("expected 0 removed before any bucket elapses, got %d", n)
	}

	// Only the time-100 bucket has elapsed; cap at 1 entry.
	if n := q.purge(info, 1, 150); n != 1 {
		t.Fatalf("expected 1 removed under the limit, got %d", n)
	}
	if len(info) != 2 {
		t.Fatalf("expected 2 entries left, got %d", len(info))
	}

	// Finish draining the elapsed bucket, bucket 200 still not due.
	if n := q.purge(info, 30, 150); n != 1 {
		t.Fatalf("expected to drain the rest of the 100 bucket, got %d", n)
	}
	if _, ok := info[3]; !ok {
		t.Fatal("expected flow 3 (not yet due) to remain")
	}

	if n := q.purge(info, 30, 200); n != 1 {
		t.Fatalf("expected the 200 bucket to be collected once due, got %d", n)
	}
	if len(info) != 0 {
		t.Fatalf("expected info table empty, got %d entries", len(info))
	}
}

func TestCleanupQueuePurgeEmpty(t *testing.T) {
	q := newCleanupQueue()
	info := map[FlowKey]ConnectionData{}
	if n := q.purge(info, 30, 1_000); n != 0 {
		t.Fatalf("expected 0 from an empty queue, got %d", n)
	}
}
