package resolver

import (
	"testing"
	"time"
)

func TestResolveUnresolvableIPReturnsIPAndCaches(t *testing.T) {
	r := New(time.Minute)

	// TEST-NET-1, guaranteed to have no PTR record in any real resolver.
	ip := "192.0.2.123"

	got := r.Resolve(ip)
	if got != ip {
		t.Fatalf("Resolve(%q) = %q, want %q", ip, got, ip)
	}

	if _, ok := r.lookupCache(ip); !ok {
		t.Fatalf("expected negative result to be cached for %q", ip)
	}

	hits, misses := r.Stats()
	if misses != 1 {
		t.Fatalf("misses = %d, want 1", misses)
	}

	// Second call should hit the cache rather than issuing another lookup.
	r.Resolve(ip)
	hits2, misses2 := r.Stats()
	if misses2 != misses {
		t.Fatalf("expected no additional miss, got misses=%d", misses2)
	}
	if hits2 != hits+1 {
		t.Fatalf("hits = %d, want %d", hits2, hits+1)
	}
}

func TestEvictExpiredRemovesStaleEntries(t *testing.T) {
	r := New(time.Millisecond)
	r.store("10.0.0.1", "stale.example", time.Millisecond)

	time.Sleep(5 * time.Millisecond)
	r.evictExpired()

	if _, ok := r.lookupCache("10.0.0.1"); ok {
		t.Fatalf("expected expired entry to be evicted")
	}
}

func TestNewClampsNegativeTTLToOneSecond(t *testing.T) {
	r := New(5 * time.Millisecond)
	if r.negTTL != time.Second {
		t.Fatalf("negTTL = %v, want %v", r.negTTL, time.Second)
	}
}
