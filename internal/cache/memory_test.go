package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryPutGetInvalidate(t *testing.T) {
	c := NewMemory(0, nil)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "a1"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put(ctx, "a1", sampleListings())
	got, ok := c.Get(ctx, "a1")
	if !ok || len(got) != 2 {
		t.Fatalf("expected hit with 2 listings, got ok=%v len=%d", ok, len(got))
	}

	c.Invalidate(ctx, "a1")
	if _, ok := c.Get(ctx, "a1"); ok {
		t.Error("entry survived invalidation")
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewMemory(0, clock)
	ctx := context.Background()

	c.Put(ctx, "a1", sampleListings())

	now = now.Add(DefaultTTL - time.Second)
	if _, ok := c.Get(ctx, "a1"); !ok {
		t.Fatal("entry expired before TTL")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get(ctx, "a1"); ok {
		t.Error("entry survived TTL expiry")
	}
}

func TestMemoryCopiesEntries(t *testing.T) {
	c := NewMemory(0, nil)
	ctx := context.Background()

	in := sampleListings()
	c.Put(ctx, "a1", in)
	in[0].Title = "mutated"

	got, _ := c.Get(ctx, "a1")
	if got[0].Title == "mutated" {
		t.Error("cache shares backing array with caller")
	}
}
