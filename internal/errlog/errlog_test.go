package errlog

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	t := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestRecordAndRecent(t *testing.T) {
	l := NewLog(3, fixedClock())

	l.Record("connect", "listing missing")
	l.Record("notify", "smtp timeout")

	if got := l.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	entries := l.Recent(0)
	if len(entries) != 2 {
		t.Fatalf("Recent(0) returned %d entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Op != "notify" || entries[1].Op != "connect" {
		t.Errorf("unexpected order: %q then %q", entries[0].Op, entries[1].Op)
	}
}

func TestRingEviction(t *testing.T) {
	l := NewLog(3, fixedClock())
	for i := 0; i < 5; i++ {
		l.Record("op", fmt.Sprintf("err-%d", i))
	}

	if got := l.Len(); got != 3 {
		t.Fatalf("Len() = %d, want capacity 3", got)
	}
	entries := l.Recent(0)
	want := []string{"err-4", "err-3", "err-2"}
	for i, w := range want {
		if entries[i].Message != w {
			t.Errorf("entries[%d].Message = %q, want %q", i, entries[i].Message, w)
		}
	}
}

func TestRecentLimit(t *testing.T) {
	l := NewLog(10, fixedClock())
	for i := 0; i < 6; i++ {
		l.Record("op", fmt.Sprintf("err-%d", i))
	}
	if got := len(l.Recent(2)); got != 2 {
		t.Errorf("Recent(2) returned %d entries", got)
	}
	if got := len(l.Recent(100)); got != 6 {
		t.Errorf("Recent(100) returned %d entries, want 6", got)
	}
}

func TestConcurrentRecord(t *testing.T) {
	l := NewLog(50, nil)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				l.Record("op", fmt.Sprintf("g%d-%d", n, j))
			}
		}(i)
	}
	wg.Wait()
	if got := l.Len(); got != 50 {
		t.Errorf("Len() = %d, want 50 after overflow", got)
	}
}
