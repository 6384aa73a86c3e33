// Package errlog keeps a bounded in-memory ring of recent operational
// errors so operators can diagnose partial failures (failed credential
// mails, failed connects) without trawling process logs.
package errlog

import (
	"sync"
	"time"
)

// DefaultCapacity is the ring size used when NewLog is given a
// non-positive capacity.
const DefaultCapacity = 100

// Entry is one recorded operational error.
type Entry struct {
	Time    time.Time `json:"time"`
	Op      string    `json:"op"`
	Message string    `json:"message"`
}

// Log is a fixed-capacity ring buffer of Entry values. Once full, each
// Record overwrites the oldest entry. Safe for concurrent use.
type Log struct {
	mu    sync.Mutex
	ring  []Entry
	next  int
	count int
	now   func() time.Time
}

// NewLog creates a Log holding at most capacity entries. The clock is
// injectable for tests; pass nil for time.Now.
func NewLog(capacity int, now func() time.Time) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if now == nil {
		now = time.Now
	}
	return &Log{ring: make([]Entry, capacity), now: now}
}

// Record appends an error entry, evicting the oldest when full.
func (l *Log) Record(op, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring[l.next] = Entry{Time: l.now().UTC(), Op: op, Message: message}
	l.next = (l.next + 1) % len(l.ring)
	if l.count < len(l.ring) {
		l.count++
	}
}

// Recent returns up to n entries, newest first. n <= 0 means all retained.
func (l *Log) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > l.count {
		n = l.count
	}
	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (l.next - i + len(l.ring)) % len(l.ring)
		out = append(out, l.ring[idx])
	}
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
