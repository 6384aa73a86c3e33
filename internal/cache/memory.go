package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ignite/trader-link/internal/domain"
)

// Memory is a mutex-guarded map resolution cache for single-process
// deployments and tests. Expiry is checked lazily on read.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	listings  []domain.ListingSummary
	expiresAt time.Time
}

// NewMemory creates an in-memory resolution cache. ttl <= 0 uses
// DefaultTTL; a nil clock falls back to time.Now.
func NewMemory(ttl time.Duration, now func() time.Time) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Memory{entries: make(map[string]memoryEntry), ttl: ttl, now: now}
}

func (c *Memory) Get(_ context.Context, accountID string) ([]domain.ListingSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[accountID]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, accountID)
		return nil, false
	}
	out := make([]domain.ListingSummary, len(e.listings))
	copy(out, e.listings)
	return out, true
}

func (c *Memory) Put(_ context.Context, accountID string, listings []domain.ListingSummary) {
	cp := make([]domain.ListingSummary, len(listings))
	copy(cp, listings)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[accountID] = memoryEntry{listings: cp, expiresAt: c.now().Add(c.ttl)}
}

func (c *Memory) Invalidate(_ context.Context, accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, accountID)
}
