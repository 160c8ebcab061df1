package rolecache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryCache is a TTL cache for tests and single-process deployments.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[uuid.UUID]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

// NewMemory constructs an in-memory role cache with the given freshness window.
func NewMemory(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[uuid.UUID]memoryEntry),
		now:     time.Now,
	}
}

// WithClock overrides the clock, letting tests age entries deterministically.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(_ context.Context, userID uuid.UUID) (*Entry, bool) {
	c.mu.RLock()
	stored, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(stored.expiresAt) {
		c.mu.Lock()
		delete(c.entries, userID)
		c.mu.Unlock()
		return nil, false
	}
	copied := stored.entry
	return &copied, true
}

func (c *MemoryCache) Set(_ context.Context, userID uuid.UUID, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = memoryEntry{entry: *entry, expiresAt: c.now().Add(c.ttl)}
}

func (c *MemoryCache) Invalidate(_ context.Context, userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Verify interface is satisfied.
var _ Cache = (*MemoryCache)(nil)
