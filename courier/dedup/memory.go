package dedup

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. Entries expire after the configured TTL;
// expired entries are swept lazily on access.
type Memory struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemory creates an in-memory store. A zero ttl keeps entries forever.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]time.Time),
	}
}

// Seen reports whether the key was marked and has not expired.
func (m *Memory) Seen(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep()
	_, ok := m.entries[key]
	return ok, nil
}

// MarkProcessed records the key.
func (m *Memory) MarkProcessed(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = time.Now()
	return nil
}

// sweep removes expired entries. Caller holds the lock.
func (m *Memory) sweep() {
	if m.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-m.ttl)
	for key, marked := range m.entries {
		if marked.Before(cutoff) {
			delete(m.entries, key)
		}
	}
}
