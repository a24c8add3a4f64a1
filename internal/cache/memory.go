package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps entries in process memory and drops them lazily once stale.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]Entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (Entry, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[userID]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}

	if !entry.Fresh(m.now(), m.ttl) {
		m.mu.Lock()
		if current, ok := m.entries[userID]; ok && current.FetchedAt.Equal(entry.FetchedAt) {
			delete(m.entries, userID)
		}
		m.mu.Unlock()
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (m *MemoryStore) Set(_ context.Context, userID int64, entry Entry) error {
	m.mu.Lock()
	m.entries[userID] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
