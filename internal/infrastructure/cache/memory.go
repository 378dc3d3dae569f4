package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Compile-time check.
var _ Store = (*MemoryStore)(nil)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore is a process-local Store. Expired entries are dropped lazily
// on read and on every Set that finds the store over maxEntries.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

// NewMemoryStore creates an in-memory store. maxEntries <= 0 means 10000.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &MemoryStore{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.expires.Equal(e.expires) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: append([]byte(nil), value...)}
	now := m.now()
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.evictLocked(now)
	}
	m.entries[key] = e
	return nil
}

func (m *MemoryStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// evictLocked drops expired entries, then the entry closest to expiry
// if the store is still full.
func (m *MemoryStore) evictLocked(now time.Time) {
	for k, e := range m.entries {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
	if len(m.entries) < m.maxEntries {
		return
	}

	never := now.AddDate(100, 0, 0)
	var victim string
	var soonest time.Time
	for k, e := range m.entries {
		exp := e.expires
		if exp.IsZero() {
			exp = never
		}
		if victim == "" || exp.Before(soonest) {
			victim, soonest = k, exp
		}
	}
	delete(m.entries, victim)
}
