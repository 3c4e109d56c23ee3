package store

import (
	"sync"
	"time"
)

// MemoryCache is an in-process ResultCache.
type MemoryCache struct {
	mu     sync.RWMutex
	data   map[string]Entry
	closed bool
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]Entry)}
}

// Get returns the entry stored under key.
func (m *MemoryCache) Get(key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Entry{}, false, ErrClosed
	}
	e, ok := m.data[key]
	return e, ok, nil
}

// Put stores e under key.
func (m *MemoryCache) Put(key string, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[key] = e
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Close drops all entries. Later calls return ErrClosed.
func (m *MemoryCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
	return nil
}

var (
	_ ResultCache = (*Cache)(nil)
	_ ResultCache = (*RedisCache)(nil)
	_ ResultCache = (*MemoryCache)(nil)
)
