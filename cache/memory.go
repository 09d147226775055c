package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store with no eviction and no size bound.
// Entries live until the process exits or Clear is called.
type Memory[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]
	now     func() time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{
		entries: make(map[string]Entry[V]),
		now:     time.Now,
	}
}

// Get implements Reader
func (m *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e.Value, ok
}

// Has implements Reader
func (m *Memory[V]) Has(_ context.Context, key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key]
	return ok
}

// Set implements Writer
func (m *Memory[V]) Set(_ context.Context, key string, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry[V]{Key: key, Value: value, CreatedAt: m.now()}
	return nil
}

// Entry returns the full entry for key, including its creation time
func (m *Memory[V]) Entry(key string) (Entry[V], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok
}

// Len returns the number of cached entries
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear drops every entry. Used when a session ends.
func (m *Memory[V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry[V])
}
