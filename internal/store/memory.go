package store

import (
	"sort"
	"sync"
)

// Memory is an in-process key-value store. Nothing survives the process.
type Memory struct {
	mu       sync.Mutex
	values   map[string]string
	revision int64
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the value for key and whether it exists.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.revision++
	return nil
}

// Remove deletes the given keys.
func (m *Memory) Remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	m.revision++
	return nil
}

// Replace applies set and remove under one lock.
func (m *Memory) Replace(set map[string]string, remove ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range set {
		m.values[k] = v
	}
	for _, k := range remove {
		delete(m.values, k)
	}
	m.revision++
	return nil
}

// Revision returns a counter that increases on every write.
func (m *Memory) Revision() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision, nil
}

// Keys returns all stored keys, sorted.
func (m *Memory) Keys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
