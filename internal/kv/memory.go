package kv

import (
	"slices"
	"sync"
)

// Memory is an in-process Store. Values are copied in and out.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = slices.Clone(value)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error { return nil }

// Nop is the Store used when no storage medium is available: reads find
// nothing and writes are dropped.
type Nop struct{}

func (Nop) Get(string) ([]byte, error) { return nil, ErrNotFound }
func (Nop) Set(string, []byte) error   { return nil }
func (Nop) Delete(string) error        { return nil }
func (Nop) Close() error               { return nil }
