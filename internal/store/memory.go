package store

import (
	"context"
	"sync"
)

// Memory is a map-backed Store. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string]int
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]int)}
}

// Fetch returns the value for key, or ErrNotFound.
func (m *Memory) Fetch(ctx context.Context, key string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return 0, ErrNotFound
	}
	return v, nil
}

// Save stores value under key, replacing any previous value.
func (m *Memory) Save(ctx context.Context, key string, value int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
