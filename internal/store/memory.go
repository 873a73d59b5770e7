package store

import (
	"context"
	"errors"
	"sync"
)

// MemoryKV is an in-memory [KVStore] for tests and throwaway sessions.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte

	// FailPuts makes every Put return FailErr, simulating a broken durable
	// store. Used to verify best-effort persistence paths.
	FailPuts bool
	FailErr  error
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPuts {
		if m.FailErr != nil {
			return m.FailErr
		}
		return errors.New("kv put failed")
	}

	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
