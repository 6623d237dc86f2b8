package kv

import (
	"context"
	"sync"
)

// MemoryStorage is an in-process Storage. Nothing survives the process.
// It also supports fault injection so callers can exercise their failure
// paths without a real backend.
type MemoryStorage struct {
	mu     sync.Mutex
	data   map[string]string
	closed bool

	getErr error
	setErr error
	gate   chan struct{}

	gets int
	sets int
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

// Get returns the value for key.
func (m *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.closed {
		return "", false, ErrClosed
	}
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemoryStorage) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.closed {
		return ErrClosed
	}
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

// Close marks the storage closed.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Put seeds a value directly, bypassing fault injection and counters.
func (m *MemoryStorage) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Value returns the stored value without touching counters.
func (m *MemoryStorage) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// FailGets makes every subsequent Get return err. A nil err clears it.
func (m *MemoryStorage) FailGets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// FailSets makes every subsequent Set return err. A nil err clears it.
func (m *MemoryStorage) FailSets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}

// HoldGets blocks Get calls until the returned release func is called.
func (m *MemoryStorage) HoldGets() (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gate = gate
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			if m.gate == gate {
				m.gate = nil
			}
			m.mu.Unlock()
			close(gate)
		})
	}
}

// Stats returns the number of Get and Set calls observed.
func (m *MemoryStorage) Stats() (gets, sets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets, m.sets
}
