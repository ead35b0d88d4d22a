package accounts

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-memory Store. It is safe for concurrent use and
// intended primarily for testing. Records round-trip through the same
// msgpack codec as the production store so encoding bugs surface in
// tests too.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, address string) (*Record, error) {
	m.mu.RLock()
	data, ok := m.data[address]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeRecord(data)
}

func (m *Memory) Put(_ context.Context, rec *Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[rec.Address] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, address string) error {
	m.mu.Lock()
	delete(m.data, address)
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	addresses := make([]string, 0, len(m.data))
	for a := range m.data {
		addresses = append(addresses, a)
	}
	m.mu.RUnlock()
	sort.Strings(addresses)
	return addresses, nil
}

func (m *Memory) Close() error {
	return nil
}
