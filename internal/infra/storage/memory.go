package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemorySlotStore keeps slots in process memory. Used by tests and the soak runner.
type MemorySlotStore struct {
	mu      sync.RWMutex
	slots   map[string][]byte
	updated map[string]time.Time
}

func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{
		slots:   make(map[string][]byte),
		updated: make(map[string]time.Time),
	}
}

func (m *MemorySlotStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (m *MemorySlotStore) Set(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(payload))
	copy(stored, payload)
	m.slots[key] = stored
	m.updated[key] = time.Now()
	return nil
}

func (m *MemorySlotStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, key)
	delete(m.updated, key)
	return nil
}

func (m *MemorySlotStore) List(_ context.Context) ([]SlotInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]SlotInfo, 0, len(m.slots))
	for key, payload := range m.slots {
		infos = append(infos, SlotInfo{Slot: key, Size: len(payload), UpdatedAt: m.updated[key]})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Slot < infos[j].Slot })
	return infos, nil
}
