package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryEntry struct {
	blob      []byte
	updatedAt time.Time
}

// Memory keeps sessions in process memory. Useful for tests and for hosts
// that only need to survive a soft restart of the UI.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]memoryEntry)}
}

func (m *Memory) Save(_ context.Context, hostID string, blob []byte) error {
	if err := validHostID(hostID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[hostID] = memoryEntry{
		blob:      append([]byte(nil), blob...),
		updatedAt: time.Now().UTC(),
	}
	return nil
}

func (m *Memory) Load(_ context.Context, hostID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[hostID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.blob...), nil
}

func (m *Memory) Delete(_ context.Context, hostID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[hostID]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, hostID)
	return nil
}

func (m *Memory) List(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.sessions))
	for id, e := range m.sessions {
		out = append(out, Record{HostID: id, Size: len(e.blob), UpdatedAt: e.updatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HostID < out[j].HostID })
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
