package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"wordbreaker/internal/game"
)

type memoryEntry struct {
	data  []byte
	saved time.Time
}

// MemoryStore keeps snapshots in process memory. Snapshots are stored encoded so
// callers never share slices with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	maxAge  time.Duration
}

func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), maxAge: maxAge}
}

func (m *MemoryStore) Save(_ context.Context, id string, st game.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{data: data, saved: time.Now()}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (game.State, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok || expired(e.saved, m.maxAge) {
		return game.State{}, ErrNotFound
	}
	st, err := game.Decode(e.data)
	if err != nil {
		m.Delete(context.Background(), id)
		return game.State{}, ErrNotFound
	}
	return st, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *MemoryStore) Cleanup(_ context.Context, maxAge time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.entries {
		if time.Since(e.saved) > maxAge {
			delete(m.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) Close() error { return nil }
