package adminauth

import (
	"context"
	"sync"
)

// MemorySessionStorage is the in-memory SessionStorage used in tests and in
// hosts that do not need durability.
type MemorySessionStorage struct {
	mu      sync.Mutex
	payload []byte
}

func NewMemorySessionStorage() *MemorySessionStorage {
	return &MemorySessionStorage{}
}

func (m *MemorySessionStorage) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payload == nil {
		return nil, nil
	}
	out := make([]byte, len(m.payload))
	copy(out, m.payload)
	return out, nil
}

func (m *MemorySessionStorage) Save(ctx context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = make([]byte, len(payload))
	copy(m.payload, payload)
	return nil
}

func (m *MemorySessionStorage) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = nil
	return nil
}

var _ SessionStorage = (*MemorySessionStorage)(nil)
