package oidc

import (
	"context"
	"sync"
	"time"
)

// PendingRequest is the single live authorization request. It is an explicit
// single-slot register: starting a new login overwrites the previous one,
// and a callback consumes it.
//
// The redirect is a genuine cross-process suspension point, so the slot must
// live in durable storage and survive a process restart.
type PendingRequest struct {
	State        string    `json:"state"`
	Nonce        string    `json:"nonce"`
	CodeVerifier string    `json:"code_verifier,omitempty"`
	ReturnURL    string    `json:"return_url"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
}

// PendingRequestStore is the durable port behind the single-slot register.
// Get returns (nil, nil) when the slot is empty.
type PendingRequestStore interface {
	Put(ctx context.Context, request *PendingRequest) error
	Get(ctx context.Context) (*PendingRequest, error)
	Clear(ctx context.Context) error
}

// MemoryPendingStore keeps the slot in memory, for tests and non-durable
// hosts.
type MemoryPendingStore struct {
	mu      sync.Mutex
	request *PendingRequest
}

func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{}
}

func (m *MemoryPendingStore) Put(ctx context.Context, request *PendingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *request
	m.request = &clone
	return nil
}

func (m *MemoryPendingStore) Get(ctx context.Context) (*PendingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.request == nil {
		return nil, nil
	}
	clone := *m.request
	return &clone, nil
}

func (m *MemoryPendingStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.request = nil
	return nil
}

var _ PendingRequestStore = (*MemoryPendingStore)(nil)
