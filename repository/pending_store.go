package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-admin-auth/oidc"
	"github.com/uptrace/bun"
)

// requestSlotKey identifies the single pending request row. Starting a new
// login overwrites it, abandoning any handshake already in flight.
const requestSlotKey = "current"

// PendingRequestRecord is the Bun model for the in-flight authorization
// request.
type PendingRequestRecord struct {
	bun.BaseModel `bun:"table:auth_requests"`

	Key          string    `bun:"key,pk"`
	State        string    `bun:"state,notnull"`
	Nonce        string    `bun:"nonce,notnull"`
	CodeVerifier string    `bun:"code_verifier"`
	ReturnURL    string    `bun:"return_url"`
	Provider     string    `bun:"provider,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

// PendingRequestStore persists the single-slot pending request so the
// callback can complete the handshake after a process restart.
type PendingRequestStore struct {
	db *bun.DB
}

// NewPendingRequestStore creates a bun backed pending request store.
func NewPendingRequestStore(db *bun.DB) *PendingRequestStore {
	return &PendingRequestStore{db: db}
}

// Put upserts the slot with the given request.
func (s *PendingRequestStore) Put(ctx context.Context, request *oidc.PendingRequest) error {
	record := &PendingRequestRecord{
		Key:          requestSlotKey,
		State:        request.State,
		Nonce:        request.Nonce,
		CodeVerifier: request.CodeVerifier,
		ReturnURL:    request.ReturnURL,
		Provider:     request.Provider,
		CreatedAt:    request.CreatedAt,
	}

	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("state = EXCLUDED.state").
		Set("nonce = EXCLUDED.nonce").
		Set("code_verifier = EXCLUDED.code_verifier").
		Set("return_url = EXCLUDED.return_url").
		Set("provider = EXCLUDED.provider").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)

	return err
}

// Get returns the pending request, or (nil, nil) when the slot is empty.
func (s *PendingRequestStore) Get(ctx context.Context) (*oidc.PendingRequest, error) {
	record := new(PendingRequestRecord)
	err := s.db.NewSelect().
		Model(record).
		Where("key = ?", requestSlotKey).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &oidc.PendingRequest{
		State:        record.State,
		Nonce:        record.Nonce,
		CodeVerifier: record.CodeVerifier,
		ReturnURL:    record.ReturnURL,
		Provider:     record.Provider,
		CreatedAt:    record.CreatedAt,
	}, nil
}

// Clear empties the slot. Clearing an empty slot is not an error.
func (s *PendingRequestStore) Clear(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*PendingRequestRecord)(nil)).
		Where("key = ?", requestSlotKey).
		Exec(ctx)
	return err
}

var _ oidc.PendingRequestStore = (*PendingRequestStore)(nil)
