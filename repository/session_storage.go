package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	adminauth "github.com/goliatone/go-admin-auth"
	"github.com/uptrace/bun"
)

// sessionSlotKey identifies the single session row. The subsystem holds at
// most one interactive session at a time.
const sessionSlotKey = "current"

// SessionRecord is the Bun model for the persisted session snapshot.
type SessionRecord struct {
	bun.BaseModel `bun:"table:auth_sessions"`

	Key       string    `bun:"key,pk"`
	Payload   []byte    `bun:"payload,notnull"`
	UpdatedAt time.Time `bun:"updated_at,default:current_timestamp"`
}

// SessionStorage persists the serialized session snapshot in a single keyed
// row, surviving process restarts.
type SessionStorage struct {
	db *bun.DB
}

// NewSessionStorage creates a bun backed session storage.
func NewSessionStorage(db *bun.DB) *SessionStorage {
	return &SessionStorage{db: db}
}

// Load returns the persisted snapshot, or (nil, nil) when none exists.
func (s *SessionStorage) Load(ctx context.Context) ([]byte, error) {
	record := new(SessionRecord)
	err := s.db.NewSelect().
		Model(record).
		Where("key = ?", sessionSlotKey).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record.Payload, nil
}

// Save upserts the snapshot row.
func (s *SessionStorage) Save(ctx context.Context, payload []byte) error {
	record := &SessionRecord{
		Key:       sessionSlotKey,
		Payload:   payload,
		UpdatedAt: time.Now(),
	}

	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	return err
}

// Delete removes the snapshot row. Deleting a missing row is not an error.
func (s *SessionStorage) Delete(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*SessionRecord)(nil)).
		Where("key = ?", sessionSlotKey).
		Exec(ctx)
	return err
}

var _ adminauth.SessionStorage = (*SessionStorage)(nil)
