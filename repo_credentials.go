package adminauth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EmailCredentials stores the password material and lockout counters for
// local accounts, keyed by case-insensitive email.
type EmailCredentials interface {
	GetByEmail(ctx context.Context, email string) (*EmailCredential, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*EmailCredential, error)
	Create(ctx context.Context, record *EmailCredential) (*EmailCredential, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *EmailCredential) (*EmailCredential, error)
	// Update persists the mutable credential columns. Zero values are written
	// too, so a cleared lockout really clears.
	Update(ctx context.Context, record *EmailCredential) error
	UpdateTx(ctx context.Context, tx bun.IDB, record *EmailCredential) error
}

type emailCredentials struct {
	db *bun.DB
}

func NewEmailCredentialsRepository(db *bun.DB) EmailCredentials {
	return &emailCredentials{db: db}
}

func (r *emailCredentials) GetByEmail(ctx context.Context, email string) (*EmailCredential, error) {
	return r.GetByEmailTx(ctx, r.db, email)
}

func (r *emailCredentials) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*EmailCredential, error) {
	record := &EmailCredential{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": NormalizeEmail(email),
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *emailCredentials) Create(ctx context.Context, record *EmailCredential) (*EmailCredential, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *emailCredentials) CreateTx(ctx context.Context, tx bun.IDB, record *EmailCredential) (*EmailCredential, error) {
	record.Email = NormalizeEmail(record.Email)
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *emailCredentials) Update(ctx context.Context, record *EmailCredential) error {
	return r.UpdateTx(ctx, r.db, record)
}

func (r *emailCredentials) UpdateTx(ctx context.Context, tx bun.IDB, record *EmailCredential) error {
	// NOTE: column list is explicit so zeroed counters and NULLed lockouts
	// are written instead of being skipped by the ORM.
	_, err := tx.NewUpdate().
		Model(record).
		Column("password_hash", "salt", "failed_attempts", "locked_until", "last_changed_at").
		WherePK().
		Exec(ctx)

	return err
}

// DigitalIdentities links users to the providers they can authenticate with.
type DigitalIdentities interface {
	repository.Repository[*DigitalIdentity]
	ListByUser(ctx context.Context, userID string) ([]*DigitalIdentity, error)
	ListByUserTx(ctx context.Context, tx bun.IDB, userID string) ([]*DigitalIdentity, error)
}

type digitalIdentities struct {
	repository.Repository[*DigitalIdentity]
	db *bun.DB
}

func NewDigitalIdentitiesRepository(db *bun.DB) DigitalIdentities {
	repo := repository.NewRepository[*DigitalIdentity](db, repository.ModelHandlers[*DigitalIdentity]{
		NewRecord: func() *DigitalIdentity { return &DigitalIdentity{} },
		GetID: func(record *DigitalIdentity) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *DigitalIdentity, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
	})

	return &digitalIdentities{
		Repository: repo,
		db:         db,
	}
}

func (r *digitalIdentities) ListByUser(ctx context.Context, userID string) ([]*DigitalIdentity, error) {
	return r.ListByUserTx(ctx, r.db, userID)
}

func (r *digitalIdentities) ListByUserTx(ctx context.Context, tx bun.IDB, userID string) ([]*DigitalIdentity, error) {
	var records []*DigitalIdentity
	err := tx.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*DigitalIdentity{}, nil
		}
		return nil, err
	}

	return records, nil
}

// ResetTokens holds at most one live password reset token per email.
type ResetTokens interface {
	GetByToken(ctx context.Context, token string) (*ResetToken, error)
	// Replace removes any prior token for the record's email before storing
	// the new one, keeping the one-live-token-per-email invariant.
	Replace(ctx context.Context, record *ResetToken) error
	ReplaceTx(ctx context.Context, tx bun.IDB, record *ResetToken) error
	Delete(ctx context.Context, token string) error
	DeleteTx(ctx context.Context, tx bun.IDB, token string) error
}

type resetTokens struct {
	db *bun.DB
}

func NewResetTokensRepository(db *bun.DB) ResetTokens {
	return &resetTokens{db: db}
}

func (r *resetTokens) GetByToken(ctx context.Context, token string) (*ResetToken, error) {
	record := &ResetToken{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (r *resetTokens) Replace(ctx context.Context, record *ResetToken) error {
	// delete and insert must land together; a crash between them would
	// leave the email without a live token
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return r.ReplaceTx(ctx, tx, record)
	})
}

func (r *resetTokens) ReplaceTx(ctx context.Context, tx bun.IDB, record *ResetToken) error {
	record.Email = NormalizeEmail(record.Email)

	if _, err := tx.NewDelete().
		Model((*ResetToken)(nil)).
		Where("email = ?", record.Email).
		Exec(ctx); err != nil {
		return err
	}

	_, err := tx.NewInsert().Model(record).Exec(ctx)
	return err
}

func (r *resetTokens) Delete(ctx context.Context, token string) error {
	return r.DeleteTx(ctx, r.db, token)
}

func (r *resetTokens) DeleteTx(ctx context.Context, tx bun.IDB, token string) error {
	_, err := tx.NewDelete().
		Model((*ResetToken)(nil)).
		Where("token = ?", token).
		Exec(ctx)
	return err
}
