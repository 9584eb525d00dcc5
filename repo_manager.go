package adminauth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() repository.Repository[*User]
	Persons() repository.Repository[*Person]
	Identities() DigitalIdentities
	Credentials() EmailCredentials
	ResetTokens() ResetTokens
}

func NewUsersRepository(db *bun.DB) repository.Repository[*User] {
	handlers := repository.ModelHandlers[*User]{
		NewRecord: func() *User {
			return &User{}
		},
		GetID: func(record *User) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *User, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
	}
	return repository.NewRepository(db, handlers)
}

func NewPersonsRepository(db *bun.DB) repository.Repository[*Person] {
	handlers := repository.ModelHandlers[*Person]{
		NewRecord: func() *Person {
			return &Person{}
		},
		GetID: func(record *Person) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Person, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "user_id"
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db          *bun.DB
	users       repository.Repository[*User]
	persons     repository.Repository[*Person]
	identities  DigitalIdentities
	credentials EmailCredentials
	resetTokens ResetTokens
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:          db,
		users:       NewUsersRepository(db),
		persons:     NewPersonsRepository(db),
		identities:  NewDigitalIdentitiesRepository(db),
		credentials: NewEmailCredentialsRepository(db),
		resetTokens: NewResetTokensRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.persons == nil {
		return errors.New("repository persons should be initialized")
	}

	if m.identities == nil {
		return errors.New("repository identities should be initialized")
	}

	if m.credentials == nil {
		return errors.New("repository credentials should be initialized")
	}

	if m.resetTokens == nil {
		return errors.New("repository resetTokens should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() repository.Repository[*User] {
	return m.users
}

func (m mngr) Persons() repository.Repository[*Person] {
	return m.persons
}

func (m mngr) Identities() DigitalIdentities {
	return m.identities
}

func (m mngr) Credentials() EmailCredentials {
	return m.credentials
}

func (m mngr) ResetTokens() ResetTokens {
	return m.resetTokens
}
