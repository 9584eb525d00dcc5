package adminauth

import (
	"context"
	"embed"
	"io/fs"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// persistenceConfig adapts an already-open handle to the persistence client.
// The client never dials; driver and DSN are informational.
type persistenceConfig struct {
	Driver      string
	DSN         string
	Debug       bool
	PingTimeout time.Duration
}

func (c persistenceConfig) GetDriver() string             { return c.Driver }
func (c persistenceConfig) GetDSN() string                { return c.DSN }
func (c persistenceConfig) GetServer() string             { return "" }
func (c persistenceConfig) GetDatabase() string           { return "" }
func (c persistenceConfig) GetUsername() string           { return "" }
func (c persistenceConfig) GetPassword() string           { return "" }
func (c persistenceConfig) GetDebug() bool                { return c.Debug }
func (c persistenceConfig) GetPingTimeout() time.Duration { return c.PingTimeout }
func (c persistenceConfig) GetOtelIdentifier() string     { return "" }

// Migrate applies the embedded migrations through the persistence client.
// Applied migrations are tracked in the ledger, so repeated calls are safe.
func Migrate(ctx context.Context, db *bun.DB) error {
	persistence.RegisterModel((*User)(nil))
	persistence.RegisterModel((*Person)(nil))
	persistence.RegisterModel((*DigitalIdentity)(nil))
	persistence.RegisterModel((*EmailCredential)(nil))
	persistence.RegisterModel((*ResetToken)(nil))

	client, err := persistence.New(persistenceConfig{
		Driver:      "sqlite",
		PingTimeout: 5 * time.Second,
	}, db.DB, db.Dialect())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create persistence client")
	}

	migrations, err := fs.Sub(GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mount embedded migrations")
	}

	client.RegisterDialectMigrations(
		migrations,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("sqlite"),
	)

	if err := client.Migrate(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to apply migrations")
	}

	return nil
}
