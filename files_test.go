package adminauth_test

import (
	"context"
	"io/fs"
	"testing"

	adminauth "github.com/goliatone/go-admin-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMigrationsFSExposesUpScripts(t *testing.T) {
	entries, err := fs.ReadDir(adminauth.GetMigrationsFS(), "data/sql/migrations")
	require.NoError(t, err)

	names := []string{}
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	assert.Contains(t, names, "00001_authentication_schema.up.sql")
}

func TestMigrateAppliesEmbeddedSchema(t *testing.T) {
	ctx := context.Background()

	db, err := adminauth.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, adminauth.Migrate(ctx, db))
	// applied migrations are tracked, a second run is a no-op
	require.NoError(t, adminauth.Migrate(ctx, db))

	tables := []string{}
	err = db.NewSelect().
		ColumnExpr("name").
		TableExpr("sqlite_master").
		Where("type = 'table'").
		Scan(ctx, &tables)
	require.NoError(t, err)

	for _, table := range []string{
		"users",
		"persons",
		"digital_identities",
		"email_credentials",
		"reset_tokens",
		"auth_sessions",
		"auth_requests",
	} {
		assert.Contains(t, tables, table)
	}
}
