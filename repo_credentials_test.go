package adminauth_test

import (
	"context"
	"testing"
	"time"

	adminauth "github.com/goliatone/go-admin-auth"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTokensReplaceKeepsOneLiveToken(t *testing.T) {
	ctx := context.Background()

	db, err := adminauth.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, adminauth.Migrate(ctx, db))

	tokens := adminauth.NewResetTokensRepository(db)

	require.NoError(t, tokens.Replace(ctx, &adminauth.ResetToken{
		Token:     "token-1",
		Email:     "Jane@Example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	got, err := tokens.GetByToken(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)

	require.NoError(t, tokens.Replace(ctx, &adminauth.ResetToken{
		Token:     "token-2",
		Email:     "jane@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	// replacing revokes the prior token
	_, err = tokens.GetByToken(ctx, "token-1")
	assert.True(t, repository.IsRecordNotFound(err))

	count, err := db.NewSelect().
		Model((*adminauth.ResetToken)(nil)).
		Where("email = ?", "jane@example.com").
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "at most one live token per email")
}
