package oidc_test

import (
	"context"
	"testing"
	"time"

	adminauth "github.com/goliatone/go-admin-auth"
	"github.com/goliatone/go-admin-auth/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRevoker struct {
	err   error
	calls int
}

func (s *stubRevoker) Revoke(ctx context.Context, tokens *adminauth.TokenSet, provider oidc.ProviderConfig) error {
	s.calls++
	return s.err
}

func logoutProvider() oidc.ProviderConfig {
	provider := googleProvider()
	provider.LogoutURL = "https://accounts.google.com/logout"
	provider.PostLogoutRedirectURI = "http://localhost:8080/signed-out"
	return provider
}

func authenticatedStore(t *testing.T) *adminauth.SessionStore {
	t.Helper()

	sessions := adminauth.NewSessionStore(adminauth.NewMemorySessionStorage(), nil)
	now := time.Now()
	require.NoError(t, sessions.Replace(context.Background(), adminauth.AuthSession{
		IsAuthenticated: true,
		User: &adminauth.AuthenticatedUser{
			ID:       "user-1",
			Email:    "jane@example.com",
			Provider: "google",
		},
		Tokens: &adminauth.TokenSet{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			ExpiresAt:    now.Add(time.Hour),
		},
		SessionStartedAt: &now,
		LastActivityAt:   &now,
	}))
	return sessions
}

func TestLogoutLocalOnly(t *testing.T) {
	ctx := context.Background()
	sessions := authenticatedStore(t)
	revoker := &stubRevoker{}
	pending := oidc.NewMemoryPendingStore()
	require.NoError(t, pending.Put(ctx, &oidc.PendingRequest{State: "stale", Provider: "google"}))

	coordinator := oidc.NewLogoutCoordinator(oidc.NewRegistry(logoutProvider()), sessions, pending, revoker, nil)

	redirectURL, err := coordinator.Logout(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, redirectURL, "without IdP logout the caller lands locally")

	assert.Equal(t, 1, revoker.calls)
	assert.False(t, sessions.Current().IsAuthenticated)

	cleared, err := pending.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, cleared, "logout abandons any in-flight handshake")
}

func TestLogoutWithIdPRedirect(t *testing.T) {
	ctx := context.Background()
	sessions := authenticatedStore(t)

	coordinator := oidc.NewLogoutCoordinator(
		oidc.NewRegistry(logoutProvider()), sessions, oidc.NewMemoryPendingStore(), &stubRevoker{}, nil)

	redirectURL, err := coordinator.Logout(ctx, true)
	require.NoError(t, err)

	assert.Equal(t,
		"https://accounts.google.com/logout?post_logout_redirect_uri=http%3A%2F%2Flocalhost%3A8080%2Fsigned-out",
		redirectURL)
	assert.False(t, sessions.Current().IsAuthenticated)
}

func TestLogoutRevocationFailureDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	sessions := authenticatedStore(t)
	revoker := &stubRevoker{err: oidc.ErrRevocationFailed}

	coordinator := oidc.NewLogoutCoordinator(
		oidc.NewRegistry(logoutProvider()), sessions, oidc.NewMemoryPendingStore(), revoker, nil)

	redirectURL, err := coordinator.Logout(ctx, true)
	require.NoError(t, err, "revocation failures are best effort")
	assert.NotEmpty(t, redirectURL)
	assert.False(t, sessions.Current().IsAuthenticated)
}

func TestLogoutWithoutSession(t *testing.T) {
	ctx := context.Background()
	sessions := adminauth.NewSessionStore(adminauth.NewMemorySessionStorage(), nil)
	revoker := &stubRevoker{}

	coordinator := oidc.NewLogoutCoordinator(
		oidc.NewRegistry(logoutProvider()), sessions, oidc.NewMemoryPendingStore(), revoker, nil)

	redirectURL, err := coordinator.Logout(ctx, true)
	require.NoError(t, err)

	assert.Empty(t, redirectURL, "no provider on record, so no IdP logout URL")
	assert.Zero(t, revoker.calls)
}

func TestLogoutProviderWithoutLogoutURL(t *testing.T) {
	ctx := context.Background()
	sessions := authenticatedStore(t)

	coordinator := oidc.NewLogoutCoordinator(
		oidc.NewRegistry(googleProvider()), sessions, oidc.NewMemoryPendingStore(), &stubRevoker{}, nil)

	redirectURL, err := coordinator.Logout(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, redirectURL)
}
