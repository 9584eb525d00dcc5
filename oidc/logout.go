package oidc

import (
	"context"
	"net/url"

	adminauth "github.com/goliatone/go-admin-auth"
)

// LogoutCoordinator tears down the local session and optionally hands the
// caller an IdP logout URL for a full-page redirect.
type LogoutCoordinator struct {
	registry *Registry
	sessions *adminauth.SessionStore
	pending  PendingRequestStore
	revoker  Revoker
	logger   adminauth.Logger
}

// NewLogoutCoordinator creates a logout coordinator. revoker may be nil when
// the deployment has no revocation endpoint.
func NewLogoutCoordinator(
	registry *Registry,
	sessions *adminauth.SessionStore,
	pending PendingRequestStore,
	revoker Revoker,
	logger adminauth.Logger,
) *LogoutCoordinator {
	if logger == nil {
		logger = adminauth.NewDefaultLogger()
	}
	return &LogoutCoordinator{
		registry: registry,
		sessions: sessions,
		pending:  pending,
		revoker:  revoker,
		logger:   logger,
	}
}

// Logout clears the session and pending request. IdP-side revocation is
// best effort: a failure is logged and never blocks local cleanup. The
// returned URL is empty when the caller should route to the local
// signed-out page.
func (lc *LogoutCoordinator) Logout(ctx context.Context, revokeWithIdP bool) (string, error) {
	session := lc.sessions.Current()

	var provider ProviderConfig
	haveProvider := false
	if session.User != nil && session.User.Provider != "" {
		if cfg, err := lc.registry.Enabled(session.User.Provider); err == nil {
			provider = cfg
			haveProvider = true
		}
	}

	if lc.revoker != nil && haveProvider && session.Tokens != nil {
		if err := lc.revoker.Revoke(ctx, session.Tokens, provider); err != nil {
			lc.logger.Error("token revocation failed, continuing logout: %v", err)
		}
	}

	if err := lc.sessions.Clear(ctx); err != nil {
		return "", err
	}

	if lc.pending != nil {
		if err := lc.pending.Clear(ctx); err != nil {
			lc.logger.Error("failed to clear pending request: %v", err)
		}
	}

	if revokeWithIdP && haveProvider && provider.LogoutURL != "" {
		params := url.Values{}
		if provider.PostLogoutRedirectURI != "" {
			params.Set("post_logout_redirect_uri", provider.PostLogoutRedirectURI)
		}
		target := provider.LogoutURL
		if encoded := params.Encode(); encoded != "" {
			target += "?" + encoded
		}
		return target, nil
	}

	return "", nil
}
