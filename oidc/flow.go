package oidc

import (
	"context"
	"crypto/subtle"
	"net/url"
	"strings"
	"time"

	adminauth "github.com/goliatone/go-admin-auth"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultRequestTTL is the handshake window for a pending authorization
// request. Expiry is checked lazily at the callback, never swept by a timer.
const DefaultRequestTTL = 10 * time.Minute

// AuthRedirect carries the authorization URL the host must navigate to.
// Once the navigation is issued control leaves this process entirely until
// the browser returns through the callback route.
type AuthRedirect struct {
	URL      string
	State    string
	Provider string
}

// FlowManager drives the authorization-code-with-PKCE handshake against the
// configured providers.
type FlowManager struct {
	registry   *Registry
	pending    PendingRequestStore
	sessions   *adminauth.SessionStore
	exchanger  Exchanger
	verifier   IDTokenVerifier
	logger     adminauth.Logger
	requestTTL time.Duration
	now        func() time.Time
}

// FlowOption configures the flow manager.
type FlowOption func(*FlowManager)

// NewFlowManager creates a flow manager.
func NewFlowManager(
	registry *Registry,
	pending PendingRequestStore,
	sessions *adminauth.SessionStore,
	exchanger Exchanger,
	opts ...FlowOption,
) *FlowManager {
	fm := &FlowManager{
		registry:   registry,
		pending:    pending,
		sessions:   sessions,
		exchanger:  exchanger,
		requestTTL: DefaultRequestTTL,
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(fm)
		}
	}

	if fm.logger == nil {
		fm.logger = adminauth.NewDefaultLogger()
	}

	return fm
}

// WithLogger sets the logger.
func WithLogger(logger adminauth.Logger) FlowOption {
	return func(fm *FlowManager) {
		fm.logger = logger
	}
}

// WithIDTokenVerifier enables id_token signature and nonce verification for
// providers that publish a JWKS endpoint.
func WithIDTokenVerifier(verifier IDTokenVerifier) FlowOption {
	return func(fm *FlowManager) {
		fm.verifier = verifier
	}
}

// WithRequestTTL overrides the pending request window.
func WithRequestTTL(ttl time.Duration) FlowOption {
	return func(fm *FlowManager) {
		if ttl > 0 {
			fm.requestTTL = ttl
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) FlowOption {
	return func(fm *FlowManager) {
		if now != nil {
			fm.now = now
		}
	}
}

// Login starts the handshake for a provider. The pending request slot is
// overwritten: issuing a second login implicitly abandons the first.
func (fm *FlowManager) Login(ctx context.Context, providerName, returnURL string) (*AuthRedirect, error) {
	provider, err := fm.registry.Enabled(providerName)
	if err != nil {
		return nil, err
	}

	state, err := GenerateState()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate state")
	}

	nonce, err := GenerateNonce()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate nonce")
	}

	request := &PendingRequest{
		State:     state,
		Nonce:     nonce,
		ReturnURL: returnURL,
		Provider:  provider.Name,
		CreatedAt: fm.now(),
	}

	var pkce *PkceParams
	if provider.UsePKCE {
		if pkce, err = GeneratePkce(); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate pkce parameters")
		}
		request.CodeVerifier = pkce.CodeVerifier
	}

	if err := fm.pending.Put(ctx, request); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist pending request")
	}

	return &AuthRedirect{
		URL:      buildAuthorizeURL(provider, state, nonce, pkce),
		State:    state,
		Provider: provider.Name,
	}, nil
}

// HandleCallback completes the handshake with the code and state returned by
// the IdP. On success the session store is replaced wholesale and the stored
// return URL is handed back for navigation. CSRF and expiry failures always
// abort; there is no degraded-session fallback.
func (fm *FlowManager) HandleCallback(ctx context.Context, code, state string) (string, error) {
	request, err := fm.pending.Get(ctx)
	if err != nil {
		return "", fm.fail(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load pending request"))
	}
	if request == nil {
		return "", fm.fail(ctx, ErrNoPendingRequest)
	}

	if subtle.ConstantTimeCompare([]byte(state), []byte(request.State)) != 1 {
		return "", fm.fail(ctx, ErrInvalidState)
	}

	if fm.now().Sub(request.CreatedAt) > fm.requestTTL {
		return "", fm.fail(ctx, ErrRequestExpired)
	}

	provider, err := fm.registry.Enabled(request.Provider)
	if err != nil {
		return "", fm.fail(ctx, err)
	}

	tokens, user, err := fm.exchanger.Exchange(ctx, provider, code, request.CodeVerifier)
	if err != nil {
		return "", fm.fail(ctx, err)
	}

	if fm.verifier != nil && provider.JWKSURL != "" && tokens.IDToken != "" {
		if err := fm.verifier.Verify(ctx, provider, tokens.IDToken, request.Nonce); err != nil {
			return "", fm.fail(ctx, err)
		}
	}

	now := fm.now()
	session := adminauth.AuthSession{
		IsAuthenticated:  true,
		User:             user,
		Tokens:           tokens,
		SessionStartedAt: &now,
		LastActivityAt:   &now,
	}

	if err := fm.sessions.Replace(ctx, session); err != nil {
		return "", fm.fail(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session"))
	}

	if err := fm.pending.Clear(ctx); err != nil {
		fm.logger.Error("failed to clear pending request: %v", err)
	}

	return request.ReturnURL, nil
}

// fail records the failure on the current snapshot and re-raises the error.
// The callback route is reachable without authentication, so a bogus callback
// must never tear down an established session.
func (fm *FlowManager) fail(ctx context.Context, err error) error {
	session := fm.sessions.Current()
	session.Loading = false
	session.Error = err.Error()

	if replaceErr := fm.sessions.Replace(ctx, session); replaceErr != nil {
		fm.logger.Error("failed to record auth failure on session: %v", replaceErr)
	}

	return err
}

// buildAuthorizeURL assembles the authorization request. Provider specific
// additional params merge last so they can override the defaults.
func buildAuthorizeURL(provider ProviderConfig, state, nonce string, pkce *PkceParams) string {
	params := url.Values{
		"client_id":     {provider.ClientID},
		"redirect_uri":  {provider.RedirectURI},
		"response_type": {provider.ResponseType},
		"scope":         {strings.Join(provider.Scopes, " ")},
		"state":         {state},
		"nonce":         {nonce},
	}

	if pkce != nil {
		params.Set("code_challenge", pkce.CodeChallenge)
		params.Set("code_challenge_method", pkce.CodeChallengeMethod)
	}

	for key, value := range provider.AdditionalParams {
		params.Set(key, value)
	}

	return provider.AuthorizeURL + "?" + params.Encode()
}
