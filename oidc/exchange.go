package oidc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	adminauth "github.com/goliatone/go-admin-auth"
	goerrors "github.com/goliatone/go-errors"
)

// Exchanger trades an authorization code for tokens and the authenticated
// profile. The exchange must run behind a trusted backend proxy so the
// client secret never reaches the browser process.
type Exchanger interface {
	Exchange(ctx context.Context, provider ProviderConfig, code, codeVerifier string) (*adminauth.TokenSet, *adminauth.AuthenticatedUser, error)
}

// Revoker invalidates a token set at the IdP (RFC 7009), again via the
// backend proxy.
type Revoker interface {
	Revoke(ctx context.Context, tokens *adminauth.TokenSet, provider ProviderConfig) error
}

// ProxyClient implements Exchanger and Revoker against the backend proxy's
// exchange and revocation endpoints.
type ProxyClient struct {
	exchangeURL string
	revokeURL   string
	httpClient  *http.Client
}

// NewProxyClient creates a proxy client. revokeURL may be empty when the
// deployment has no revocation endpoint.
func NewProxyClient(exchangeURL, revokeURL string, httpClient *http.Client) *ProxyClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &ProxyClient{
		exchangeURL: exchangeURL,
		revokeURL:   revokeURL,
		httpClient:  httpClient,
	}
}

type exchangeResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		DisplayName   string `json:"display_name"`
		FirstName     string `json:"first_name"`
		LastName      string `json:"last_name"`
		EmailVerified bool   `json:"email_verified"`
		Subject       string `json:"subject"`
	} `json:"user"`
	Error     string `json:"error"`
	ErrorDesc string `json:"error_description"`
}

// Exchange implements Exchanger.
func (p *ProxyClient) Exchange(ctx context.Context, provider ProviderConfig, code, codeVerifier string) (*adminauth.TokenSet, *adminauth.AuthenticatedUser, error) {
	data := url.Values{
		"provider":     {provider.Name},
		"code":         {code},
		"redirect_uri": {provider.RedirectURI},
		"grant_type":   {"authorization_code"},
	}
	if codeVerifier != "" {
		data.Set("code_verifier", codeVerifier)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.exchangeURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryOperation, "exchange request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to read exchange response")
	}

	var payload exchangeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to decode exchange response")
	}

	if resp.StatusCode != http.StatusOK || payload.Error != "" {
		return nil, nil, goerrors.Wrap(ErrExchangeFailed, goerrors.CategoryAuth, "exchange rejected").
			WithMetadata(map[string]any{
				"status":            resp.StatusCode,
				"error":             payload.Error,
				"error_description": payload.ErrorDesc,
			})
	}

	if payload.AccessToken == "" {
		return nil, nil, goerrors.Wrap(ErrExchangeFailed, goerrors.CategoryAuth, "exchange returned no access token")
	}

	expiresAt := time.Time{}
	if payload.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	}

	tokens := &adminauth.TokenSet{
		AccessToken:  payload.AccessToken,
		IDToken:      payload.IDToken,
		RefreshToken: payload.RefreshToken,
		ExpiresAt:    expiresAt,
	}

	user := &adminauth.AuthenticatedUser{
		ID:            payload.User.ID,
		Email:         payload.User.Email,
		DisplayName:   payload.User.DisplayName,
		FirstName:     payload.User.FirstName,
		LastName:      payload.User.LastName,
		EmailVerified: payload.User.EmailVerified,
		Provider:      provider.Name,
		ProviderID:    payload.User.Subject,
	}

	return tokens, user, nil
}

// Revoke implements Revoker per RFC 7009. The refresh token is revoked when
// present; providers cascade to the access token.
func (p *ProxyClient) Revoke(ctx context.Context, tokens *adminauth.TokenSet, provider ProviderConfig) error {
	if p.revokeURL == "" || tokens == nil {
		return nil
	}

	token := tokens.RefreshToken
	hint := "refresh_token"
	if token == "" {
		token = tokens.AccessToken
		hint = "access_token"
	}
	if token == "" {
		return nil
	}

	data := url.Values{
		"provider":        {provider.Name},
		"token":           {token},
		"token_type_hint": {hint},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revokeURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return goerrors.Wrap(ErrRevocationFailed, goerrors.CategoryOperation, err.Error())
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return goerrors.Wrap(ErrRevocationFailed, goerrors.CategoryOperation, "revocation endpoint rejected request").
			WithMetadata(map[string]any{"status": resp.StatusCode})
	}

	return nil
}

var (
	_ Exchanger = (*ProxyClient)(nil)
	_ Revoker   = (*ProxyClient)(nil)
)
