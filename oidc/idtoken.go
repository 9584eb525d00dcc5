package oidc

import (
	"context"
	"crypto/subtle"
	"sync"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// IDTokenVerifier checks the id_token returned by the exchange against the
// nonce bound to the pending request.
type IDTokenVerifier interface {
	Verify(ctx context.Context, provider ProviderConfig, rawIDToken, nonce string) error
}

// JWKSVerifier verifies id_token signatures against the provider's JWKS
// endpoint and binds the nonce claim to the pending request.
type JWKSVerifier struct {
	mu   sync.Mutex
	sets map[string]*keyfunc.JWKS
}

// NewJWKSVerifier creates a verifier. JWKS sets are fetched lazily per
// provider and cached with background refresh.
func NewJWKSVerifier() *JWKSVerifier {
	return &JWKSVerifier{
		sets: map[string]*keyfunc.JWKS{},
	}
}

// Verify implements IDTokenVerifier.
func (v *JWKSVerifier) Verify(ctx context.Context, provider ProviderConfig, rawIDToken, nonce string) error {
	jwks, err := v.jwksFor(provider)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch provider jwks")
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(rawIDToken, &claims, jwks.Keyfunc)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryAuth, "failed to parse id token")
	}
	if !token.Valid {
		return goerrors.New("id token signature is invalid", goerrors.CategoryAuth)
	}

	tokenNonce, _ := claims["nonce"].(string)
	if subtle.ConstantTimeCompare([]byte(tokenNonce), []byte(nonce)) != 1 {
		return ErrNonceMismatch
	}

	return nil
}

func (v *JWKSVerifier) jwksFor(provider ProviderConfig) (*keyfunc.JWKS, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if jwks, ok := v.sets[provider.Name]; ok {
		return jwks, nil
	}

	jwks, err := keyfunc.Get(provider.JWKSURL, keyfunc.Options{
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, err
	}

	v.sets[provider.Name] = jwks
	return jwks, nil
}

var _ IDTokenVerifier = (*JWKSVerifier)(nil)
