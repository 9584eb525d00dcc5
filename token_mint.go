package adminauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenServiceImpl mints the opaque session tokens returned by a successful
// local login. Tokens are HS256 JWTs; callers treat them as opaque strings.
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
}

// NewTokenService creates a new TokenMinter instance.
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, audience jwt.ClaimStrings, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		audience:        audience,
		logger:          logger,
	}
}

// Mint implements TokenMinter.
func (ts *TokenServiceImpl) Mint(user *User, identities []*DigitalIdentity) (string, error) {
	if user == nil {
		return "", goerrors.New("user is required", goerrors.CategoryBadInput)
	}

	providers := make([]string, 0, len(identities))
	for _, identity := range identities {
		if identity != nil {
			providers = append(providers, identity.Provider)
		}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": ts.issuer,
		"sub": user.ID.String(),
		"aud": ts.audience,
		"jti": uuid.NewString(),
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(
			now.Add(time.Duration(ts.tokenExpiration) * time.Hour),
		),
		"dat": map[string]any{
			"email":     user.Email,
			"providers": providers,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	return signed, nil
}

var _ TokenMinter = (*TokenServiceImpl)(nil)
