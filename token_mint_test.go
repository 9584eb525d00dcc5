package adminauth_test

import (
	"testing"

	adminauth "github.com/goliatone/go-admin-auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceMint(t *testing.T) {
	service := adminauth.NewTokenService([]byte(testSigningKey), 1, "go-admin-auth-test", jwt.ClaimStrings{"admin"}, nil)

	user := &adminauth.User{
		ID:      uuid.New(),
		Email:   "mint@example.com",
		Enabled: true,
	}
	identities := []*adminauth.DigitalIdentity{
		{Provider: adminauth.LocalProvider},
		{Provider: "google"},
	}

	token, err := service.Mint(user, identities)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (any, error) {
		return []byte(testSigningKey), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, "go-admin-auth-test", claims["iss"])
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.NotEmpty(t, claims["jti"])

	dat, ok := claims["dat"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "mint@example.com", dat["email"])
	assert.ElementsMatch(t, []any{"email", "google"}, dat["providers"])
}

func TestTokenServiceMintRequiresUser(t *testing.T) {
	service := adminauth.NewTokenService([]byte(testSigningKey), 1, "go-admin-auth-test", nil, nil)

	_, err := service.Mint(nil, nil)
	assert.Error(t, err)
}

func TestTokenServiceRejectsTamperedSignature(t *testing.T) {
	service := adminauth.NewTokenService([]byte(testSigningKey), 1, "go-admin-auth-test", nil, nil)

	token, err := service.Mint(&adminauth.User{ID: uuid.New(), Email: "a@example.com"}, nil)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (any, error) {
		return []byte("some-other-key"), nil
	})
	assert.Error(t, err)
}
