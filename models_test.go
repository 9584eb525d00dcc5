package adminauth_test

import (
	"testing"
	"time"

	adminauth "github.com/goliatone/go-admin-auth"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", adminauth.NormalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "jane@example.com", adminauth.NormalizeEmail("jane@example.com"))
	assert.Equal(t, "", adminauth.NormalizeEmail("   "))
}

func TestDisplayNameFor(t *testing.T) {
	assert.Equal(t, "Jane Doe", adminauth.DisplayNameFor("Jane", "Doe", "jane@example.com"))
	assert.Equal(t, "Jane", adminauth.DisplayNameFor("Jane", "", "jane@example.com"))
	assert.Equal(t, "jane", adminauth.DisplayNameFor("", "", "jane@example.com"))
	assert.Equal(t, "no-at-sign", adminauth.DisplayNameFor("", "", "no-at-sign"))
}

func TestEmailCredentialIsLocked(t *testing.T) {
	now := time.Now()

	credential := &adminauth.EmailCredential{}
	assert.False(t, credential.IsLocked(now), "no lockout set")

	future := now.Add(time.Minute)
	credential.LockedUntil = &future
	assert.True(t, credential.IsLocked(now))

	past := now.Add(-time.Minute)
	credential.LockedUntil = &past
	assert.False(t, credential.IsLocked(now), "expired lockout")
}

func TestResetTokenIsExpired(t *testing.T) {
	now := time.Now()

	token := &adminauth.ResetToken{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, token.IsExpired(now))

	token.ExpiresAt = now.Add(-time.Second)
	assert.True(t, token.IsExpired(now))
}
