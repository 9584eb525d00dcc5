package adminauth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LocalProvider is the DigitalIdentity provider id for email/password
// accounts.
const LocalProvider = "email"

// User is the account anchor record. A disabled user cannot log in no matter
// which credential or identity is used.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Enabled       bool       `bun:"enabled,notnull" json:"enabled"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Person carries the human-facing profile attached to a User.
type Person struct {
	bun.BaseModel `bun:"table:persons,alias:per"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	DisplayName   string     `bun:"display_name" json:"display_name,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// DigitalIdentity links a User to an authentication provider. Local accounts
// get a primary identity with provider "email"; federated logins record the
// OIDC provider and its subject.
type DigitalIdentity struct {
	bun.BaseModel  `bun:"table:digital_identities,alias:din"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID         uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Provider       string     `bun:"provider,notnull" json:"provider,omitempty"`
	ProviderUserID string     `bun:"provider_user_id,notnull" json:"provider_user_id,omitempty"`
	IsPrimary      bool       `bun:"is_primary,notnull" json:"is_primary"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// EmailCredential stores the local password material and lockout counters
// for one account. Email is stored lowercased and is unique.
type EmailCredential struct {
	bun.BaseModel  `bun:"table:email_credentials,alias:cred"`
	UserID         uuid.UUID  `bun:"user_id,pk,type:uuid" json:"user_id,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash,notnull" json:"-"`
	Salt           string     `bun:"salt,notnull" json:"-"`
	FailedAttempts int        `bun:"failed_attempts" json:"failed_attempts,omitempty"`
	LockedUntil    *time.Time `bun:"locked_until,nullzero" json:"locked_until,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	LastChangedAt  *time.Time `bun:"last_changed_at,nullzero" json:"last_changed_at,omitempty"`
}

// IsLocked reports whether the lockout window is still active at now.
func (c *EmailCredential) IsLocked(now time.Time) bool {
	return c.LockedUntil != nil && now.Before(*c.LockedUntil)
}

// ResetToken is a single-use, time-boxed password reset authorization.
// At most one live token exists per email; issuing a new one replaces it.
type ResetToken struct {
	bun.BaseModel `bun:"table:reset_tokens,alias:rst"`
	Token         string     `bun:"token,pk" json:"token,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// IsExpired reports whether the token is past its expiry at now.
func (t *ResetToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// NormalizeEmail lowercases and trims an email so lookups stay
// case-insensitive everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayNameFor derives a display name when the caller does not supply one.
func DisplayNameFor(firstName, lastName, email string) string {
	name := strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
	if name != "" {
		return name
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
