package adminauth

import (
	"time"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced to API consumers alongside structured errors.
const (
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeAccountLocked      = "ACCOUNT_LOCKED"
	TextCodeAccountDisabled    = "ACCOUNT_DISABLED"
	TextCodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	TextCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	TextCodeInvalidResetToken  = "INVALID_RESET_TOKEN"
	TextCodeResetTokenExpired  = "RESET_TOKEN_EXPIRED"
	TextCodeNotImplemented     = "NOT_IMPLEMENTED"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeSessionDecodeError = "SESSION_DECODE_ERROR"
)

// ErrInvalidCredentials covers both unknown emails and wrong passwords so
// callers cannot tell which accounts exist.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the low level bcrypt comparison failure.
// CredentialStore translates it into ErrInvalidCredentials before returning.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrAccountLocked is returned while a lockout window is active, regardless
// of password correctness.
var ErrAccountLocked = errors.New("account is temporarily locked", errors.CategoryAuth).
	WithTextCode(TextCodeAccountLocked).
	WithCode(errors.CodeForbidden)

// ErrAccountDisabled is returned when the backing user is not enabled.
var ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(errors.CodeForbidden)

// ErrAccountNotFound is returned by the reset flow when a token references a
// credential that no longer exists.
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// ErrDuplicateEmail keeps its message generic so registration responses do
// not advertise which emails already have accounts.
var ErrDuplicateEmail = errors.New("unable to register with the provided email", errors.CategoryValidation).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(errors.CodeConflict)

// ErrInvalidResetToken is returned for unknown or already consumed reset
// tokens.
var ErrInvalidResetToken = errors.New("invalid or unknown reset token", errors.CategoryNotFound).
	WithTextCode(TextCodeInvalidResetToken).
	WithCode(errors.CodeNotFound)

// ErrResetTokenExpired is returned when a reset token is past its expiry.
var ErrResetTokenExpired = errors.New("reset token has expired", errors.CategoryValidation).
	WithTextCode(TextCodeResetTokenExpired).
	WithCode(errors.CodeBadRequest)

// ErrNotImplemented marks contracts that require the backend proxy, such as
// the token refresh path. Callers must not assume silent success.
var ErrNotImplemented = errors.New("operation not implemented", errors.CategoryOperation).
	WithTextCode(TextCodeNotImplemented)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("value cannot be an empty string", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// NewAccountLockedError attaches the lockout deadline so callers can tell
// users when to retry without changing the generic message.
func NewAccountLockedError(until time.Time) *errors.Error {
	return errors.New("account is temporarily locked", errors.CategoryAuth).
		WithTextCode(TextCodeAccountLocked).
		WithCode(errors.CodeForbidden).
		WithMetadata(map[string]any{
			"locked_until": until,
		})
}

// IsAccountLocked reports whether err carries the lockout text code.
func IsAccountLocked(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeAccountLocked
	}
	return false
}
