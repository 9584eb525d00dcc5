package oidc

import "github.com/goliatone/go-errors"

const (
	TextCodeProviderNotConfigured = "oidc_provider_not_configured"
	TextCodeNoPendingRequest      = "oidc_no_pending_request"
	TextCodeInvalidState          = "oidc_invalid_state"
	TextCodeRequestExpired        = "oidc_request_expired"
	TextCodeExchangeFail          = "oidc_exchange_failed"
	TextCodeNonceMismatch         = "oidc_nonce_mismatch"
	TextCodeRevocationFail        = "oidc_revocation_failed"
)

// ErrProviderNotConfigured is returned when a provider is unknown or
// disabled.
var ErrProviderNotConfigured = errors.New("provider not configured or disabled", errors.CategoryNotFound).
	WithTextCode(TextCodeProviderNotConfigured).
	WithCode(errors.CodeNotFound)

// ErrNoPendingRequest is returned when a callback arrives without a stored
// authorization request.
var ErrNoPendingRequest = errors.New("no pending authorization request", errors.CategoryBadInput).
	WithTextCode(TextCodeNoPendingRequest).
	WithCode(errors.CodeBadRequest)

// ErrInvalidState is returned when the callback state does not match the
// pending request. This is the CSRF failure and always aborts the flow.
var ErrInvalidState = errors.New("invalid oauth state", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidState).
	WithCode(errors.CodeBadRequest)

// ErrRequestExpired is returned when the pending request is older than the
// handshake window.
var ErrRequestExpired = errors.New("authorization request expired", errors.CategoryBadInput).
	WithTextCode(TextCodeRequestExpired).
	WithCode(errors.CodeBadRequest)

// ErrExchangeFailed is returned when the backend proxy cannot exchange the
// authorization code.
var ErrExchangeFailed = errors.New("authorization code exchange failed", errors.CategoryAuth).
	WithTextCode(TextCodeExchangeFail).
	WithCode(errors.CodeUnauthorized)

// ErrNonceMismatch is returned when the id_token nonce does not match the
// value bound to the pending request.
var ErrNonceMismatch = errors.New("id token nonce mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeNonceMismatch).
	WithCode(errors.CodeUnauthorized)

// ErrRevocationFailed wraps RFC 7009 revocation failures. Logout treats it
// as best effort and never blocks local cleanup on it.
var ErrRevocationFailed = errors.New("token revocation failed", errors.CategoryOperation).
	WithTextCode(TextCodeRevocationFail)
