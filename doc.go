// Package adminauth implements the authentication and session subsystem for
// browser-resident multi-tenant admin applications.
//
// Local credentials:
//   - CredentialStore owns email/password accounts. Registration writes the
//     Person, User, DigitalIdentity, and EmailCredential records as a single
//     Bun transaction. Login enforces a lockout policy (5 failures, 15 minute
//     lock) and keeps unknown-email and wrong-password failures
//     indistinguishable to callers.
//   - Password resets are single-use tokens, time-boxed to one hour, with at
//     most one live token per email. RequestPasswordReset never reveals
//     whether an account exists.
//
// Sessions:
//   - SessionStore is an observable holder of the current AuthSession. The
//     snapshot is replaced wholesale, never field-patched, and every
//     replacement is persisted through an injected SessionStorage port so a
//     process restart can rehydrate it.
//   - Token lifecycle queries (IsTokenExpiringSoon) live on the store; the
//     refresh path is intentionally unimplemented until the backend proxy
//     contract exists and fails loudly with ErrNotImplemented.
//
// The federated OAuth2/OIDC authorization-code flow lives in the oidc
// subpackage.
package adminauth
