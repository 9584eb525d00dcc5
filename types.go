package adminauth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// SessionStorage is the durable port behind SessionStore. Implementations
// persist a single serialized AuthSession snapshot; Load returns (nil, nil)
// when no snapshot exists.
type SessionStorage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
	Delete(ctx context.Context) error
}

// TokenMinter issues the opaque session token handed back by a successful
// local login.
type TokenMinter interface {
	Mint(user *User, identities []*DigitalIdentity) (string, error)
}

// ResetNotifier delivers a password reset token to the account holder.
// Delivery is an external collaborator; the store only hands it the token.
type ResetNotifier interface {
	Notify(ctx context.Context, email, token string) error
}

// NewDefaultLogger returns the stdout fallback logger used when callers do
// not inject their own.
func NewDefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
