package adminauth

import (
	"context"
	"errors"
)

// Demo account credentials used by local development builds.
const (
	DemoAccountEmail    = "admin@example.com"
	DemoAccountPassword = "123456"
)

// SeedDemoAccount registers the demo admin account. Re-seeding an existing
// account is a no-op.
func SeedDemoAccount(ctx context.Context, store *CredentialStore) error {
	_, err := store.Register(ctx, RegisterMessage{
		Email:     DemoAccountEmail,
		Password:  DemoAccountPassword,
		FirstName: "Admin",
		LastName:  "Example",
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil
		}
		return err
	}
	return nil
}
