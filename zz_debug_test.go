package adminauth_test

import (
	"context"
	"fmt"
	"testing"

	adminauth "github.com/goliatone/go-admin-auth"
	goerrors "github.com/goliatone/go-errors"
)

func TestZZDebug(t *testing.T) {
	db, err := adminauth.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := adminauth.Migrate(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	config := &adminauth.Config{Pepper: "p", SigningKey: "k"}
	repo := adminauth.NewRepositoryManager(db)
	tokens := adminauth.NewTokenService([]byte("k"), 1, "iss", nil, nil)
	store := adminauth.NewCredentialStore(repo, tokens, config)
	_, err = store.Register(context.Background(), adminauth.RegisterMessage{
		Email: "a@b.com", Password: "secret-password", FirstName: "A", LastName: "B",
	})
	if err != nil {
		var re *goerrors.Error
		goerrors.As(err, &re)
		var cur error = re
		for i := 0; cur != nil && i < 10; i++ {
			fmt.Printf("LAYER %d: %T :: %v\n", i, cur, cur)
			if rc, ok := cur.(*goerrors.Error); ok {
				fmt.Printf("   textcode=%q meta=%v\n", rc.TextCode, rc.Metadata)
				cur = rc.Source
			} else if u, ok := cur.(interface{ Unwrap() error }); ok {
				cur = u.Unwrap()
			} else {
				break
			}
		}
		t.Fatalf("register: %v", err)
	}
}
