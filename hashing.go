package adminauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// saltBytes yields 32 hex chars per credential.
const saltBytes = 16

var bcryptCost = passwordHashCost()

// GenerateSalt returns a fresh random salt, hex encoded.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate salt")
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword derives the stored password hash from the cleartext password,
// the per-credential salt, and the deployment pepper. The material is
// pre-hashed with SHA-256 so bcrypt's 72 byte input limit never truncates
// long passwords.
func HashPassword(password, salt, pepper string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword(hashMaterial(password, salt, pepper), bcryptCost)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	return string(h), nil
}

// ComparePasswordAndHash validates the given cleartext password against the
// stored hash. bcrypt's comparison is constant time.
func ComparePasswordAndHash(password, salt, pepper, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), hashMaterial(password, salt, pepper)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

func hashMaterial(password, salt, pepper string) []byte {
	sum := sha256.Sum256([]byte(salt + password + pepper))
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum[:])
	return out
}

// GenerateOpaqueToken returns a crypto-random hex token of n bytes entropy,
// used for reset tokens.
func GenerateOpaqueToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate token")
	}
	return hex.EncodeToString(buf), nil
}
