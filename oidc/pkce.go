package oidc

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	stateBytes    = 32
	nonceBytes    = 32
	verifierBytes = 64
)

// PkceParams holds the RFC 7636 proof key material for one login. The
// verifier never leaves the client; only the challenge goes on the wire.
type PkceParams struct {
	CodeVerifier        string `json:"code_verifier"`
	CodeChallenge       string `json:"code_challenge"`
	CodeChallengeMethod string `json:"code_challenge_method"`
}

// GenerateState returns the CSRF-binding state parameter.
func GenerateState() (string, error) {
	return randomHex(stateBytes)
}

// GenerateNonce returns the id_token-binding nonce parameter.
func GenerateNonce() (string, error) {
	return randomHex(nonceBytes)
}

// GeneratePkce returns a fresh verifier/challenge pair using S256.
func GeneratePkce() (*PkceParams, error) {
	verifier, err := randomHex(verifierBytes)
	if err != nil {
		return nil, err
	}

	return &PkceParams{
		CodeVerifier:        verifier,
		CodeChallenge:       ComputeCodeChallenge(verifier),
		CodeChallengeMethod: "S256",
	}, nil
}

// ComputeCodeChallenge derives the S256 challenge per RFC 7636 section 4.2.
func ComputeCodeChallenge(verifier string) string {
	h := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
