package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	codeVerifierBytes = 32 // 256 bits, hex encoded to 64 characters
	nonceBytes        = 16
	csrfTokenBytes    = 32
)

// PendingLogin is everything created when a login starts. Only the code
// verifier is kept (in a cookie); the rest travels on the authorization URL.
type PendingLogin struct {
	CodeVerifier  string
	CodeChallenge string
	Nonce         string
	State         string
	RedirectPath  string
}

// NewPendingLogin generates a fresh verifier and nonce for a login that
// should end at redirectPath, which must already be a safe path.
func NewPendingLogin(redirectPath string) (*PendingLogin, error) {
	verifier, err := randomHex(codeVerifierBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	nonce, err := randomHex(nonceBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return &PendingLogin{
		CodeVerifier: verifier,
		// The provider only supports the plain method, so the challenge is
		// the verifier itself.
		CodeChallenge: verifier,
		Nonce:         nonce,
		State:         EncodeState(redirectPath),
		RedirectPath:  redirectPath,
	}, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
