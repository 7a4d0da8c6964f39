// Package identity talks to the institutional identity provider: it builds
// the authorization URL, redeems authorization codes and looks up who the
// code belongs to.
package identity

import (
	"context"

	"golang.org/x/oauth2"
)

// Identity is what the identity provider says about the person logging in.
// It is never stored as-is.
type Identity struct {
	UUID      string
	Name      string
	Email     string
	StudentID string
}

// AuthRequest carries the per-login values placed on the authorization URL.
type AuthRequest struct {
	State         string
	CodeChallenge string
	Nonce         string
}

// Client is the subset of the provider the login flow depends on.
type Client interface {
	AuthCodeURL(req AuthRequest) string
	Exchange(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, tok *oauth2.Token) (*Identity, error)
}
