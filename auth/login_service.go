package auth

import (
	"context"

	"github.com/gistree/server/identity"
	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/token/jwt"
	"github.com/gistree/server/users"
)

// UserResolver maps a verified identity to a local user.
type UserResolver interface {
	Resolve(ctx context.Context, id identity.Identity) (*users.User, error)
}

// SessionIssuer signs session tokens.
type SessionIssuer interface {
	CreateSessionToken(user *users.User) (string, error)
}

var _ SessionIssuer = (*jwt.Creator)(nil)

// LoginResult is a completed login, ready to be turned into cookies and a
// redirect.
type LoginResult struct {
	User         *users.User
	AccessToken  string
	CSRFToken    string
	RedirectPath string
}

// LoginService runs the authorization code flow against the identity
// provider. It holds no per-login state; everything needed to finish a
// login comes back with the callback request.
type LoginService struct {
	idp         identity.Client
	resolver    UserResolver
	sessions    SessionIssuer
	frontendURL string
}

func NewLoginService(idp identity.Client, resolver UserResolver, sessions SessionIssuer, frontendURL string) *LoginService {
	return &LoginService{
		idp:         idp,
		resolver:    resolver,
		sessions:    sessions,
		frontendURL: frontendURL,
	}
}

// BeginLogin validates the requested redirect and prepares a login. The
// returned URL is where the browser must be sent.
func (s *LoginService) BeginLogin(redirectURL string) (*PendingLogin, string, error) {
	pending, err := NewPendingLogin(SafeRedirectPath(redirectURL, s.frontendURL))
	if err != nil {
		return nil, "", apperrors.Mark(err, apperrors.ErrInternal)
	}
	authURL := s.idp.AuthCodeURL(identity.AuthRequest{
		State:         pending.State,
		CodeChallenge: pending.CodeChallenge,
		Nonce:         pending.Nonce,
	})
	return pending, authURL, nil
}

// CompleteLogin finishes a login from the callback's code and state and the
// code verifier cookie. Steps run in order and the first failure is
// returned, marked with one of ErrMissingCode, ErrSessionExpired,
// ErrUpstream, ErrUnauthorized or ErrInternal.
func (s *LoginService) CompleteLogin(ctx context.Context, code, codeVerifier, state string) (*LoginResult, error) {
	if code == "" {
		return nil, apperrors.ErrMissingCode
	}
	if codeVerifier == "" {
		return nil, apperrors.ErrSessionExpired
	}

	tok, err := s.idp.Exchange(ctx, code, codeVerifier)
	if err != nil {
		return nil, apperrors.Wrapf(err, "exchanging authorization code")
	}

	id, err := s.idp.UserInfo(ctx, tok)
	if err != nil {
		return nil, apperrors.Wrapf(err, "fetching user info")
	}

	user, err := s.resolver.Resolve(ctx, *id)
	if err != nil {
		return nil, apperrors.Wrapf(err, "resolving user")
	}

	accessToken, err := s.sessions.CreateSessionToken(user)
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrInternal)
	}

	csrfToken, err := GenerateCSRFToken()
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrInternal)
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		CSRFToken:    csrfToken,
		RedirectPath: DecodeState(state, s.frontendURL),
	}, nil
}
