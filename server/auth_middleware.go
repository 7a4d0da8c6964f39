package server

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated *users.User
	ContextKeyUser ContextKey = "user"
	// ContextKeyClaims stores the verified session claims
	ContextKeyClaims ContextKey = "claims"
)

// RequireAuth verifies the session token from the access_token cookie or
// an Authorization: Bearer header and loads the user it names.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw := sessionToken(r)
			if raw == "" {
				s.writeError(w, r, apperrors.Public(apperrors.ErrUnauthorized, "Authentication required"))
				return
			}

			claims, err := s.deps.Sessions.Inspect(raw)
			if err != nil {
				log.Debug().Err(err).Msg("rejected session token")
				s.writeError(w, r, apperrors.Public(apperrors.ErrUnauthorized, "Invalid or expired session"))
				return
			}

			user, err := s.deps.Users.GetByID(r.Context(), claims.Subject)
			if apperrors.Is(err, apperrors.ErrNotFound) {
				s.writeError(w, r, apperrors.Public(apperrors.ErrUnauthorized, "Invalid or expired session"))
				return
			}
			if err != nil {
				s.writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// sessionToken prefers the cookie; API clients may send a Bearer header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(accessTokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// currentUser returns the user stored by RequireAuth.
func currentUser(r *http.Request) *users.User {
	user, _ := r.Context().Value(ContextKeyUser).(*users.User)
	return user
}
