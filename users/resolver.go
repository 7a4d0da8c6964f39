package users

import (
	"context"
	"strings"

	"github.com/gistree/server/identity"
	apperrors "github.com/gistree/server/internal/errors"
	"github.com/rs/zerolog/log"
)

// StarterGranter gives a user the ornaments every new account starts with.
// It must be idempotent; it runs on every login.
type StarterGranter interface {
	GrantStarterOrnaments(ctx context.Context, userID string) error
}

// Resolver maps a verified identity to a local user account.
type Resolver struct {
	repo    Repo
	domains []string
	starter StarterGranter
}

// NewResolver returns a resolver that accepts email addresses in the given
// domains (without "@"). starter may be nil.
func NewResolver(repo Repo, allowedDomains []string, starter StarterGranter) *Resolver {
	domains := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" {
			domains = append(domains, "@"+d)
		}
	}
	return &Resolver{repo: repo, domains: domains, starter: starter}
}

// Resolve validates the identity and returns the matching user, creating
// one on first login. Validation failures are ErrUnauthorized.
func (r *Resolver) Resolve(ctx context.Context, id identity.Identity) (*User, error) {
	if !r.allowedEmail(id.Email) {
		return nil, apperrors.Wrapf(apperrors.ErrUnauthorized, "email %q is not an institutional address", id.Email)
	}
	if strings.TrimSpace(id.StudentID) == "" {
		return nil, apperrors.Wrapf(apperrors.ErrUnauthorized, "identity for %q has no student id", id.Email)
	}
	if strings.TrimSpace(id.UUID) == "" {
		return nil, apperrors.Wrapf(apperrors.ErrUnauthorized, "identity for %q has no subject", id.Email)
	}

	user, err := r.repo.FindOrCreate(ctx, NewUser{
		ID:        id.UUID,
		Name:      id.Name,
		Email:     id.Email,
		StudentID: id.StudentID,
	})
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrInternal)
	}

	if r.starter != nil {
		if err := r.starter.GrantStarterOrnaments(ctx, user.ID); err != nil {
			log.Err(err).Str("user_id", user.ID).Msg("failed to grant starter ornaments")
		}
	}
	return user, nil
}

func (r *Resolver) allowedEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}
	for _, d := range r.domains {
		if email[at:] == d {
			return true
		}
	}
	return false
}
