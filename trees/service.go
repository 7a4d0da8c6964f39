package trees

import (
	"context"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/users"
)

// OwnershipChecker reports which ornaments a user has collected.
type OwnershipChecker interface {
	Owned(ctx context.Context, userID string, ornamentIDs []string) (map[string]bool, error)
}

type Service struct {
	repo      Repo
	users     users.Repo
	ownership OwnershipChecker
}

func NewService(repo Repo, userRepo users.Repo, ownership OwnershipChecker) *Service {
	return &Service{repo: repo, users: userRepo, ownership: ownership}
}

// Get returns ownerID's tree as seen by viewer. Users without a stored tree
// get the default one. A locked tree opens for its owner or with the
// right password.
func (s *Service) Get(ctx context.Context, viewer *users.User, ownerID, password string) (*Tree, error) {
	tree, err := s.repo.Get(ctx, ownerID)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		if _, err := s.users.GetByID(ctx, ownerID); err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.Public(apperrors.ErrNotFound, "User not found")
			}
			return nil, err
		}
		return Default(ownerID), nil
	}
	if err != nil {
		return nil, err
	}

	if tree.IsLocked && (viewer == nil || viewer.ID != ownerID) && !users.CheckPasswordHash(password, tree.PasswordHash) {
		return nil, apperrors.Public(apperrors.ErrForbidden, "this tree is locked")
	}
	return tree, nil
}

// SaveDecorations replaces owner's decorations. Every ornament used must be
// in owner's collection; otherwise nothing is saved.
func (s *Service) SaveDecorations(ctx context.Context, owner *users.User, d Decorations) (*Tree, error) {
	if d == nil {
		return nil, apperrors.Public(apperrors.ErrInvalidRequest, "decorations are required")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	ids := d.OrnamentIDs()
	if len(ids) > 0 {
		owned, err := s.ownership.Owned(ctx, owner.ID, ids)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if !owned[id] {
				return nil, apperrors.Public(apperrors.ErrForbidden, "ornament %s is not in your collection", id)
			}
		}
	}
	return s.repo.SaveDecorations(ctx, owner.ID, d)
}

// SetLock locks or unlocks owner's tree.
func (s *Service) SetLock(ctx context.Context, owner *users.User, locked bool, password string) (*Tree, error) {
	hash, err := users.LockPasswordHash(locked, password)
	if err != nil {
		return nil, err
	}
	return s.repo.SetLock(ctx, owner.ID, locked, hash)
}
