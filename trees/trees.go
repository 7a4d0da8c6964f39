package trees

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	apperrors "github.com/gistree/server/internal/errors"
)

// MaxDecorations is the number of ornament slots on a tree.
const MaxDecorations = 100

type Position struct {
	X float64  `json:"x"`
	Y float64  `json:"y"`
	Z *float64 `json:"z,omitempty"`
}

type Decoration struct {
	OrnamentID string   `json:"ornamentId"`
	Position   Position `json:"position"`
	Rotation   *float64 `json:"rotation,omitempty"`
	Scale      *float64 `json:"scale,omitempty"`
}

// Decorations maps a slot key chosen by the frontend to what hangs there.
type Decorations map[string]Decoration

type Tree struct {
	UserID       string      `json:"userId"`
	Decorations  Decorations `json:"decorations"`
	IsLocked     bool        `json:"isLocked"`
	PasswordHash string      `json:"-"`
	UpdatedAt    *time.Time  `json:"updatedAt,omitempty"`
}

// Default is the tree of a user who has never decorated.
func Default(userID string) *Tree {
	return &Tree{UserID: userID, Decorations: Decorations{}}
}

// Validate checks the shape of the decorations. Ownership of the
// referenced ornaments is checked separately.
func (d Decorations) Validate() error {
	if len(d) > MaxDecorations {
		return apperrors.Public(apperrors.ErrInvalidRequest, "a tree holds at most %d decorations", MaxDecorations)
	}
	for key, dec := range d {
		if strings.TrimSpace(key) == "" {
			return apperrors.Public(apperrors.ErrInvalidRequest, "decoration keys must not be empty")
		}
		if strings.TrimSpace(dec.OrnamentID) == "" {
			return apperrors.Public(apperrors.ErrInvalidRequest, "decoration %q has no ornamentId", key)
		}
		for _, v := range []*float64{&dec.Position.X, &dec.Position.Y, dec.Position.Z, dec.Rotation, dec.Scale} {
			if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
				return apperrors.Public(apperrors.ErrInvalidRequest, "decoration %q has a non-finite number", key)
			}
		}
		if dec.Scale != nil && *dec.Scale <= 0 {
			return apperrors.Public(apperrors.ErrInvalidRequest, "decoration %q must have a positive scale", key)
		}
	}
	return nil
}

// OrnamentIDs returns the distinct ornaments used, sorted.
func (d Decorations) OrnamentIDs() []string {
	seen := make(map[string]struct{}, len(d))
	ids := make([]string, 0, len(d))
	for _, dec := range d {
		if _, ok := seen[dec.OrnamentID]; ok {
			continue
		}
		seen[dec.OrnamentID] = struct{}{}
		ids = append(ids, dec.OrnamentID)
	}
	sort.Strings(ids)
	return ids
}

type Repo interface {
	// Get returns the stored tree or ErrNotFound when the user never
	// saved one.
	Get(ctx context.Context, userID string) (*Tree, error)
	// SaveDecorations creates or replaces the tree's decorations.
	SaveDecorations(ctx context.Context, userID string, d Decorations) (*Tree, error)
	// SetLock creates the tree if needed and sets its lock. passwordHash is
	// cleared when locked is false.
	SetLock(ctx context.Context, userID string, locked bool, passwordHash string) (*Tree, error)
}
