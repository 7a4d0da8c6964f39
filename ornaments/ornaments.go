package ornaments

import (
	"context"
	"time"
)

// Ornament is a catalogue entry that can be hung on a tree.
type Ornament struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"isDefault"` // Granted to every new user
}

// Collected is an ornament in a user's collection.
type Collected struct {
	UserID     string    `json:"userId"`
	OrnamentID string    `json:"ornamentId"`
	Ornament   Ornament  `json:"ornament"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

type Repo interface {
	List(ctx context.Context) ([]Ornament, error)
	Get(ctx context.Context, id string) (*Ornament, error)
	ListByUser(ctx context.Context, userID string) ([]Collected, error)
	// Owned returns the subset of ornamentIDs the user has collected.
	Owned(ctx context.Context, userID string, ornamentIDs []string) (map[string]bool, error)
	// GrantStarterOrnaments adds every default ornament the user is
	// missing. Safe to call repeatedly.
	GrantStarterOrnaments(ctx context.Context, userID string) error
}
