package users

import "context"

// NewUser carries the identity fields used to find or create a user.
type NewUser struct {
	ID        string
	Name      string
	Email     string
	StudentID string
}

type Repo interface {
	// FindOrCreate returns the user with u.StudentID, creating it with u.ID
	// when none exists. Name and email are refreshed on every call. The
	// lookup and insert are a single atomic step.
	FindOrCreate(ctx context.Context, u NewUser) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByStudentID(ctx context.Context, studentID string) (*User, error)
	// First returns the earliest created user.
	First(ctx context.Context) (*User, error)
	Search(ctx context.Context, query string, limit int) ([]*User, error)
	// UpdateMailbox sets the mailbox protection. passwordHash is ignored
	// when protected is false.
	UpdateMailbox(ctx context.Context, id string, protected bool, passwordHash string) error
}
