package notifications

import (
	"context"
	"time"
)

// Notification types.
const (
	TypeMessage  = "message"
	TypeOrnament = "ornament"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	RelatedID *string   `json:"relatedId"` // e.g. the message that caused it
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repo interface {
	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
	// MarkRead marks a notification as read. A notification that does not
	// belong to userID is reported as not found.
	MarkRead(ctx context.Context, userID, id string) (*Notification, error)
}
