package messages

import (
	"context"
	"time"

	"github.com/gistree/server/notifications"
)

// MaxContentLength is the longest message body, in characters.
const MaxContentLength = 1000

type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	ReceiverID  string    `json:"receiverId"`
	Content     string    `json:"content"`
	IsAnonymous bool      `json:"isAnonymous"`
	ReplyToID   *string   `json:"replyToId"`
	OrnamentID  *string   `json:"ornamentId"` // Ornament gifted with the message
	CreatedAt   time.Time `json:"createdAt"`
}

// Party is the public view of a sender or receiver.
type Party struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
}

// Received is a message in an inbox. Sender is nil for anonymous messages.
type Received struct {
	Message
	Sender *Party `json:"sender"`
}

// Sent is a message in the sender's outbox.
type Sent struct {
	Message
	Receiver Party `json:"receiver"`
}

// SendRequest is the body of POST /messages.
type SendRequest struct {
	ReceiverStudentID string  `json:"receiverStudentId"`
	ReceiverName      string  `json:"receiverName"`
	Content           string  `json:"content"`
	IsAnonymous       bool    `json:"isAnonymous"`
	ReplyToID         *string `json:"replyToId,omitempty"`
	OrnamentID        *string `json:"ornamentId,omitempty"`
}

type Repo interface {
	// Create stores m together with the receiver's notification and, when
	// m.OrnamentID is set, adds the ornament to the receiver's collection.
	// Either all of it is stored or none.
	Create(ctx context.Context, m Message, n notifications.Notification) error
	Get(ctx context.Context, id string) (*Message, error)
	// Inbox returns messages received by userID, newest first, with the
	// sender filled in for every message.
	Inbox(ctx context.Context, userID string) ([]Received, error)
	// Outbox returns messages sent by userID, newest first.
	Outbox(ctx context.Context, userID string) ([]Sent, error)
}
