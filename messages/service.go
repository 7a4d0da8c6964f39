package messages

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/internal/utils"
	"github.com/gistree/server/notifications"
	"github.com/gistree/server/ornaments"
	"github.com/gistree/server/users"
	"github.com/google/uuid"
)

// ErrReceiverNotFound is returned when no user has the given student id and
// name. The two cases are not told apart.
var ErrReceiverNotFound = apperrors.Public(apperrors.ErrNotFound, "Receiver not found or name does not match.")

type Service struct {
	repo      Repo
	users     users.Repo
	ornaments ornaments.Repo
	now       func() time.Time
}

func NewService(repo Repo, userRepo users.Repo, ornamentRepo ornaments.Repo) *Service {
	return &Service{
		repo:      repo,
		users:     userRepo,
		ornaments: ornamentRepo,
		now:       time.Now,
	}
}

// Send delivers a message from sender to the user named in req.
func (s *Service) Send(ctx context.Context, sender *users.User, req SendRequest) (*Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.Public(apperrors.ErrInvalidRequest, "content must not be empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, apperrors.Public(apperrors.ErrInvalidRequest, "content must be at most %d characters", MaxContentLength)
	}
	if strings.TrimSpace(req.ReceiverStudentID) == "" || strings.TrimSpace(req.ReceiverName) == "" {
		return nil, apperrors.Public(apperrors.ErrInvalidRequest, "receiverStudentId and receiverName are required")
	}

	receiver, err := s.users.GetByStudentID(ctx, strings.TrimSpace(req.ReceiverStudentID))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, err
	}
	if receiver.Name != strings.TrimSpace(req.ReceiverName) {
		return nil, ErrReceiverNotFound
	}

	replyTo := nilIfBlank(req.ReplyToID)
	if replyTo != nil {
		original, err := s.repo.Get(ctx, *replyTo)
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if err != nil || original.ReceiverID != sender.ID {
			return nil, apperrors.Public(apperrors.ErrNotFound, "the message being replied to was not found")
		}
	}

	ornamentID := nilIfBlank(req.OrnamentID)
	if ornamentID != nil {
		if _, err := s.ornaments.Get(ctx, *ornamentID); err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.Public(apperrors.ErrNotFound, "ornament not found")
			}
			return nil, err
		}
	}

	m := Message{
		ID:          uuid.NewString(),
		SenderID:    sender.ID,
		ReceiverID:  receiver.ID,
		Content:     content,
		IsAnonymous: req.IsAnonymous,
		ReplyToID:   replyTo,
		OrnamentID:  ornamentID,
		CreatedAt:   s.now().UTC(),
	}
	n := notifications.Notification{
		ID:        uuid.NewString(),
		UserID:    receiver.ID,
		Type:      notifications.TypeMessage,
		Message:   notificationText(sender, m),
		RelatedID: utils.Ptr(m.ID),
		CreatedAt: m.CreatedAt,
	}
	if err := s.repo.Create(ctx, m, n); err != nil {
		return nil, err
	}
	return &m, nil
}

// Inbox lists owner's received messages. A protected mailbox only opens
// with the right password.
func (s *Service) Inbox(ctx context.Context, owner *users.User, mailboxPassword string) ([]Received, error) {
	if !owner.CheckMailboxPassword(mailboxPassword) {
		return nil, apperrors.Public(apperrors.ErrForbidden, "mailbox password required")
	}
	list, err := s.repo.Inbox(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].IsAnonymous {
			list[i].Sender = nil
			list[i].SenderID = ""
		}
	}
	return list, nil
}

// Outbox lists the messages user has sent.
func (s *Service) Outbox(ctx context.Context, user *users.User) ([]Sent, error) {
	return s.repo.Outbox(ctx, user.ID)
}

func notificationText(sender *users.User, m Message) string {
	if m.IsAnonymous {
		return "You received an anonymous message."
	}
	return sender.Name + " sent you a message."
}

func nilIfBlank(s *string) *string {
	if v := strings.TrimSpace(utils.Value(s)); v != "" {
		return &v
	}
	return nil
}
