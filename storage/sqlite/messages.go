package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/messages"
	"github.com/gistree/server/notifications"
)

// MessageStore implements messages.Repo using SQLite.
type MessageStore struct {
	db *sql.DB
}

func NewMessageStore(db *DB) *MessageStore {
	return &MessageStore{db: db.DB()}
}

var _ messages.Repo = (*MessageStore)(nil)

const messageColumns = `m.id, m.sender_id, m.receiver_id, m.content, m.is_anonymous, m.reply_to_id, m.ornament_id, m.created_at`

func scanMessage(row scanner, extra ...any) (*messages.Message, error) {
	var (
		m          messages.Message
		replyTo    sql.NullString
		ornamentID sql.NullString
		createdAt  int64
	)
	dest := append([]any{&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsAnonymous, &replyTo, &ornamentID, &createdAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	m.ReplyToID = stringPtr(replyTo)
	m.OrnamentID = stringPtr(ornamentID)
	m.CreatedAt = fromMillis(createdAt)
	return &m, nil
}

func (s *MessageStore) Create(ctx context.Context, m messages.Message, n notifications.Notification) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollback(tx)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, content, is_anonymous, reply_to_id, ornament_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.SenderID, m.ReceiverID, m.Content, m.IsAnonymous,
		nullString(m.ReplyToID), nullString(m.OrnamentID), toMillis(m.CreatedAt),
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return apperrors.Wrapf(apperrors.ErrConflict, "message %s", m.ID)
		case isForeignKeyViolation(err):
			return apperrors.Wrapf(apperrors.ErrNotFound, "message references a missing user, message or ornament")
		}
		return fmt.Errorf("inserting message: %w", err)
	}

	if err := insertNotification(ctx, tx, n); err != nil {
		return err
	}

	if m.OrnamentID != nil {
		if err := grantOrnament(ctx, tx, m.ReceiverID, *m.OrnamentID, m.CreatedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *MessageStore) Get(ctx context.Context, id string) (*messages.Message, error) {
	m, err := scanMessage(s.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages m WHERE m.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "message %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying message: %w", err)
	}
	return m, nil
}

func (s *MessageStore) Inbox(ctx context.Context, userID string) ([]messages.Received, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+`, u.id, u.name, u.student_id
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.receiver_id = ?
		ORDER BY m.created_at DESC, m.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inbox: %w", err)
	}
	defer rows.Close()

	result := make([]messages.Received, 0)
	for rows.Next() {
		var sender messages.Party
		m, err := scanMessage(rows, &sender.ID, &sender.Name, &sender.StudentID)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		result = append(result, messages.Received{Message: *m, Sender: &sender})
	}
	return result, rows.Err()
}

func (s *MessageStore) Outbox(ctx context.Context, userID string) ([]messages.Sent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+`, u.id, u.name, u.student_id
		FROM messages m
		JOIN users u ON u.id = m.receiver_id
		WHERE m.sender_id = ?
		ORDER BY m.created_at DESC, m.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sent messages: %w", err)
	}
	defer rows.Close()

	result := make([]messages.Sent, 0)
	for rows.Next() {
		var receiver messages.Party
		m, err := scanMessage(rows, &receiver.ID, &receiver.Name, &receiver.StudentID)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		result = append(result, messages.Sent{Message: *m, Receiver: receiver})
	}
	return result, rows.Err()
}
