package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/notifications"
)

// NotificationStore implements notifications.Repo using SQLite.
type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *DB) *NotificationStore {
	return &NotificationStore{db: db.DB()}
}

var _ notifications.Repo = (*NotificationStore)(nil)

const notificationColumns = `id, user_id, type, message, related_id, is_read, created_at`

func scanNotification(row scanner) (*notifications.Notification, error) {
	var (
		n         notifications.Notification
		relatedID sql.NullString
		createdAt int64
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &relatedID, &n.IsRead, &createdAt); err != nil {
		return nil, err
	}
	n.RelatedID = stringPtr(relatedID)
	n.CreatedAt = fromMillis(createdAt)
	return &n, nil
}

func insertNotification(ctx context.Context, tx *sql.Tx, n notifications.Notification) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, message, related_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Type, n.Message, nullString(n.RelatedID), n.IsRead, toMillis(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID string) ([]notifications.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	result := make([]notifications.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		result = append(result, *n)
	}
	return result, rows.Err()
}

func (s *NotificationStore) MarkRead(ctx context.Context, userID, id string) (*notifications.Notification, error) {
	n, err := scanNotification(s.db.QueryRowContext(ctx, `
		UPDATE notifications SET is_read = 1
		WHERE id = ? AND user_id = ?
		RETURNING `+notificationColumns,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Public(apperrors.ErrNotFound, "Notification not found")
	}
	if err != nil {
		return nil, fmt.Errorf("marking notification read: %w", err)
	}
	return n, nil
}
