package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/ornaments"
)

// OrnamentStore implements ornaments.Repo using SQLite.
type OrnamentStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewOrnamentStore(db *DB) *OrnamentStore {
	return &OrnamentStore{db: db.DB(), now: time.Now}
}

var _ ornaments.Repo = (*OrnamentStore)(nil)

const ornamentColumns = `o.id, o.name, o.image_url, o.description, o.is_default`

func scanOrnament(row scanner, extra ...any) (*ornaments.Ornament, error) {
	var o ornaments.Ornament
	dest := append([]any{&o.ID, &o.Name, &o.ImageURL, &o.Description, &o.IsDefault}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *OrnamentStore) List(ctx context.Context) ([]ornaments.Ornament, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+ornamentColumns+` FROM ornaments o ORDER BY o.is_default DESC, o.name`)
	if err != nil {
		return nil, fmt.Errorf("listing ornaments: %w", err)
	}
	defer rows.Close()

	result := make([]ornaments.Ornament, 0)
	for rows.Next() {
		o, err := scanOrnament(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ornament: %w", err)
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

func (s *OrnamentStore) Get(ctx context.Context, id string) (*ornaments.Ornament, error) {
	o, err := scanOrnament(s.db.QueryRowContext(ctx, `SELECT `+ornamentColumns+` FROM ornaments o WHERE o.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "ornament %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying ornament: %w", err)
	}
	return o, nil
}

func (s *OrnamentStore) ListByUser(ctx context.Context, userID string) ([]ornaments.Collected, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ornamentColumns+`, uo.acquired_at
		FROM user_ornaments uo
		JOIN ornaments o ON o.id = uo.ornament_id
		WHERE uo.user_id = ?
		ORDER BY uo.acquired_at, o.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user ornaments: %w", err)
	}
	defer rows.Close()

	result := make([]ornaments.Collected, 0)
	for rows.Next() {
		var acquiredAt int64
		o, err := scanOrnament(rows, &acquiredAt)
		if err != nil {
			return nil, fmt.Errorf("scanning user ornament: %w", err)
		}
		result = append(result, ornaments.Collected{
			UserID:     userID,
			OrnamentID: o.ID,
			Ornament:   *o,
			AcquiredAt: fromMillis(acquiredAt),
		})
	}
	return result, rows.Err()
}

func (s *OrnamentStore) Owned(ctx context.Context, userID string, ornamentIDs []string) (map[string]bool, error) {
	owned := make(map[string]bool, len(ornamentIDs))
	if len(ornamentIDs) == 0 {
		return owned, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ornamentIDs)), ",")
	args := make([]any, 0, len(ornamentIDs)+1)
	args = append(args, userID)
	for _, id := range ornamentIDs {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ornament_id FROM user_ornaments WHERE user_id = ? AND ornament_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("checking ornament ownership: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning ornament id: %w", err)
		}
		owned[id] = true
	}
	return owned, rows.Err()
}

func (s *OrnamentStore) GrantStarterOrnaments(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_ornaments (user_id, ornament_id, acquired_at)
		SELECT ?, id, ? FROM ornaments WHERE is_default = 1
		ON CONFLICT (user_id, ornament_id) DO NOTHING`,
		userID, toMillis(s.now()),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.Wrapf(apperrors.ErrNotFound, "user %s", userID)
		}
		return fmt.Errorf("granting starter ornaments: %w", err)
	}
	return nil
}

// grantOrnament adds one ornament to a user's collection inside tx.
func grantOrnament(ctx context.Context, tx *sql.Tx, userID, ornamentID string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO user_ornaments (user_id, ornament_id, acquired_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, ornament_id) DO NOTHING`,
		userID, ornamentID, toMillis(at),
	)
	if err != nil {
		return fmt.Errorf("granting ornament: %w", err)
	}
	return nil
}
