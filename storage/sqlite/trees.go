package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/trees"
)

// TreeStore implements trees.Repo using SQLite. Decorations are stored as
// a JSON document.
type TreeStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewTreeStore(db *DB) *TreeStore {
	return &TreeStore{db: db.DB(), now: time.Now}
}

var _ trees.Repo = (*TreeStore)(nil)

const treeColumns = `user_id, decorations, is_locked, password_hash, updated_at`

func scanTree(row scanner) (*trees.Tree, error) {
	var (
		t           trees.Tree
		decorations string
		updatedAt   int64
	)
	if err := row.Scan(&t.UserID, &decorations, &t.IsLocked, &t.PasswordHash, &updatedAt); err != nil {
		return nil, err
	}
	t.Decorations = trees.Decorations{}
	if err := json.Unmarshal([]byte(decorations), &t.Decorations); err != nil {
		return nil, fmt.Errorf("decoding decorations for %s: %w", t.UserID, err)
	}
	ts := fromMillis(updatedAt)
	t.UpdatedAt = &ts
	return &t, nil
}

func (s *TreeStore) Get(ctx context.Context, userID string) (*trees.Tree, error) {
	t, err := scanTree(s.db.QueryRowContext(ctx, `SELECT `+treeColumns+` FROM user_trees WHERE user_id = ?`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "tree for %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying tree: %w", err)
	}
	return t, nil
}

func (s *TreeStore) SaveDecorations(ctx context.Context, userID string, d trees.Decorations) (*trees.Tree, error) {
	if d == nil {
		d = trees.Decorations{}
	}
	encoded, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding decorations: %w", err)
	}
	return s.upsert(ctx, `
		INSERT INTO user_trees (user_id, decorations, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			decorations = excluded.decorations,
			updated_at = excluded.updated_at
		RETURNING `+treeColumns,
		userID, string(encoded), toMillis(s.now()),
	)
}

func (s *TreeStore) SetLock(ctx context.Context, userID string, locked bool, passwordHash string) (*trees.Tree, error) {
	if !locked {
		passwordHash = ""
	}
	return s.upsert(ctx, `
		INSERT INTO user_trees (user_id, is_locked, password_hash, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			is_locked = excluded.is_locked,
			password_hash = excluded.password_hash,
			updated_at = excluded.updated_at
		RETURNING `+treeColumns,
		userID, locked, passwordHash, toMillis(s.now()),
	)
}

func (s *TreeStore) upsert(ctx context.Context, query string, args ...any) (*trees.Tree, error) {
	t, err := scanTree(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user %v", args[0])
		}
		return nil, fmt.Errorf("saving tree: %w", err)
	}
	return t, nil
}
