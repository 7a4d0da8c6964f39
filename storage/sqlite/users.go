package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/users"
)

// UserStore implements users.Repo using SQLite.
type UserStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db.DB(), now: time.Now}
}

var _ users.Repo = (*UserStore)(nil)

const userColumns = `id, name, email, student_id, mailbox_protected, mailbox_password_hash, created_at`

func scanUser(row scanner) (*users.User, error) {
	var (
		u         users.User
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.StudentID, &u.MailboxProtected, &u.MailboxPasswordHash, &createdAt); err != nil {
		return nil, err
	}
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}

// FindOrCreate inserts the user or, when the student id is already known,
// refreshes name and email on the existing row. Both happen in one
// statement, so concurrent first logins end with a single row.
func (s *UserStore) FindOrCreate(ctx context.Context, nu users.NewUser) (*users.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, student_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (student_id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email
		RETURNING `+userColumns,
		nu.ID, nu.Name, nu.Email, nu.StudentID, toMillis(s.now()),
	)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Wrapf(apperrors.ErrConflict, "user id %s belongs to another student", nu.ID)
		}
		return nil, fmt.Errorf("upserting user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*users.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (s *UserStore) GetByStudentID(ctx context.Context, studentID string) (*users.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE student_id = ?`, studentID)
}

func (s *UserStore) First(ctx context.Context) (*users.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT 1`)
}

func (s *UserStore) getOne(ctx context.Context, query string, args ...any) (*users.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// Search matches name or student id, ignoring ASCII case.
func (s *UserStore) Search(ctx context.Context, query string, limit int) ([]*users.User, error) {
	result := make([]*users.User, 0)
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return result, nil
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE name LIKE ? ESCAPE '\' OR student_id LIKE ? ESCAPE '\'
		ORDER BY name, student_id
		LIMIT ?`,
		pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s *UserStore) UpdateMailbox(ctx context.Context, id string, protected bool, passwordHash string) error {
	if !protected {
		passwordHash = ""
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET mailbox_protected = ?, mailbox_password_hash = ? WHERE id = ?`,
		protected, passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating mailbox: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating mailbox: %w", err)
	}
	if n == 0 {
		return apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
