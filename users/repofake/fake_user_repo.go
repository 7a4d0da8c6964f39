package fakeuserrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users      map[string]*users.User
	studentIds map[string]string // student id to user id
	lock       sync.RWMutex

	// FailWith, when set, is returned by every call.
	FailWith error
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:      make(map[string]*users.User),
		studentIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) FindOrCreate(_ context.Context, u users.NewUser) (*users.User, error) {
	if ur.FailWith != nil {
		return nil, ur.FailWith
	}
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if id, ok := ur.studentIds[u.StudentID]; ok {
		existing := ur.users[id]
		existing.Name = u.Name
		existing.Email = u.Email
		return copyUser(existing), nil
	}
	if _, ok := ur.users[u.ID]; ok {
		return nil, apperrors.Wrapf(apperrors.ErrConflict, "user id %s already exists", u.ID)
	}

	created := &users.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		StudentID: u.StudentID,
		CreatedAt: time.Now().UTC(),
	}
	ur.users[created.ID] = created
	ur.studentIds[created.StudentID] = created.ID
	return copyUser(created), nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	if ur.FailWith != nil {
		return nil, ur.FailWith
	}
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	return copyUser(u), nil
}

func (ur *FakeUserRepo) GetByStudentID(ctx context.Context, studentID string) (*users.User, error) {
	ur.lock.RLock()
	id, ok := ur.studentIds[studentID]
	ur.lock.RUnlock()
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "student %s", studentID)
	}
	return ur.GetByID(ctx, id)
}

func (ur *FakeUserRepo) First(_ context.Context) (*users.User, error) {
	all := ur.sorted()
	if len(all) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "no users")
	}
	return all[0], nil
}

func (ur *FakeUserRepo) Search(_ context.Context, query string, limit int) ([]*users.User, error) {
	if ur.FailWith != nil {
		return nil, ur.FailWith
	}
	query = strings.ToLower(strings.TrimSpace(query))
	result := make([]*users.User, 0)
	if query == "" {
		return result, nil
	}
	for _, u := range ur.sorted() {
		if strings.Contains(strings.ToLower(u.Name), query) || strings.Contains(strings.ToLower(u.StudentID), query) {
			result = append(result, u)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

func (ur *FakeUserRepo) UpdateMailbox(_ context.Context, id string, protected bool, passwordHash string) error {
	if ur.FailWith != nil {
		return ur.FailWith
	}
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "user %s", id)
	}
	u.MailboxProtected = protected
	if protected {
		u.MailboxPasswordHash = passwordHash
	} else {
		u.MailboxPasswordHash = ""
	}
	return nil
}

// Count returns the number of stored users.
func (ur *FakeUserRepo) Count() int {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return len(ur.users)
}

func (ur *FakeUserRepo) sorted() []*users.User {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	list := make([]*users.User, 0, len(ur.users))
	for _, u := range ur.users {
		list = append(list, copyUser(u))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func copyUser(u *users.User) *users.User {
	c := *u
	return &c
}
