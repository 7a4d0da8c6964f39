package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/internal/utils"
	"github.com/gistree/server/messages"
	"github.com/gistree/server/notifications"
	"github.com/gistree/server/trees"
	"github.com/gistree/server/users"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.Context(), filepath.Join(t.TempDir(), "nested", "gistree.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createUser(t *testing.T, s *UserStore, id, name, studentID string) *users.User {
	t.Helper()
	u, err := s.FindOrCreate(t.Context(), users.NewUser{
		ID:        id,
		Name:      name,
		Email:     studentID + "@gist.ac.kr",
		StudentID: studentID,
	})
	require.NoError(t, err)
	return u
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gistree.db")
	db, err := Open(t.Context(), path)
	require.NoError(t, err)
	require.NoError(t, db.Ping(t.Context()))
	require.NoError(t, db.Close())

	db, err = Open(t.Context(), path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestUserStore(t *testing.T) {
	db := openTestDB(t)
	s := NewUserStore(db)
	ctx := t.Context()

	t.Run("find or create", func(t *testing.T) {
		u := createUser(t, s, "u-1", "Kim", "20200001")
		require.Equal(t, "u-1", u.ID)
		require.False(t, u.CreatedAt.IsZero())

		again, err := s.FindOrCreate(ctx, users.NewUser{ID: "other-subject", Name: "Kim Renamed", Email: "new@gist.ac.kr", StudentID: "20200001"})
		require.NoError(t, err)
		require.Equal(t, "u-1", again.ID)
		require.Equal(t, "Kim Renamed", again.Name)
		require.Equal(t, "new@gist.ac.kr", again.Email)
		require.Equal(t, u.CreatedAt, again.CreatedAt)
	})

	t.Run("id reused by another student", func(t *testing.T) {
		_, err := s.FindOrCreate(ctx, users.NewUser{ID: "u-1", Name: "Impostor", Email: "x@gist.ac.kr", StudentID: "20209999"})
		require.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("lookups", func(t *testing.T) {
		u, err := s.GetByID(ctx, "u-1")
		require.NoError(t, err)
		require.Equal(t, "20200001", u.StudentID)

		u, err = s.GetByStudentID(ctx, "20200001")
		require.NoError(t, err)
		require.Equal(t, "u-1", u.ID)

		_, err = s.GetByID(ctx, "missing")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
		_, err = s.GetByStudentID(ctx, "missing")
		require.ErrorIs(t, err, apperrors.ErrNotFound)

		first, err := s.First(ctx)
		require.NoError(t, err)
		require.Equal(t, "u-1", first.ID)
	})

	t.Run("search", func(t *testing.T) {
		createUser(t, s, "u-2", "Park Jisoo", "20210002")
		createUser(t, s, "u-3", "park_min", "20210003")
		createUser(t, s, "u-4", "Lee", "20190004")

		found, err := s.Search(ctx, "PARK", 20)
		require.NoError(t, err)
		require.Len(t, found, 2)

		found, err = s.Search(ctx, "2021", 20)
		require.NoError(t, err)
		require.Len(t, found, 2)

		found, err = s.Search(ctx, "2021", 1)
		require.NoError(t, err)
		require.Len(t, found, 1)

		found, err = s.Search(ctx, "_", 20)
		require.NoError(t, err)
		require.Len(t, found, 1)
		require.Equal(t, "u-3", found[0].ID)

		found, err = s.Search(ctx, "%", 20)
		require.NoError(t, err)
		require.Empty(t, found)

		found, err = s.Search(ctx, "  ", 20)
		require.NoError(t, err)
		require.NotNil(t, found)
		require.Empty(t, found)
	})

	t.Run("mailbox", func(t *testing.T) {
		require.NoError(t, s.UpdateMailbox(ctx, "u-1", true, "hash"))
		u, err := s.GetByID(ctx, "u-1")
		require.NoError(t, err)
		require.True(t, u.MailboxProtected)
		require.Equal(t, "hash", u.MailboxPasswordHash)

		require.NoError(t, s.UpdateMailbox(ctx, "u-1", false, "ignored"))
		u, err = s.GetByID(ctx, "u-1")
		require.NoError(t, err)
		require.False(t, u.MailboxProtected)
		require.Empty(t, u.MailboxPasswordHash)

		require.ErrorIs(t, s.UpdateMailbox(ctx, "missing", true, "h"), apperrors.ErrNotFound)
	})
}

func TestUserStore_ConcurrentFindOrCreate(t *testing.T) {
	db := openTestDB(t)
	s := NewUserStore(db)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	ids := make([]string, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := s.FindOrCreate(context.Background(), users.NewUser{
				ID:        "same-subject",
				Name:      fmt.Sprintf("Racer %d", i),
				Email:     "racer@gist.ac.kr",
				StudentID: "20230001",
			})
			errs[i] = err
			if err == nil {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		require.Equal(t, "same-subject", ids[i])
	}
	var count int
	require.NoError(t, db.DB().QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestOrnamentStore(t *testing.T) {
	db := openTestDB(t)
	userStore := NewUserStore(db)
	s := NewOrnamentStore(db)
	ctx := t.Context()
	u := createUser(t, userStore, "u-1", "Kim", "20200001")

	catalogue, err := s.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, catalogue)
	var defaults []string
	for _, o := range catalogue {
		if o.IsDefault {
			defaults = append(defaults, o.ID)
		}
	}
	require.NotEmpty(t, defaults)

	o, err := s.Get(ctx, "star")
	require.NoError(t, err)
	require.Equal(t, "Star", o.Name)
	_, err = s.Get(ctx, "nope")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	mine, err := s.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, mine)

	require.NoError(t, s.GrantStarterOrnaments(ctx, u.ID))
	require.NoError(t, s.GrantStarterOrnaments(ctx, u.ID))
	mine, err = s.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, mine, len(defaults))
	for _, c := range mine {
		require.True(t, c.Ornament.IsDefault)
		require.Equal(t, c.OrnamentID, c.Ornament.ID)
	}

	owned, err := s.Owned(ctx, u.ID, []string{"star", "heart"})
	require.NoError(t, err)
	require.True(t, owned["star"])
	require.False(t, owned["heart"])

	owned, err = s.Owned(ctx, u.ID, nil)
	require.NoError(t, err)
	require.Empty(t, owned)

	require.ErrorIs(t, s.GrantStarterOrnaments(ctx, "missing"), apperrors.ErrNotFound)
}

func TestMessageStore(t *testing.T) {
	db := openTestDB(t)
	userStore := NewUserStore(db)
	ornamentStore := NewOrnamentStore(db)
	notificationStore := NewNotificationStore(db)
	s := NewMessageStore(db)
	ctx := t.Context()

	alice := createUser(t, userStore, "alice", "Alice", "20200001")
	bob := createUser(t, userStore, "bob", "Bob", "20200002")

	base := time.Date(2025, 12, 24, 20, 0, 0, 0, time.UTC)
	m1 := messages.Message{ID: "m-1", SenderID: alice.ID, ReceiverID: bob.ID, Content: "Merry Christmas", CreatedAt: base, OrnamentID: utils.Ptr("heart")}
	n1 := notifications.Notification{ID: "n-1", UserID: bob.ID, Type: notifications.TypeMessage, Message: "Alice sent you a message.", RelatedID: utils.Ptr("m-1"), CreatedAt: base}
	require.NoError(t, s.Create(ctx, m1, n1))

	m2 := messages.Message{ID: "m-2", SenderID: bob.ID, ReceiverID: alice.ID, Content: "Thanks!", ReplyToID: utils.Ptr("m-1"), IsAnonymous: true, CreatedAt: base.Add(time.Minute)}
	n2 := notifications.Notification{ID: "n-2", UserID: alice.ID, Type: notifications.TypeMessage, Message: "x", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, s.Create(ctx, m2, n2))

	t.Run("get", func(t *testing.T) {
		got, err := s.Get(ctx, "m-2")
		require.NoError(t, err)
		require.Equal(t, "m-1", utils.Value(got.ReplyToID))
		require.True(t, got.IsAnonymous)
		require.Equal(t, base.Add(time.Minute), got.CreatedAt)

		_, err = s.Get(ctx, "missing")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("inbox and outbox", func(t *testing.T) {
		inbox, err := s.Inbox(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, inbox, 1)
		require.Equal(t, "Alice", inbox[0].Sender.Name)

		sent, err := s.Outbox(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, sent, 1)
		require.Equal(t, "Bob", sent[0].Receiver.Name)
	})

	t.Run("side effects", func(t *testing.T) {
		owned, err := ornamentStore.Owned(ctx, bob.ID, []string{"heart"})
		require.NoError(t, err)
		require.True(t, owned["heart"])

		list, err := notificationStore.ListByUser(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "m-1", utils.Value(list[0].RelatedID))
	})

	t.Run("failure leaves nothing behind", func(t *testing.T) {
		bad := messages.Message{ID: "m-3", SenderID: alice.ID, ReceiverID: bob.ID, Content: "x", OrnamentID: utils.Ptr("no-such-ornament"), CreatedAt: base}
		err := s.Create(ctx, bad, notifications.Notification{ID: "n-3", UserID: bob.ID, Type: notifications.TypeMessage, Message: "x", CreatedAt: base})
		require.ErrorIs(t, err, apperrors.ErrNotFound)

		_, err = s.Get(ctx, "m-3")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
		list, err := notificationStore.ListByUser(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("duplicate notification rolls back message", func(t *testing.T) {
		m := messages.Message{ID: "m-4", SenderID: alice.ID, ReceiverID: bob.ID, Content: "x", CreatedAt: base}
		err := s.Create(ctx, m, n1)
		require.Error(t, err)
		_, err = s.Get(ctx, "m-4")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestNotificationStore_MarkRead(t *testing.T) {
	db := openTestDB(t)
	userStore := NewUserStore(db)
	messageStore := NewMessageStore(db)
	s := NewNotificationStore(db)
	ctx := t.Context()

	alice := createUser(t, userStore, "alice", "Alice", "20200001")
	bob := createUser(t, userStore, "bob", "Bob", "20200002")
	now := time.Now().UTC()
	require.NoError(t, messageStore.Create(ctx,
		messages.Message{ID: "m-1", SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi", CreatedAt: now},
		notifications.Notification{ID: "n-1", UserID: bob.ID, Type: notifications.TypeMessage, Message: "hi", CreatedAt: now},
	))

	_, err := s.MarkRead(ctx, alice.ID, "n-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	n, err := s.MarkRead(ctx, bob.ID, "n-1")
	require.NoError(t, err)
	require.True(t, n.IsRead)

	list, err := s.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.True(t, list[0].IsRead)

	_, err = s.MarkRead(ctx, bob.ID, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTreeStore(t *testing.T) {
	db := openTestDB(t)
	userStore := NewUserStore(db)
	s := NewTreeStore(db)
	ctx := t.Context()
	u := createUser(t, userStore, "u-1", "Kim", "20200001")

	_, err := s.Get(ctx, u.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	d := trees.Decorations{
		"slot-1": {OrnamentID: "star", Position: trees.Position{X: 0.5, Y: 0.1}, Scale: utils.Ptr(1.5)},
	}
	saved, err := s.SaveDecorations(ctx, u.ID, d)
	require.NoError(t, err)
	require.Equal(t, d, saved.Decorations)
	require.False(t, saved.IsLocked)

	locked, err := s.SetLock(ctx, u.ID, true, "hash")
	require.NoError(t, err)
	require.True(t, locked.IsLocked)
	require.Equal(t, "hash", locked.PasswordHash)
	require.Equal(t, d, locked.Decorations)

	unlocked, err := s.SetLock(ctx, u.ID, false, "ignored")
	require.NoError(t, err)
	require.False(t, unlocked.IsLocked)
	require.Empty(t, unlocked.PasswordHash)

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, d, got.Decorations)

	_, err = s.SaveDecorations(ctx, "missing", d)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	lockOnly, err := s.SetLock(ctx, createUser(t, userStore, "u-2", "Lee", "20200002").ID, true, "h")
	require.NoError(t, err)
	require.Empty(t, lockOnly.Decorations)
}
