package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messagely/internal/domain"
	"messagely/internal/store/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	// A single connection keeps the in-memory database (and the foreign_keys
	// pragma) alive for the whole test.
	db.SetMaxOpenConns(1)
	require.NoError(t, sqlite.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, repo *sqlite.UserRepo, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:       username,
		HashedPassword: "$2a$04$fakehashfakehashfakehash",
		FirstName:      "First-" + username,
		LastName:       "Last-" + username,
		Phone:          "555-" + username,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepoCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepo(db)
	ctx := context.Background()

	alice := seedUser(t, repo, "alice")
	assert.False(t, alice.JoinAt.IsZero())
	assert.Equal(t, alice.JoinAt, alice.LastLoginAt)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "First-alice", got.FirstName)
	assert.Equal(t, "Last-alice", got.LastName)
	assert.Equal(t, "555-alice", got.Phone)
	assert.True(t, got.JoinAt.Equal(got.LastLoginAt))

	_, err = repo.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepoDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepo(db)
	ctx := context.Background()

	seedUser(t, repo, "alice")

	dup := &domain.User{
		Username:       "alice",
		HashedPassword: "other-hash",
		FirstName:      "Other",
		LastName:       "Other",
		Phone:          "000",
	}
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)

	// The first registration is untouched.
	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "First-alice", got.FirstName)
	assert.Equal(t, "555-alice", got.Phone)
}

func TestUserRepoUpdateLoginTimestamp(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepo(db)
	ctx := context.Background()

	alice := seedUser(t, repo, "alice")

	time.Sleep(10 * time.Millisecond)
	last, err := repo.UpdateLoginTimestamp(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, last.After(alice.LastLoginAt))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.LastLoginAt.After(got.JoinAt))

	_, err = repo.UpdateLoginTimestamp(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepoList(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepo(db)
	ctx := context.Background()

	seedUser(t, repo, "carol")
	seedUser(t, repo, "alice")
	seedUser(t, repo, "bob")

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "carol", users[2].Username)
	assert.Equal(t, "First-alice", users[0].FirstName)
}

func TestMessageRepoLifecycle(t *testing.T) {
	db := newTestDB(t)
	userRepo := sqlite.NewUserRepo(db)
	msgRepo := sqlite.NewMessageRepo(db)
	ctx := context.Background()

	seedUser(t, userRepo, "alice")
	seedUser(t, userRepo, "bob")

	msg := &domain.Message{
		FromUser: &domain.UserSummary{Username: "alice"},
		ToUser:   &domain.UserSummary{Username: "bob"},
		Body:     "hello",
	}
	require.NoError(t, msgRepo.Create(ctx, msg))
	assert.NotZero(t, msg.ID)
	assert.False(t, msg.SentAt.IsZero())

	got, err := msgRepo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Body)
	assert.Nil(t, got.ReadAt)
	assert.Equal(t, "alice", got.FromUser.Username)
	assert.Equal(t, "First-alice", got.FromUser.FirstName)
	assert.Equal(t, "bob", got.ToUser.Username)
	assert.Equal(t, "555-bob", got.ToUser.Phone)

	readAt, err := msgRepo.MarkRead(ctx, msg.ID)
	require.NoError(t, err)
	assert.False(t, readAt.IsZero())

	// Idempotent: the second call keeps the first timestamp.
	time.Sleep(10 * time.Millisecond)
	again, err := msgRepo.MarkRead(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, readAt.Equal(again))

	got, err = msgRepo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReadAt)
	assert.True(t, got.ReadAt.Equal(readAt))
}

func TestMessageRepoNotFound(t *testing.T) {
	db := newTestDB(t)
	userRepo := sqlite.NewUserRepo(db)
	msgRepo := sqlite.NewMessageRepo(db)
	ctx := context.Background()

	_, err := msgRepo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)

	_, err = msgRepo.MarkRead(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)

	seedUser(t, userRepo, "alice")
	err = msgRepo.Create(ctx, &domain.Message{
		FromUser: &domain.UserSummary{Username: "alice"},
		ToUser:   &domain.UserSummary{Username: "ghost"},
		Body:     "hello?",
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepoMessageFeeds(t *testing.T) {
	db := newTestDB(t)
	userRepo := sqlite.NewUserRepo(db)
	msgRepo := sqlite.NewMessageRepo(db)
	ctx := context.Background()

	seedUser(t, userRepo, "alice")
	seedUser(t, userRepo, "bob")
	seedUser(t, userRepo, "carol")

	send := func(from, to, body string) *domain.Message {
		m := &domain.Message{
			FromUser: &domain.UserSummary{Username: from},
			ToUser:   &domain.UserSummary{Username: to},
			Body:     body,
		}
		require.NoError(t, msgRepo.Create(ctx, m))
		return m
	}
	m1 := send("alice", "bob", "one")
	m2 := send("alice", "carol", "two")
	send("bob", "alice", "three")

	from, err := userRepo.MessagesFrom(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, from, 2)
	assert.Equal(t, m1.ID, from[0].ID)
	assert.Equal(t, "bob", from[0].ToUser.Username)
	assert.Equal(t, "First-bob", from[0].ToUser.FirstName)
	assert.Nil(t, from[0].FromUser)
	assert.Equal(t, m2.ID, from[1].ID)
	assert.Equal(t, "carol", from[1].ToUser.Username)

	to, err := userRepo.MessagesTo(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "three", to[0].Body)
	assert.Equal(t, "bob", to[0].FromUser.Username)
	assert.Nil(t, to[0].ToUser)

	_, err = userRepo.MessagesFrom(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = userRepo.MessagesTo(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
