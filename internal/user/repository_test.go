package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shorty/internal/user"
	"github.com/dmitrymomot/shorty/pkg/db"
)

func TestRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create list and get", func(t *testing.T) {
		t.Parallel()
		repo := user.NewRepository(openDB(t))

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		aliceID, err := repo.Create(ctx, "alice", "hash-a", user.RoleRoot)
		require.NoError(t, err)
		bobID, err := repo.Create(ctx, "bob", "hash-b", user.RoleUser)
		require.NoError(t, err)
		assert.Greater(t, bobID, aliceID)

		users, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, user.RoleRoot, users[0].Role)
		assert.Equal(t, "bob", users[1].Username)
		assert.False(t, users[1].CreatedAt.IsZero())

		got, err := repo.Get(ctx, bobID)
		require.NoError(t, err)
		assert.Equal(t, users[1].ID, got.ID)

		_, err = repo.Get(ctx, 999)
		assert.ErrorIs(t, err, user.ErrNotFound)

		taken, err := repo.UsernameTaken(ctx, "bob")
		require.NoError(t, err)
		assert.True(t, taken)
		taken, err = repo.UsernameTaken(ctx, "carol")
		require.NoError(t, err)
		assert.False(t, taken)

		_, err = repo.Create(ctx, "bob", "other", user.RoleUser)
		assert.Error(t, err, "usernames are unique")
	})

	t.Run("credentials and updates", func(t *testing.T) {
		t.Parallel()
		repo := user.NewRepository(openDB(t))

		id, err := repo.Create(ctx, "alice", "hash-1", user.RoleUser)
		require.NoError(t, err)

		creds, err := repo.PasswordByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.Credentials{ID: id, Hash: "hash-1"}, creds)

		require.NoError(t, repo.UpdatePassword(ctx, id, "hash-2"))
		creds, err = repo.PasswordByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "hash-2", creds.Hash)

		require.NoError(t, repo.UpdateProfile(ctx, id, "alicia", user.RoleRoot))
		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "alicia", got.Username)
		assert.Equal(t, user.RoleRoot, got.Role)

		_, err = repo.PasswordByUsername(ctx, "alice")
		assert.ErrorIs(t, err, user.ErrNotFound)

		assert.ErrorIs(t, repo.UpdatePassword(ctx, 999, "x"), user.ErrNotFound)
		assert.ErrorIs(t, repo.UpdateProfile(ctx, 999, "x", user.RoleUser), user.ErrNotFound)
	})

	t.Run("tokens", func(t *testing.T) {
		t.Parallel()
		repo := user.NewRepository(openDB(t))

		id, err := repo.Create(ctx, "alice", "hash", user.RoleUser)
		require.NoError(t, err)
		require.NoError(t, repo.AddToken(ctx, "t1", id))
		require.NoError(t, repo.AddToken(ctx, "t2", id))

		who, err := repo.FindIdentityByToken(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, user.Identity{ID: id, Username: "alice", Role: user.RoleUser}, who)

		require.NoError(t, repo.DeleteToken(ctx, "t1"))
		_, err = repo.FindIdentityByToken(ctx, "t1")
		assert.ErrorIs(t, err, user.ErrNotFound)

		n, err := repo.DeleteTokensByUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		_, err = repo.FindIdentityByToken(ctx, "t2")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("transaction rolls back", func(t *testing.T) {
		t.Parallel()
		repo := user.NewRepository(openDB(t))
		fail := errors.New("abort")

		err := repo.InTx(ctx, func(ctx context.Context, tx *user.Repository) error {
			if _, err := tx.Create(ctx, "ghost", "hash", user.RoleUser); err != nil {
				return err
			}
			// nested calls join the running transaction
			return tx.InTx(ctx, func(ctx context.Context, inner *user.Repository) error {
				taken, err := inner.UsernameTaken(ctx, "ghost")
				require.NoError(t, err)
				assert.True(t, taken)
				return fail
			})
		})
		require.ErrorIs(t, err, fail)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestRepositoryStorageErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	diskErr := errors.New("disk I/O error")

	newMock := func(t *testing.T) (*user.Repository, sqlmock.Sqlmock) {
		t.Helper()
		sqldb, mock, err := sqlmock.New()
		require.NoError(t, err)
		client, err := db.NewClient(sqldb)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })
		return user.NewRepository(client), mock
	}

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		repo, mock := newMock(t)
		mock.ExpectQuery(`FROM "users"`).WillReturnError(diskErr)

		_, err := repo.List(ctx)
		require.ErrorIs(t, err, diskErr)
		assert.NotErrorIs(t, err, user.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("identity lookup is not a miss", func(t *testing.T) {
		t.Parallel()
		repo, mock := newMock(t)
		mock.ExpectQuery(`JOIN user_tokens`).WillReturnError(diskErr)

		_, err := repo.FindIdentityByToken(ctx, "tok")
		require.ErrorIs(t, err, diskErr)
		assert.NotErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("delete token", func(t *testing.T) {
		t.Parallel()
		repo, mock := newMock(t)
		mock.ExpectExec(`DELETE FROM "user_tokens"`).WillReturnError(diskErr)

		err := repo.DeleteToken(ctx, "tok")
		require.ErrorIs(t, err, diskErr)
		assert.Contains(t, err.Error(), "delete token")
	})
}
