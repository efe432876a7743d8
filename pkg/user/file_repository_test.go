package user

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/device-trust-demo/pkg/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	dataDir := filepath.Join(os.TempDir(), "user-repo-test-"+uuid.New().String())
	s, err := store.Open(dataDir)
	require.NoError(t, err)
	t.Cleanup(func() {
		os.RemoveAll(dataDir)
	})
	return s
}

func newTestUser(username string) User {
	return User{
		ID:        uuid.New().String(),
		Name:      "Test " + username,
		Username:  username,
		Password:  "secret",
		CreatedAt: time.Now().UTC(),
	}
}

func TestFileUserRepository_CreateAndFind(t *testing.T) {
	s := setupTestStore(t)
	repo := NewFileUserRepository(s)
	ctx := context.Background()

	u := newTestUser("alice")
	created, err := repo.CreateUser(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, u.ID, created.ID)

	byID, err := repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := repo.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = repo.GetUserByID(ctx, uuid.New().String())
	assert.True(t, errors.Is(err, ErrUserNotFound))

	_, err = repo.FindUserByUsername(ctx, "bob")
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestFileUserRepository_DuplicateUsername(t *testing.T) {
	s := setupTestStore(t)
	repo := NewFileUserRepository(s)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, newTestUser("alice"))
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, newTestUser("alice"))
	var dupErr ErrUsernameAlreadyExists
	require.ErrorAs(t, err, &dupErr)

	users, err := repo.FindUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestFileUserRepository_SurvivesReopen(t *testing.T) {
	dataDir := filepath.Join(os.TempDir(), "user-repo-test-"+uuid.New().String())
	t.Cleanup(func() {
		os.RemoveAll(dataDir)
	})

	s, err := store.Open(dataDir)
	require.NoError(t, err)
	repo := NewFileUserRepository(s)
	ctx := context.Background()

	u := newTestUser("alice")
	_, err = repo.CreateUser(ctx, u)
	require.NoError(t, err)

	reopened, err := store.Open(dataDir)
	require.NoError(t, err)
	repo2 := NewFileUserRepository(reopened)

	found, err := repo2.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.WithinDuration(t, u.CreatedAt, found.CreatedAt, time.Second)
}
