package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/conftrack/internal/apperror"
	"github.com/sakif/conftrack/internal/model"
)

func int64Ptr(n int64) *int64 { return &n }

func TestUserCreate_PasswordAccount(t *testing.T) {
	users := newTestDB(t).Users()
	ctx := context.Background()

	u := &model.User{Login: "root", PasswordHash: "$2a$10$hash", Admin: true}
	require.NoError(t, users.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	found, err := users.GetByLogin(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Nil(t, found.GitHubID)
	assert.True(t, found.Admin)
	assert.Equal(t, "$2a$10$hash", found.PasswordHash)
	assert.Equal(t, model.RoleAdmin, found.Role())
}

func TestUserCreate_DuplicateLogin(t *testing.T) {
	users := newTestDB(t).Users()
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &model.User{Login: "root"}))

	err := users.Create(ctx, &model.User{Login: "root"})
	appErr, ok := apperror.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Login has already been taken"}, appErr.For("login"))
}

func TestUserGetByID_NotFound(t *testing.T) {
	users := newTestDB(t).Users()

	_, err := users.GetByID(context.Background(), "nope")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserUpsertGitHub(t *testing.T) {
	users := newTestDB(t).Users()
	ctx := context.Background()

	first := &model.User{GitHubID: int64Ptr(42), Login: "octocat", Email: "old@example.com"}
	require.NoError(t, users.UpsertGitHub(ctx, first))
	require.NotEmpty(t, first.ID)
	assert.False(t, first.Admin)

	second := &model.User{GitHubID: int64Ptr(42), Login: "octocat", Email: "new@example.com"}
	require.NoError(t, users.UpsertGitHub(ctx, second))
	assert.Equal(t, first.ID, second.ID, "same GitHub account, same row")

	found, err := users.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", found.Email)
	require.NotNil(t, found.GitHubID)
	assert.Equal(t, int64(42), *found.GitHubID)
}

func TestUserUpsertGitHub_KeepsAdminFlag(t *testing.T) {
	db := newTestDB(t)
	users := db.Users()
	ctx := context.Background()

	u := &model.User{GitHubID: int64Ptr(7), Login: "organizer"}
	require.NoError(t, users.UpsertGitHub(ctx, u))
	_, err := db.conn.ExecContext(ctx, `UPDATE users SET admin = 1 WHERE id = ?`, u.ID)
	require.NoError(t, err)

	again := &model.User{GitHubID: int64Ptr(7), Login: "organizer", Admin: false}
	require.NoError(t, users.UpsertGitHub(ctx, again))
	assert.True(t, again.Admin)
}

func TestUserUpsertGitHub_RequiresGitHubID(t *testing.T) {
	users := newTestDB(t).Users()
	assert.Error(t, users.UpsertGitHub(context.Background(), &model.User{Login: "x"}))
}
