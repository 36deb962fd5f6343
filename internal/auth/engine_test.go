package auth_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postlyhq/postly/internal/apperr"
	"github.com/postlyhq/postly/internal/auth"
	"github.com/postlyhq/postly/internal/migrations"
	"github.com/postlyhq/postly/internal/postly"
	"github.com/postlyhq/postly/internal/sqlite"
)

func newTestEngine(t *testing.T) (*auth.Engine, sqlite.Repo) {
	t.Helper()

	dbx, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "postly.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })

	require.NoError(t, migrations.Run(dbx))

	repo := sqlite.New(dbx)
	return auth.NewEngine(repo), repo
}

func register(t *testing.T, e *auth.Engine, email, password string) postly.User {
	t.Helper()

	res := e.Register(context.Background(), postly.RegisterRequest{
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	require.True(t, res.IsSuccess(), "registration failed: %v", res.Err())
	return res.MustValue()
}

func TestLogin(t *testing.T) {
	var (
		ctx  = context.Background()
		e, _ = newTestEngine(t)
	)
	register(t, e, "a@b.com", "Secret123!")

	t.Run("unknown email", func(t *testing.T) {
		res := e.Login(ctx, postly.LoginRequest{Email: "nobody@b.com", Password: "Secret123!"})
		require.True(t, res.IsError())
		assert.ErrorIs(t, res.Err(), apperr.UserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		res := e.Login(ctx, postly.LoginRequest{Email: "a@b.com", Password: "wrong"})
		require.True(t, res.IsError())
		assert.ErrorIs(t, res.Err(), apperr.InvalidPassword)
	})

	t.Run("success touches last login", func(t *testing.T) {
		before := time.Now().UTC().Add(-time.Second)

		res := e.Login(ctx, postly.LoginRequest{Email: "a@b.com", Password: "Secret123!"})
		require.True(t, res.IsSuccess(), "login failed: %v", res.Err())

		usr := res.MustValue()
		require.NotNil(t, usr.LastLogin)
		assert.True(t, usr.LastLogin.After(before), "lastLogin must be at or after the call time")
	})
}

func TestRegister(t *testing.T) {
	var (
		ctx     = context.Background()
		e, repo = newTestEngine(t)
	)

	usr := register(t, e, "a@b.com", "Secret123!")
	assert.Equal(t, "a@b.com", usr.Email)
	assert.NotEmpty(t, usr.PasswordHash)
	assert.NotEqual(t, "Secret123!", usr.PasswordHash, "passwords are never stored in the clear")

	t.Run("duplicate email leaves store unchanged", func(t *testing.T) {
		res := e.Register(ctx, postly.RegisterRequest{
			Email:           "a@b.com",
			Password:        "Other456!",
			ConfirmPassword: "Other456!",
		})
		require.True(t, res.IsError())
		assert.ErrorIs(t, res.Err(), apperr.EmailAlreadyRegistered)

		count, err := repo.CountUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestIsLoggedInAndCurrentUser(t *testing.T) {
	var (
		ctx  = context.Background()
		e, _ = newTestEngine(t)
	)

	loggedIn, err := e.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)

	_, err = e.CurrentUser(ctx)
	assert.ErrorIs(t, err, postly.ErrNotFound)

	first := register(t, e, "first@b.com", "Secret123!")
	register(t, e, "second@b.com", "Secret123!")

	loggedIn, err = e.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, loggedIn)

	current, err := e.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ID, "current user is the earliest registration")

	// Logout clears nothing at this layer.
	require.NoError(t, e.Logout(ctx))
	loggedIn, err = e.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, loggedIn)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := auth.HashPassword("Secret123!")
	require.NoError(t, err)

	assert.True(t, auth.VerifyPassword("Secret123!", hash))
	assert.False(t, auth.VerifyPassword("secret123!", hash))
	assert.False(t, auth.VerifyPassword("Secret123!", "not-base64!!"))

	// A second hash of the same password gets a different salt.
	other, err := auth.HashPassword("Secret123!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}
