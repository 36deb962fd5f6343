// Package auth is the login/registration engine over the local user store.
//
// There is no session token at this layer: the device is considered logged in
// while any user row exists. That single-account assumption is deliberate and
// documented, not enforced.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/postlyhq/postly/internal/apperr"
	"github.com/postlyhq/postly/internal/postly"
)

type Engine struct {
	users postly.UserStore
	now   func() time.Time
}

func NewEngine(users postly.UserStore) *Engine {
	return &Engine{
		users: users,
		now:   time.Now,
	}
}

// Login checks the credentials against the stored account and touches
// lastLogin on success. Callers validate input shape first; this only decides
// between UserNotFound, InvalidPassword, and success.
func (e *Engine) Login(ctx context.Context, req postly.LoginRequest) postly.Result[postly.User] {
	usr, err := e.users.UserByEmail(ctx, req.Email)
	if errors.Is(err, postly.ErrNotFound) {
		return postly.Fail[postly.User](apperr.UserNotFound)
	}
	if err != nil {
		return postly.Fail[postly.User](apperr.Custom(
			"DB_LOGIN_001",
			"Login failed. Please try again.",
			"login lookup: "+err.Error(),
		))
	}

	if !VerifyPassword(req.Password, usr.PasswordHash) {
		return postly.Fail[postly.User](apperr.InvalidPassword)
	}

	at := e.now().UTC()
	if err := e.users.TouchLastLogin(ctx, usr.ID, at); err != nil {
		return postly.Fail[postly.User](apperr.Custom(
			"DB_LOGIN_001",
			"Login failed. Please try again.",
			"last login update: "+err.Error(),
		))
	}
	usr.LastLogin = &at

	return postly.Ok(usr)
}

// Register creates an account for a new email. Password/confirm equality and
// strength were already validated by the caller.
func (e *Engine) Register(ctx context.Context, req postly.RegisterRequest) postly.Result[postly.User] {
	_, err := e.users.UserByEmail(ctx, req.Email)
	if err == nil {
		return postly.Fail[postly.User](apperr.EmailAlreadyRegistered)
	}
	if !errors.Is(err, postly.ErrNotFound) {
		return postly.Fail[postly.User](apperr.Custom(
			"DB_REG_001",
			"Registration failed. Please try again.",
			"registration lookup: "+err.Error(),
		))
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return postly.Fail[postly.User](apperr.Custom(
			"DB_REG_001",
			"Registration failed. Please try again.",
			"password hashing: "+err.Error(),
		))
	}

	usr, err := e.users.CreateUser(ctx, req.Email, hash)
	if errors.Is(err, postly.ErrConflict) {
		// Lost the race to another registration for the same email.
		return postly.Fail[postly.User](apperr.EmailAlreadyRegistered)
	}
	if errors.Is(err, postly.ErrNotFound) {
		// Inserted but the re-read came back empty.
		return postly.Fail[postly.User](apperr.UserCreationFailed)
	}
	if err != nil {
		return postly.Fail[postly.User](apperr.Custom(
			"DB_REG_001",
			"Registration failed. Please try again.",
			"registration insert: "+err.Error(),
		))
	}

	return postly.Ok(usr)
}

// IsLoggedIn reports whether any account exists on this device.
func (e *Engine) IsLoggedIn(ctx context.Context) (bool, error) {
	count, err := e.users.CountUsers(ctx)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// CurrentUser returns the earliest registered account, or postly.ErrNotFound
// when none exists.
func (e *Engine) CurrentUser(ctx context.Context) (postly.User, error) {
	return e.users.FirstUser(ctx)
}

// Logout is a no-op at this layer; any session state lives with the caller.
func (e *Engine) Logout(ctx context.Context) error {
	return nil
}
