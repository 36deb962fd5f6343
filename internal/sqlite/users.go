package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"

	"github.com/postlyhq/postly/internal/postly"
)

// sqlite extended error code for a UNIQUE constraint violation.
const sqliteConstraintUnique = 2067

func (r Repo) CreateUser(ctx context.Context, email, passwordHash string) (postly.User, error) {
	const q = `INSERT INTO users (email, password_hash, created_at)
	VALUES (?, ?, ?);`

	res, err := r.db.ExecContext(ctx, q, email, passwordHash, time.Now().UTC())
	if sqliteErr := (&sqlite.Error{}); errors.As(err, &sqliteErr) && sqliteErr.Code() == sqliteConstraintUnique {
		return postly.User{}, fmt.Errorf("user already exists: %w", postly.ErrConflict)
	}
	if err != nil {
		return postly.User{}, fmt.Errorf("error inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return postly.User{}, fmt.Errorf("error reading inserted user id: %w", err)
	}

	return r.UserByID(ctx, id)
}

func (r Repo) UserByEmail(ctx context.Context, email string) (postly.User, error) {
	const q = `SELECT * FROM users WHERE email = ? LIMIT 1;`

	var usr postly.User
	err := r.db.GetContext(ctx, &usr, q, email)
	if errors.Is(err, sql.ErrNoRows) {
		return postly.User{}, postly.ErrNotFound
	}
	if err != nil {
		return postly.User{}, fmt.Errorf("error fetching user by email: %w", err)
	}

	return usr, nil
}

func (r Repo) UserByID(ctx context.Context, id int64) (postly.User, error) {
	const q = `SELECT * FROM users WHERE id = ? LIMIT 1;`

	var usr postly.User
	err := r.db.GetContext(ctx, &usr, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return postly.User{}, postly.ErrNotFound
	}
	if err != nil {
		return postly.User{}, fmt.Errorf("error fetching user: %w", err)
	}

	return usr, nil
}

func (r Repo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	const q = `UPDATE users SET last_login = ? WHERE id = ?;`

	if _, err := r.db.ExecContext(ctx, q, at, id); err != nil {
		return fmt.Errorf("error updating last login: %w", err)
	}

	return nil
}

func (r Repo) CountUsers(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM users;`

	var count int
	if err := r.db.GetContext(ctx, &count, q); err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}

	return count, nil
}

// FirstUser returns the earliest registered user, the device owner under the
// single-account assumption.
func (r Repo) FirstUser(ctx context.Context) (postly.User, error) {
	const q = `SELECT * FROM users ORDER BY id ASC LIMIT 1;`

	var usr postly.User
	err := r.db.GetContext(ctx, &usr, q)
	if errors.Is(err, sql.ErrNoRows) {
		return postly.User{}, postly.ErrNotFound
	}
	if err != nil {
		return postly.User{}, fmt.Errorf("error fetching first user: %w", err)
	}

	return usr, nil
}
