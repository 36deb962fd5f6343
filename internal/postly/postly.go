// Package postly holds the domain types shared between the engines and the
// storage layer: posts, users, and the contracts the sqlite repo fulfills.
package postly

import (
	"context"
	"errors"
	"time"
)

var (
	ErrConflict = errors.New("resource already exists")
	ErrNotFound = errors.New("resource not found")
)

type (
	// Post is a news-derived article held in the local cache. The ID is
	// synthesized by the sync engine from page and position, so the same
	// remote item keeps the same ID across refreshes.
	Post struct {
		ID       int    `db:"id" json:"id"`
		Title    string `db:"title" json:"title"`
		Body     string `db:"body" json:"body"`
		Favorite bool   `db:"is_favorite" json:"isFavorite"`
	}

	// User is a locally registered account. Passwords are stored as
	// argon2id salt+hash, never plaintext.
	User struct {
		ID           int64      `db:"id" json:"id"`
		Email        string     `db:"email" json:"email"`
		PasswordHash string     `db:"password_hash" json:"-"`
		CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
		LastLogin    *time.Time `db:"last_login" json:"lastLogin"`
	}

	LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	RegisterRequest struct {
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}

	// PostStore is the local-store contract the sync and query engines run
	// against.
	PostStore interface {
		UpsertPosts(ctx context.Context, posts []Post) error
		DeletePost(ctx context.Context, id int) (int64, error)
		AllPosts(ctx context.Context) ([]Post, error)
		PostByID(ctx context.Context, id int) (Post, error)
		PostPage(ctx context.Context, limit, offset int) ([]Post, error)
		// RefreshMerge replaces the cached window with the fresh page in a
		// single transaction while keeping favorited rows alive.
		RefreshMerge(ctx context.Context, posts []Post) error
		SetFavorite(ctx context.Context, id int, favorite bool) (int64, error)
		ToggleFavorite(ctx context.Context, id int) (int64, error)
		FavoritePosts(ctx context.Context) ([]Post, error)
		SearchPosts(ctx context.Context, query string) ([]Post, error)
		CountPosts(ctx context.Context) (int, error)
	}

	// UserStore is the user-table contract the auth engine runs against.
	UserStore interface {
		CreateUser(ctx context.Context, email, passwordHash string) (User, error)
		UserByEmail(ctx context.Context, email string) (User, error)
		UserByID(ctx context.Context, id int64) (User, error)
		TouchLastLogin(ctx context.Context, id int64, at time.Time) error
		CountUsers(ctx context.Context) (int, error)
		FirstUser(ctx context.Context) (User, error)
	}
)
