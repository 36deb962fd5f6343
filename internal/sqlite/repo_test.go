package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postlyhq/postly/internal/migrations"
	"github.com/postlyhq/postly/internal/postly"
)

func newTestRepo(t *testing.T) Repo {
	t.Helper()

	dbx, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "postly.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })

	require.NoError(t, migrations.Run(dbx))

	return New(dbx)
}

func seedPosts(t *testing.T, r Repo, posts ...postly.Post) {
	t.Helper()
	require.NoError(t, r.UpsertPosts(context.Background(), posts))
}

func TestPostPageAndCount(t *testing.T) {
	var (
		ctx = context.Background()
		r   = newTestRepo(t)
	)
	seedPosts(t, r,
		postly.Post{ID: 0, Title: "zero"},
		postly.Post{ID: 1, Title: "one"},
		postly.Post{ID: 2, Title: "two"},
	)

	page, err := r.PostPage(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 1, page[0].ID)
	assert.Equal(t, 2, page[1].ID)

	count, err := r.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDeletePost(t *testing.T) {
	var (
		ctx = context.Background()
		r   = newTestRepo(t)
	)
	seedPosts(t, r,
		postly.Post{ID: 1, Title: "one"},
		postly.Post{ID: 2, Title: "two", Favorite: true},
	)

	// Explicit deletion removes the row even when favorited.
	affected, err := r.DeletePost(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	_, err = r.PostByID(ctx, 2)
	assert.ErrorIs(t, err, postly.ErrNotFound)

	// No matching row.
	affected, err = r.DeletePost(ctx, 99)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestSetFavorite(t *testing.T) {
	var (
		ctx = context.Background()
		r   = newTestRepo(t)
	)
	seedPosts(t, r, postly.Post{ID: 4, Title: "four"})

	affected, err := r.SetFavorite(ctx, 4, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	got, err := r.PostByID(ctx, 4)
	require.NoError(t, err)
	assert.True(t, got.Favorite)

	// Setting is absolute, not a flip: the same value is a no-op in effect.
	_, err = r.SetFavorite(ctx, 4, true)
	require.NoError(t, err)
	got, err = r.PostByID(ctx, 4)
	require.NoError(t, err)
	assert.True(t, got.Favorite)

	affected, err = r.SetFavorite(ctx, 99, true)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestPostByID_NotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.PostByID(context.Background(), 42)
	assert.ErrorIs(t, err, postly.ErrNotFound)
}

func TestRefreshMerge_EvictsNonFavoritesOnly(t *testing.T) {
	var (
		ctx = context.Background()
		r   = newTestRepo(t)
	)
	seedPosts(t, r,
		postly.Post{ID: 1, Title: "one"},
		postly.Post{ID: 2, Title: "two", Favorite: true},
		postly.Post{ID: 3, Title: "three"},
	)

	// Fresh page keeps 1 and 3, drops 2, adds 4.
	err := r.RefreshMerge(ctx, []postly.Post{
		{ID: 1, Title: "one again"},
		{ID: 3, Title: "three again"},
		{ID: 4, Title: "four"},
	})
	require.NoError(t, err)

	all, err := r.AllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, 1, all[0].ID)
	assert.Equal(t, 2, all[1].ID)
	assert.True(t, all[1].Favorite, "favorited post must survive eviction")
	assert.Equal(t, 3, all[2].ID)
	assert.Equal(t, 4, all[3].ID)
}

func TestRefreshMerge_ReappliesFavoriteOnOverwrite(t *testing.T) {
	var (
		ctx = context.Background()
		r   = newTestRepo(t)
	)
	seedPosts(t, r, postly.Post{ID: 5, Title: "five", Favorite: true})

	// The fresh record for id 5 arrives with the flag unset.
	err := r.RefreshMerge(ctx, []postly.Post{{ID: 5, Title: "five refreshed"}})
	require.NoError(t, err)

	got, err := r.PostByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "five refreshed", got.Title)
	assert.True(t, got.Favorite)
}

func TestRefreshMerge_EmptyPageKeepsFavorites(t *testing.T) {
	var (
		ctx = context.Background()
		r   = newTestRepo(t)
	)
	seedPosts(t, r,
		postly.Post{ID: 1, Title: "one"},
		postly.Post{ID: 2, Title: "two", Favorite: true},
	)

	require.NoError(t, r.RefreshMerge(ctx, nil))

	all, err := r.AllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].ID)
}

func TestToggleFavorite(t *testing.T) {
	var (
		ctx = context.Background()
		r   = newTestRepo(t)
	)
	seedPosts(t, r, postly.Post{ID: 7, Title: "seven"})

	affected, err := r.ToggleFavorite(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	got, err := r.PostByID(ctx, 7)
	require.NoError(t, err)
	assert.True(t, got.Favorite)

	// Second toggle flips it back.
	_, err = r.ToggleFavorite(ctx, 7)
	require.NoError(t, err)
	got, err = r.PostByID(ctx, 7)
	require.NoError(t, err)
	assert.False(t, got.Favorite)

	// No matching row.
	affected, err = r.ToggleFavorite(ctx, 99)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestSearchPosts(t *testing.T) {
	var (
		ctx = context.Background()
		r   = newTestRepo(t)
	)
	seedPosts(t, r,
		postly.Post{ID: 1, Title: "Go generics land", Body: "parametric types"},
		postly.Post{ID: 2, Title: "Rust news", Body: "borrow CHECKER deep dive"},
		postly.Post{ID: 3, Title: "Gardening", Body: "tomatoes"},
	)

	tests := []struct {
		name    string
		query   string
		wantIDs []int
	}{
		{"title match case-insensitive", "GENERICS", []int{1}},
		{"body match case-insensitive", "checker", []int{2}},
		{"empty query matches everything", "", []int{1, 2, 3}},
		{"no match", "XYZ_NOT_PRESENT", []int{}},
		{"wildcard is literal", "100%", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.SearchPosts(ctx, tt.query)
			require.NoError(t, err)

			ids := make([]int, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	var (
		ctx = context.Background()
		r   = newTestRepo(t)
	)

	usr, err := r.CreateUser(ctx, "a@b.com", "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", usr.Email)
	assert.False(t, usr.CreatedAt.IsZero())
	assert.Nil(t, usr.LastLogin)

	_, err = r.CreateUser(ctx, "a@b.com", "hash-2")
	assert.ErrorIs(t, err, postly.ErrConflict)

	count, err := r.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUserLookupsAndLastLogin(t *testing.T) {
	var (
		ctx = context.Background()
		r   = newTestRepo(t)
	)

	_, err := r.UserByEmail(ctx, "missing@b.com")
	assert.ErrorIs(t, err, postly.ErrNotFound)
	_, err = r.FirstUser(ctx)
	assert.ErrorIs(t, err, postly.ErrNotFound)

	first, err := r.CreateUser(ctx, "first@b.com", "h1")
	require.NoError(t, err)
	_, err = r.CreateUser(ctx, "second@b.com", "h2")
	require.NoError(t, err)

	got, err := r.FirstUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, r.TouchLastLogin(ctx, first.ID, at))

	got, err = r.UserByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.WithinDuration(t, at, *got.LastLogin, time.Second)
}
