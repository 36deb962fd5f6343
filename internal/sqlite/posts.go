package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/postlyhq/postly/internal/postly"
)

func (r Repo) UpsertPosts(ctx context.Context, posts []postly.Post) error {
	if len(posts) == 0 {
		return nil
	}

	const q = `INSERT OR REPLACE INTO posts (id, title, body, is_favorite)
	VALUES (:id, :title, :body, :is_favorite);`
	if _, err := r.db.NamedExecContext(ctx, q, posts); err != nil {
		return fmt.Errorf("error upserting posts: %w", err)
	}

	return nil
}

func (r Repo) DeletePost(ctx context.Context, id int) (int64, error) {
	const q = `DELETE FROM posts WHERE id = ?;`

	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, fmt.Errorf("error deleting post: %w", err)
	}

	return res.RowsAffected()
}

func (r Repo) AllPosts(ctx context.Context) ([]postly.Post, error) {
	const q = `SELECT * FROM posts ORDER BY id ASC;`

	posts := []postly.Post{}
	if err := r.db.SelectContext(ctx, &posts, q); err != nil {
		return nil, fmt.Errorf("error selecting all posts: %w", err)
	}

	return posts, nil
}

func (r Repo) PostByID(ctx context.Context, id int) (postly.Post, error) {
	const q = `SELECT * FROM posts WHERE id = ?;`

	var post postly.Post
	err := r.db.GetContext(ctx, &post, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return postly.Post{}, postly.ErrNotFound
	}
	if err != nil {
		return postly.Post{}, fmt.Errorf("error fetching post: %w", err)
	}

	return post, nil
}

func (r Repo) PostPage(ctx context.Context, limit, offset int) ([]postly.Post, error) {
	const q = `SELECT * FROM posts ORDER BY id ASC LIMIT ? OFFSET ?;`

	posts := []postly.Post{}
	if err := r.db.SelectContext(ctx, &posts, q, limit, offset); err != nil {
		return nil, fmt.Errorf("error fetching post page: %w", err)
	}

	return posts, nil
}

// RefreshMerge swaps the cached feed for a fresh first page without losing
// user-set favorites. The whole merge runs in one transaction: a crash can
// never leave favorites evicted or un-reapplied.
func (r Repo) RefreshMerge(ctx context.Context, posts []postly.Post) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting refresh transaction: %w", err)
	}
	defer tx.Rollback()

	// Snapshot which ids are favorited before anything is overwritten.
	var favoriteIDs []int
	if err := tx.SelectContext(ctx, &favoriteIDs, `SELECT id FROM posts WHERE is_favorite = 1;`); err != nil {
		return fmt.Errorf("error selecting favorite ids: %w", err)
	}

	// Evict rows that the fresh page no longer contains, unless favorited.
	keep := make([]int, 0, len(posts))
	for _, p := range posts {
		keep = append(keep, p.ID)
	}
	query, args, err := sq.Delete("posts").
		Where(sq.And{sq.NotEq{"id": keep}, sq.Eq{"is_favorite": false}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error constructing sql: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error evicting stale posts: %w", err)
	}

	if len(posts) > 0 {
		const q = `INSERT OR REPLACE INTO posts (id, title, body, is_favorite)
		VALUES (:id, :title, :body, :is_favorite);`
		if _, err := tx.NamedExecContext(ctx, q, posts); err != nil {
			return fmt.Errorf("error upserting posts: %w", err)
		}
	}

	// Re-apply the snapshot in case a fresh row landed on a favorited id
	// with is_favorite unset.
	for _, id := range favoriteIDs {
		if _, err := tx.ExecContext(ctx, `UPDATE posts SET is_favorite = 1 WHERE id = ?;`, id); err != nil {
			return fmt.Errorf("error reapplying favorite: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing refresh: %w", err)
	}

	return nil
}

func (r Repo) SetFavorite(ctx context.Context, id int, favorite bool) (int64, error) {
	const q = `UPDATE posts SET is_favorite = ? WHERE id = ?;`

	res, err := r.db.ExecContext(ctx, q, favorite, id)
	if err != nil {
		return 0, fmt.Errorf("error setting favorite: %w", err)
	}

	return res.RowsAffected()
}

func (r Repo) ToggleFavorite(ctx context.Context, id int) (int64, error) {
	const q = `UPDATE posts SET is_favorite = NOT is_favorite WHERE id = ?;`

	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, fmt.Errorf("error toggling favorite: %w", err)
	}

	return res.RowsAffected()
}

func (r Repo) FavoritePosts(ctx context.Context) ([]postly.Post, error) {
	const q = `SELECT * FROM posts WHERE is_favorite = 1 ORDER BY id ASC;`

	posts := []postly.Post{}
	if err := r.db.SelectContext(ctx, &posts, q); err != nil {
		return nil, fmt.Errorf("error selecting favorites: %w", err)
	}

	return posts, nil
}

// SearchPosts matches the substring case-insensitively against title or body.
// An empty query matches every row.
func (r Repo) SearchPosts(ctx context.Context, query string) ([]postly.Post, error) {
	pattern := "%" + escapeLike(query) + "%"
	q, args, err := sq.Select("*").From("posts").
		Where(sq.Or{
			sq.Expr("lower(title) LIKE lower(?) ESCAPE '\\'", pattern),
			sq.Expr("lower(body) LIKE lower(?) ESCAPE '\\'", pattern),
		}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	posts := []postly.Post{}
	if err := r.db.SelectContext(ctx, &posts, q, args...); err != nil {
		return nil, fmt.Errorf("error searching posts: %w", err)
	}

	return posts, nil
}

func (r Repo) CountPosts(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM posts;`

	var count int
	if err := r.db.GetContext(ctx, &count, q); err != nil {
		return 0, fmt.Errorf("error counting posts: %w", err)
	}

	return count, nil
}

// escapeLike keeps user input from acting as LIKE wildcards.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
