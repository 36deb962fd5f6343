package posts

import (
	"context"

	"github.com/postlyhq/postly/internal/apperr"
	"github.com/postlyhq/postly/internal/postly"
)

// Favorites returns every favorited post, id ascending.
func (e *Engine) Favorites(ctx context.Context) postly.Result[[]postly.Post] {
	favorites, err := e.store.FavoritePosts(ctx)
	if err != nil {
		return postly.Fail[[]postly.Post](apperr.WithDebug(apperr.DatabaseConnection, err.Error()))
	}

	return postly.Ok(favorites)
}

// ToggleFavorite flips the flag on one post. Toggling twice restores the
// original state.
func (e *Engine) ToggleFavorite(ctx context.Context, postID int) postly.Result[struct{}] {
	affected, err := e.store.ToggleFavorite(ctx, postID)
	if err != nil {
		return postly.Fail[struct{}](apperr.WithDebug(apperr.DatabaseConnection, err.Error()))
	}
	if affected == 0 {
		return postly.Fail[struct{}](apperr.Custom(
			"DB_003",
			"Failed to update favorite status",
			"no stored post matched the id",
		))
	}

	return postly.Ok(struct{}{})
}

// Search matches the query case-insensitively against title or body. An
// empty query matches every stored post.
func (e *Engine) Search(ctx context.Context, query string) postly.Result[[]postly.Post] {
	matches, err := e.store.SearchPosts(ctx, query)
	if err != nil {
		return postly.Fail[[]postly.Post](apperr.WithDebug(apperr.DatabaseConnection, err.Error()))
	}

	return postly.Ok(matches)
}
