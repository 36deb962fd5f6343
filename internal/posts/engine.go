// Package posts is the sync engine: it reconciles the paginated remote feed
// with the local store, keeps user-set favorites alive across refreshes, and
// serves cached data when the network can't.
package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/postlyhq/postly/internal/apperr"
	"github.com/postlyhq/postly/internal/connectivity"
	"github.com/postlyhq/postly/internal/feed"
	"github.com/postlyhq/postly/internal/postly"
)

// DefaultPageSize matches the feed endpoint's default page size.
const DefaultPageSize = 20

// Feed is the slice of the remote client the engine needs.
type Feed interface {
	FetchPage(ctx context.Context, page, pageSize int) (feed.PageResponse, error)
}

type Engine struct {
	store  postly.PostStore
	feed   Feed
	oracle connectivity.Oracle
}

func NewEngine(store postly.PostStore, feedClient Feed, oracle connectivity.Oracle) *Engine {
	return &Engine{
		store:  store,
		feed:   feedClient,
		oracle: oracle,
	}
}

// GetPosts returns the requested page, refreshing the cache from the remote
// feed when the network allows it.
//
// The cache is authoritative offline. A transport or parse failure of the
// remote call is non-fatal and degrades to the cached slice; a reachable
// server answering non-2xx, or a response without the "ok" status marker,
// surfaces as an error.
func (e *Engine) GetPosts(ctx context.Context, page, pageSize int) postly.Result[[]postly.Post] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	offset := (page - 1) * pageSize

	cached, err := e.store.PostPage(ctx, pageSize, offset)
	if err != nil {
		return postly.Fail[[]postly.Post](apperr.WithDebug(apperr.DatabaseConnection, err.Error()))
	}

	if !e.oracle.Available() {
		return postly.Ok(cached)
	}

	resp, err := e.feed.FetchPage(ctx, page, pageSize)
	if err != nil {
		var statusErr *feed.StatusError
		if errors.As(err, &statusErr) {
			return postly.Fail[[]postly.Post](apperr.Custom(
				fmt.Sprintf("HTTP_%d", statusErr.Code),
				"Server error occurred",
				err.Error(),
			))
		}

		// The feed being down is not the user's problem while a cache exists.
		slog.WarnContext(ctx, "feed fetch failed, serving cache", "error", err, "page", page)
		return postly.Ok(cached)
	}
	if resp.Status != feed.StatusOK {
		return postly.Fail[[]postly.Post](apperr.Custom(
			"API_001",
			"Failed to fetch posts",
			"feed status: "+resp.Status,
		))
	}

	records, aerr := e.mapArticles(ctx, resp.Articles, offset)
	if aerr != nil {
		return postly.Fail[[]postly.Post](aerr)
	}

	// Page one is a refresh: evict what the fresh page no longer carries,
	// favorites excepted. Deeper pages just append.
	if page == 1 {
		err = e.store.RefreshMerge(ctx, records)
	} else {
		err = e.store.UpsertPosts(ctx, records)
	}
	if err != nil {
		return postly.Fail[[]postly.Post](apperr.WithDebug(apperr.DatabaseConnection, err.Error()))
	}

	merged, err := e.store.PostPage(ctx, pageSize, offset)
	if err != nil {
		return postly.Fail[[]postly.Post](apperr.WithDebug(apperr.DatabaseConnection, err.Error()))
	}

	return postly.Ok(merged)
}

// mapArticles turns remote articles into local records. The id is a function
// of page and position so the same logical item keeps its id across
// refreshes; the favorite flag carries over from the record already stored
// under that id.
func (e *Engine) mapArticles(ctx context.Context, articles []feed.Article, offset int) ([]postly.Post, *apperr.Error) {
	records := make([]postly.Post, 0, len(articles))
	for i, a := range articles {
		id := offset + i

		favorite := false
		existing, err := e.store.PostByID(ctx, id)
		switch {
		case err == nil:
			favorite = existing.Favorite
		case errors.Is(err, postly.ErrNotFound):
			// First sighting of this slot.
		default:
			return nil, apperr.WithDebug(apperr.DatabaseConnection, err.Error())
		}

		records = append(records, postly.Post{
			ID:       id,
			Title:    a.Title,
			Body:     a.Body(),
			Favorite: favorite,
		})
	}

	return records, nil
}
