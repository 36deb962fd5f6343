package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/postlyhq/postly/internal/apperr"
	"github.com/postlyhq/postly/internal/postly"
	"github.com/postlyhq/postly/internal/posts"
)

const maxPageSize = 100

// parsePageParams reads ?page= and ?pageSize= with defaults and caps.
func parsePageParams(r *http.Request) (int, int) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(query.Get("pageSize"))
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = posts.DefaultPageSize
	}

	return page, pageSize
}

func (s *Server) getPosts(w http.ResponseWriter, r *http.Request) error {
	page, pageSize := parsePageParams(r)

	res := s.postEngine.GetPosts(r.Context(), page, pageSize)
	if res.IsSuccess() {
		// A sync may have rewritten rows that cached search responses refer to.
		s.searchCache.Purge()
	}

	return writeResult(w, res)
}

func (s *Server) getFavorites(w http.ResponseWriter, r *http.Request) error {
	return writeResult(w, s.postEngine.Favorites(r.Context()))
}

func (s *Server) getSearch(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query().Get("q")

	if cached, ok := s.searchCache.Get(query); ok {
		return writeResult(w, postly.Ok(cached))
	}

	res := s.postEngine.Search(r.Context(), query)
	if matches, ok := res.Value(); ok {
		s.searchCache.Add(query, matches)
	}

	return writeResult(w, res)
}

func (s *Server) postToggleFavorite(w http.ResponseWriter, r *http.Request) error {
	postID, err := strconv.Atoi(mux.Vars(r)["postID"])
	if err != nil {
		return apperr.Custom("REQ_001", "Malformed request.", "post id must be an integer")
	}

	res := s.postEngine.ToggleFavorite(r.Context(), postID)
	if res.IsSuccess() {
		// Favorite flags just changed under any cached search response.
		s.searchCache.Purge()
	}

	return writeResult(w, res)
}
