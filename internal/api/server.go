// Package api exposes the post and auth engines over HTTP. This is the
// caller-side surface the engines report their Result values to.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/postlyhq/postly/internal/auth"
	"github.com/postlyhq/postly/internal/postly"
	"github.com/postlyhq/postly/internal/posts"
)

type (
	// Server handles requests to browse, search, and favorite posts, and to
	// authenticate against the local account store.
	Server struct {
		*http.Server

		postEngine *posts.Engine
		authEngine *auth.Engine

		// Search responses are cheap to cache and invalidated on any write.
		searchCache *lru.Cache[string, []postly.Post]

		secureCookie *securecookie.SecureCookie
		httpsCookies bool
	}

	ServerConfig struct {
		Port           int
		CookieHashKey  []byte
		CookieBlockKey []byte
		HTTPSCookies   bool
		CORSOrigin     string
	}
)

func NewServer(config ServerConfig, postEngine *posts.Engine, authEngine *auth.Engine) *Server {
	var (
		r        = errRouter{Router: mux.NewRouter()}
		cache, _ = lru.New[string, []postly.Post](256)
	)

	srvr := Server{
		postEngine:   postEngine,
		authEngine:   authEngine,
		searchCache:  cache,
		secureCookie: securecookie.New(config.CookieHashKey, config.CookieBlockKey),
		httpsCookies: config.HTTPSCookies,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			Handler: handlers.CORS(
				handlers.AllowedOrigins([]string{config.CORSOrigin}),
				handlers.AllowCredentials(),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
				handlers.AllowedHeaders([]string{"content-type"}),
			)(r),
		},
	}

	r.Use(accessLogMiddleware)
	r.HandleFuncE("/api/register", srvr.postRegister).Methods(http.MethodPost)
	r.HandleFuncE("/api/login", srvr.postLogin).Methods(http.MethodPost)
	r.HandleFuncE("/api/logout", srvr.getLogout).Methods(http.MethodGet)
	r.HandleFuncE("/api/viewer", srvr.getViewer).Methods(http.MethodGet)

	authed := errRouter{Router: r.NewRoute().Subrouter()}
	authed.Use(requireSessionMiddleware(srvr.secureCookie))

	authed.HandleFuncE("/api/posts", srvr.getPosts).Methods(http.MethodGet)
	authed.HandleFuncE("/api/posts/favorites", srvr.getFavorites).Methods(http.MethodGet)
	authed.HandleFuncE("/api/posts/search", srvr.getSearch).Methods(http.MethodGet)
	authed.HandleFuncE("/api/posts/{postID}/favorite", srvr.postToggleFavorite).Methods(http.MethodPost)

	slog.Debug("configured api server", "port", config.Port)

	return &srvr
}
