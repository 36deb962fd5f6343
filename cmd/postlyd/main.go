// Postlyd serves news-derived posts from a local sqlite cache, refreshing it
// from the remote feed when the network allows, and authenticates users
// against the local account store.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/postlyhq/postly/internal/api"
	"github.com/postlyhq/postly/internal/auth"
	"github.com/postlyhq/postly/internal/connectivity"
	"github.com/postlyhq/postly/internal/feed"
	"github.com/postlyhq/postly/internal/migrations"
	"github.com/postlyhq/postly/internal/posts"
	"github.com/postlyhq/postly/internal/sqlite"
	"github.com/postlyhq/postly/logger"
)

type config struct {
	Port     int    `env:"PORT, default=4444"`
	Database string `env:"DATABASE, required"`

	FeedBaseURL string `env:"FEED_BASE_URL, default=https://newsapi.org/v2"`
	FeedAPIKey  string `env:"FEED_API_KEY, required"`
	FeedTopic   string `env:"FEED_TOPIC, default=technology"`

	// Address dialed to decide whether the network is usable.
	ProbeAddr string `env:"PROBE_ADDR, default=1.1.1.1:443"`

	CookieHashKey  string `env:"COOKIE_HASH_KEY, required"`
	CookieBlockKey string `env:"COOKIE_BLOCK_KEY"`
	HTTPSCookies   bool   `env:"HTTPS_COOKIES, default=false"`
	CORSOrigin     string `env:"CORS_ORIGIN, default=http://localhost:3000"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	l := logger.New(cfg.LoggerFormat, os.Stderr)
	slog.SetDefault(l)

	// Start the application
	if err := run(ctx, cfg); err != nil {
		slog.Error("error running", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	slog.Info("running", "port", cfg.Port, "database", cfg.Database)

	// Connect to the db
	dbx, err := sqlx.Open("sqlite", dsn(cfg.Database))
	if err != nil {
		return fmt.Errorf("error opening database: %s", err)
	}
	defer dbx.Close()

	// Migrate, always
	if err := migrations.Run(dbx); err != nil {
		return fmt.Errorf("error migrating: %s", err)
	}

	repo := sqlite.New(dbx)
	oracle := connectivity.NewProber(cfg.ProbeAddr, 2*time.Second, 15*time.Second)
	feedClient := feed.NewClient(cfg.FeedBaseURL, cfg.FeedAPIKey, cfg.FeedTopic)

	s := api.NewServer(api.ServerConfig{
		Port:           cfg.Port,
		CookieHashKey:  []byte(cfg.CookieHashKey),
		CookieBlockKey: blockKey(cfg.CookieBlockKey),
		HTTPSCookies:   cfg.HTTPSCookies,
		CORSOrigin:     cfg.CORSOrigin,
	},
		posts.NewEngine(repo, feedClient, oracle),
		auth.NewEngine(repo),
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Start the server
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error listening: %s", err)
		}

		return nil
	})
	g.Go(func() error {
		// Block from shutting down until the group is canceled
		<-gCtx.Done()

		downCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(downCtx); err != nil {
			slog.Error("error shutting down server", "error", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("error running: %s", err)
	}

	return nil
}

// dsn builds the connection string for the modernc driver, which takes
// pragmas as repeated _pragma= parameters rather than their own keys.
func dsn(path string) string {
	return path + "?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// Cookie encryption is optional; an empty key disables it and keeps only the
// HMAC signature.
func blockKey(key string) []byte {
	if key == "" {
		return nil
	}
	return []byte(key)
}
