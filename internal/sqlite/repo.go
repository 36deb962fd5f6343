// Package sqlite implements the local store contracts over a sqlx handle.
package sqlite

import (
	"github.com/jmoiron/sqlx"

	"github.com/postlyhq/postly/internal/postly"
)

// Ensure Repo implements the store contracts.
var (
	_ postly.PostStore = (*Repo)(nil)
	_ postly.UserStore = (*Repo)(nil)
)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}
