package main

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestDSNAppliesPragmas(t *testing.T) {
	dbx, err := sqlx.Open("sqlite", dsn(filepath.Join(t.TempDir(), "postly.db")))
	require.NoError(t, err)
	defer dbx.Close()

	// The driver only honors _pragma= parameters; anything else is silently
	// dropped, so read the settings back rather than trusting the string.
	var journalMode string
	require.NoError(t, dbx.Get(&journalMode, `PRAGMA journal_mode;`))
	assert.Equal(t, "wal", journalMode)

	var busyTimeout int
	require.NoError(t, dbx.Get(&busyTimeout, `PRAGMA busy_timeout;`))
	assert.Equal(t, 5000, busyTimeout)
}
