package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/memora/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is capped at one connection, so every statement sees the same
// in-memory database.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	return database.DB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// InsertDeck creates a deck row directly and returns its id.
func InsertDeck(t *testing.T, database *sql.DB, learnerID int64, name string) int64 {
	t.Helper()
	res, err := database.ExecContext(context.Background(),
		`INSERT INTO decks (learner_id, name, created_at) VALUES (?, ?, ?)`, learnerID, name, time.Now().UTC())
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// Clock is a settable time source for tests.
type Clock struct {
	T time.Time
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
