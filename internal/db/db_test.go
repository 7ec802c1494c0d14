package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/memora/internal/db"
)

func TestOpen_AppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memora.db")
	ctx := context.Background()

	database, err := db.Open("file:" + path)
	require.NoError(t, err)

	versions, err := db.Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, versions)

	var applied int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, len(versions), applied)
	require.NoError(t, database.Close())

	// reopening must not re-run anything
	database, err = db.Open("file:" + path)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, len(versions), applied)
	assert.NoError(t, database.Ping(ctx))
}

func TestOpen_CreatesSchedulerTables(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	for _, table := range []string{"decks", "items", "learner_deck_states", "review_logs"} {
		var name string
		err := database.QueryRowContext(context.Background(),
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}
}
