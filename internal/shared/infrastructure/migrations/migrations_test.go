package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database/sqlite"
)

func TestRun_SQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "cadence.db"),
	})
	require.NoError(t, err)
	defer conn.Close()

	applied, err := Run(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init", "000002_outbox"}, applied)

	for _, table := range []string{"habits", "habit_completions", "outbox"} {
		var n int
		err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}

	t.Run("second run applies nothing", func(t *testing.T) {
		applied, err := Run(ctx, conn)
		require.NoError(t, err)
		assert.Empty(t, applied)
	})

	t.Run("periodicity is constrained", func(t *testing.T) {
		_, err := conn.Exec(ctx,
			`INSERT INTO habits (id, name, periodicity, created_at) VALUES ('x', 'x', 'monthly', '2026-01-01')`)
		assert.Error(t, err)
	})
}

func TestUpFiles(t *testing.T) {
	for _, dir := range []string{"sqlite", "postgres"} {
		names, err := upFiles(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init.up.sql", "000002_outbox.up.sql"}, names, dir)
	}
}

func TestDirFor(t *testing.T) {
	_, err := dirFor(database.Driver("mysql"))
	assert.Error(t, err)
}
