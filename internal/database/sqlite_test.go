package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/config"
)

func openTestPool(t *testing.T) *sqlitex.Pool {
	t.Helper()

	pool, err := OpenSQLite(config.SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "nested", "test.db"),
		PoolSize:    2,
		BusyTimeout: time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	return pool
}

func countRows(t *testing.T, pool *sqlitex.Pool, query string) int {
	t.Helper()

	conn, err := pool.Take(context.Background())
	require.NoError(t, err)
	defer pool.Put(conn)

	var n int
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt(0)
			return nil
		},
	})
	require.NoError(t, err)
	return n
}

func TestOpenSQLiteRejectsBadPaths(t *testing.T) {
	_, err := OpenSQLite(config.SQLiteConfig{}, zap.NewNop())
	assert.Error(t, err)

	_, err = OpenSQLite(config.SQLiteConfig{Path: ":memory:"}, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenSQLiteUsesWAL(t *testing.T) {
	pool := openTestPool(t)

	conn, err := pool.Take(context.Background())
	require.NoError(t, err)
	defer pool.Put(conn)

	var mode string
	err = sqlitex.Execute(conn, "PRAGMA journal_mode", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			mode = stmt.ColumnText(0)
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

func TestBootstrapSQLiteSeedsOnce(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	require.NoError(t, BootstrapSQLite(ctx, pool, true))
	require.NoError(t, BootstrapSQLite(ctx, pool, true))

	assert.Equal(t, len(seedEvents), countRows(t, pool, `SELECT COUNT(*) FROM events`))
	assert.Equal(t, 0, countRows(t, pool, `SELECT COUNT(*) FROM events WHERE capacity <> tickets_remaining`))
}

func TestBootstrapSQLiteWithoutSeed(t *testing.T) {
	pool := openTestPool(t)

	require.NoError(t, BootstrapSQLite(context.Background(), pool, false))
	assert.Equal(t, 0, countRows(t, pool, `SELECT COUNT(*) FROM events`))
	assert.Equal(t, 0, countRows(t, pool, `SELECT COUNT(*) FROM bookings`))
}
