package database

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/config"
)

// OpenSQLite opens a fixed-size pool of SQLite connections. Every
// connection runs in WAL mode with a busy timeout, so a writer that finds
// the database locked by another IMMEDIATE transaction waits instead of
// failing with SQLITE_BUSY.
//
// The parent directory of cfg.Path is created if needed. ":memory:" is
// rejected because each pooled connection would see its own database.
func OpenSQLite(cfg config.SQLiteConfig, log *zap.Logger) (*sqlitex.Pool, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if cfg.Path == ":memory:" {
		return nil, fmt.Errorf("sqlite: in-memory databases cannot be pooled")
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create %s: %w", dir, err)
		}
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}
	busyMillis := cfg.BusyTimeout.Milliseconds()
	if busyMillis <= 0 {
		busyMillis = 5000
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConnection(conn, busyMillis)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", cfg.Path, err)
	}

	log.Info("sqlite pool opened",
		zap.String("path", cfg.Path),
		zap.Int("pool_size", poolSize),
	)
	return pool, nil
}

func prepareConnection(conn *sqlite.Conn, busyMillis int64) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyMillis),
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	return nil
}
