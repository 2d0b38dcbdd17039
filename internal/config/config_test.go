package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("SQLITE_BUSY_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.SQLite.BusyTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("DB_LOCK_TIMEOUT", "250ms")
	t.Setenv("SEED_DATA", "false")
	t.Setenv("RATE_LIMIT_CAPACITY", "not-a-number")

	cfg := Load()

	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, int32(7), cfg.Postgres.MaxConns)
	assert.Equal(t, 250*time.Millisecond, cfg.Postgres.LockTimeout)
	assert.False(t, cfg.SeedData)
	assert.Equal(t, 20, cfg.RateLimit.Capacity)
}

func TestValidate(t *testing.T) {
	cfg := Load()

	cfg.StoreDriver = "mongo"
	assert.Error(t, cfg.Validate())

	cfg.StoreDriver = DriverSQLite
	cfg.Auth.JWTSecret = ""
	assert.Error(t, cfg.Validate())
}

func TestPostgresDSN(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "t", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=t sslmode=disable", c.DSN())
}
