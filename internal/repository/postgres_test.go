package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/database"
)

// setupPostgresStore connects to TEST_DATABASE_URL and skips when it is
// unset or unreachable.
func setupPostgresStore(t *testing.T, lockTimeout time.Duration) (*PostgresStore, *pgxpool.Pool) {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(pool.Close)

	require.NoError(t, database.BootstrapPostgres(ctx, pool, false))
	_, err = pool.Exec(ctx, `TRUNCATE bookings, events RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return NewPostgresStore(pool, lockTimeout), pool
}

func TestPostgresReserveRoundTrip(t *testing.T) {
	store, _ := setupPostgresStore(t, 0)
	ctx := context.Background()

	e, err := store.CreateEvent(ctx, "Jazz Night", "2026-11-07", 5)
	require.NoError(t, err)

	err = store.Atomically(ctx, func(tx Tx) error {
		locked, err := tx.EventByName(ctx, "jazz NIGHT")
		if err != nil {
			return err
		}
		if err := tx.DecrementTickets(ctx, locked.ID, 2); err != nil {
			return err
		}
		_, err = tx.InsertBooking(ctx, locked.ID, 2)
		return err
	})
	require.NoError(t, err)

	got, err := store.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TicketsRemaining)
	assert.Equal(t, "2026-11-07", got.Date)

	bookings, err := store.ListBookings(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, 2, bookings[0].Qty)
}

func TestPostgresRowLockBlocksSecondWriter(t *testing.T) {
	store, _ := setupPostgresStore(t, 200*time.Millisecond)
	ctx := context.Background()

	e, err := store.CreateEvent(ctx, "Career Fair", "2026-11-20", 1)
	require.NoError(t, err)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- store.Atomically(ctx, func(tx Tx) error {
			if _, err := tx.EventByID(ctx, e.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()

	<-locked
	err = store.Atomically(ctx, func(tx Tx) error {
		_, err := tx.EventByID(ctx, e.ID)
		return err
	})
	assert.Error(t, err, "second transaction should hit lock_timeout while the row is held")

	close(release)
	require.NoError(t, <-done)
}

func TestPostgresGetEventNotFound(t *testing.T) {
	store, _ := setupPostgresStore(t, 0)

	_, err := store.GetEvent(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}
