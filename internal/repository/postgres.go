package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
)

const pgEventColumns = `id, name, to_char(date, 'YYYY-MM-DD'), tickets_remaining, capacity`

// PostgresStore keeps inventory in PostgreSQL.
type PostgresStore struct {
	db          *pgxpool.Pool
	lockTimeout time.Duration
}

// NewPostgresStore constructs a PostgresStore. A positive lockTimeout bounds
// how long a reservation waits for another transaction's row lock.
func NewPostgresStore(db *pgxpool.Pool, lockTimeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, lockTimeout: lockTimeout}
}

// Atomically runs fn inside a transaction.
//
// Reads through the Tx use SELECT … FOR UPDATE, which takes a row-level
// exclusive lock on the event row. A second transaction reading the same
// row FOR UPDATE blocks until the first commits or rolls back, so two
// reservations can never both see the same remaining count:
//
//	tx A: SELECT … FOR UPDATE  → remaining = 1, row locked
//	tx B: SELECT … FOR UPDATE  → blocks
//	tx A: UPDATE remaining = 0; COMMIT
//	tx B:                      → remaining = 0, rejected
func (s *PostgresStore) Atomically(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// No-op after a successful Commit.
	defer func() { _ = tx.Rollback(ctx) }()

	if s.lockTimeout > 0 {
		// SET cannot take bind parameters; the value is an integer we format.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", s.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) EventByID(ctx context.Context, id int64) (model.Event, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+pgEventColumns+`
		 FROM events
		 WHERE id = $1
		 FOR UPDATE`,
		id,
	)
	return scanPgEvent(row, "lock event row")
}

func (t *pgTx) EventByName(ctx context.Context, name string) (model.Event, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+pgEventColumns+`
		 FROM events
		 WHERE LOWER(name) = LOWER($1)
		 ORDER BY id
		 LIMIT 1
		 FOR UPDATE`,
		name,
	)
	return scanPgEvent(row, "lock event row by name")
}

func (t *pgTx) DecrementTickets(ctx context.Context, eventID int64, qty int) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE events SET tickets_remaining = tickets_remaining - $1 WHERE id = $2`,
		qty, eventID,
	)
	if err != nil {
		return fmt.Errorf("decrement tickets_remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) InsertBooking(ctx context.Context, eventID int64, qty int) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO bookings (event_id, qty) VALUES ($1, $2) RETURNING id`,
		eventID, qty,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert booking: %w", err)
	}
	return id, nil
}

// ListEvents returns all events ordered by date. The counts are a snapshot
// and may change immediately after the read.
func (s *PostgresStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+pgEventColumns+`
		 FROM events
		 ORDER BY date, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.TicketsRemaining, &e.Capacity); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetEvent returns a single event or ErrNotFound.
func (s *PostgresStore) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	row := s.db.QueryRow(ctx, `SELECT `+pgEventColumns+` FROM events WHERE id = $1`, id)
	return scanPgEvent(row, "get event")
}

// CreateEvent inserts a new event whose capacity and remaining count both
// start at tickets.
func (s *PostgresStore) CreateEvent(ctx context.Context, name, date string, tickets int) (model.Event, error) {
	e := model.Event{Name: name, Date: date, TicketsRemaining: tickets, Capacity: tickets}
	err := s.db.QueryRow(ctx,
		`INSERT INTO events (name, date, tickets_remaining, capacity)
		 VALUES ($1, $2::date, $3, $3)
		 RETURNING id`,
		name, date, tickets,
	).Scan(&e.ID)
	if err != nil {
		return model.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

// ListBookings returns the bookings for an event in creation order.
func (s *PostgresStore) ListBookings(ctx context.Context, eventID int64) ([]model.Booking, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, event_id, qty
		 FROM bookings
		 WHERE event_id = $1
		 ORDER BY id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.EventID, &b.Qty); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func scanPgEvent(row pgx.Row, op string) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Name, &e.Date, &e.TicketsRemaining, &e.Capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Event{}, ErrNotFound
		}
		return model.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}
