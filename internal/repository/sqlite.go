package repository

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
)

const sqliteEventColumns = `id, name, date, tickets_remaining, capacity`

// SQLiteStore keeps inventory in an embedded SQLite database.
type SQLiteStore struct {
	pool *sqlitex.Pool
}

// NewSQLiteStore constructs a SQLiteStore over an open pool.
func NewSQLiteStore(pool *sqlitex.Pool) *SQLiteStore {
	return &SQLiteStore{pool: pool}
}

// Atomically runs fn inside BEGIN IMMEDIATE. SQLite has no row locks; an
// IMMEDIATE transaction takes the database write lock at begin, so every
// other reservation waits (up to the busy timeout) until this one commits
// or rolls back. Reads through the Tx are therefore never stale.
//
// The connection's interrupt is bound to ctx, so callers that must not be
// cut off mid-transaction pass a context without cancellation.
func (s *SQLiteStore) Atomically(ctx context.Context, fn func(Tx) error) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("begin immediate transaction: %w", err)
	}
	defer endTransaction(&err)

	return fn(&sqliteTx{conn: conn})
}

type sqliteTx struct {
	conn *sqlite.Conn
}

func (t *sqliteTx) EventByID(_ context.Context, id int64) (model.Event, error) {
	return queryEvent(t.conn,
		`SELECT `+sqliteEventColumns+` FROM events WHERE id = ?`, id)
}

func (t *sqliteTx) EventByName(_ context.Context, name string) (model.Event, error) {
	return queryEvent(t.conn,
		`SELECT `+sqliteEventColumns+`
		 FROM events
		 WHERE LOWER(name) = LOWER(?)
		 ORDER BY id
		 LIMIT 1`, name)
}

func (t *sqliteTx) DecrementTickets(_ context.Context, eventID int64, qty int) error {
	err := sqlitex.Execute(t.conn,
		`UPDATE events SET tickets_remaining = tickets_remaining - ? WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{qty, eventID}},
	)
	if err != nil {
		return fmt.Errorf("decrement tickets_remaining: %w", err)
	}
	if t.conn.Changes() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *sqliteTx) InsertBooking(_ context.Context, eventID int64, qty int) (int64, error) {
	err := sqlitex.Execute(t.conn,
		`INSERT INTO bookings (event_id, qty) VALUES (?, ?)`,
		&sqlitex.ExecOptions{Args: []any{eventID, qty}},
	)
	if err != nil {
		return 0, fmt.Errorf("insert booking: %w", err)
	}
	return t.conn.LastInsertRowID(), nil
}

// ListEvents returns all events ordered by date.
func (s *SQLiteStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	var events []model.Event
	err = sqlitex.Execute(conn,
		`SELECT `+sqliteEventColumns+` FROM events ORDER BY date, id`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				events = append(events, scanSQLiteEvent(stmt))
				return nil
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetEvent returns a single event or ErrNotFound.
func (s *SQLiteStore) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return model.Event{}, fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	return queryEvent(conn, `SELECT `+sqliteEventColumns+` FROM events WHERE id = ?`, id)
}

// CreateEvent inserts a new event whose capacity and remaining count both
// start at tickets.
func (s *SQLiteStore) CreateEvent(ctx context.Context, name, date string, tickets int) (model.Event, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return model.Event{}, fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO events (name, date, tickets_remaining, capacity) VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{name, date, tickets, tickets}},
	)
	if err != nil {
		return model.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return model.Event{
		ID:               conn.LastInsertRowID(),
		Name:             name,
		Date:             date,
		TicketsRemaining: tickets,
		Capacity:         tickets,
	}, nil
}

// ListBookings returns the bookings for an event in creation order.
func (s *SQLiteStore) ListBookings(ctx context.Context, eventID int64) ([]model.Booking, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("take connection: %w", err)
	}
	defer s.pool.Put(conn)

	var bookings []model.Booking
	err = sqlitex.Execute(conn,
		`SELECT id, event_id, qty FROM bookings WHERE event_id = ? ORDER BY id`,
		&sqlitex.ExecOptions{
			Args: []any{eventID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				bookings = append(bookings, model.Booking{
					ID:      stmt.ColumnInt64(0),
					EventID: stmt.ColumnInt64(1),
					Qty:     stmt.ColumnInt(2),
				})
				return nil
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func queryEvent(conn *sqlite.Conn, query string, args ...any) (model.Event, error) {
	var (
		e     model.Event
		found bool
	)
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			e = scanSQLiteEvent(stmt)
			found = true
			return nil
		},
	})
	if err != nil {
		return model.Event{}, fmt.Errorf("query event: %w", err)
	}
	if !found {
		return model.Event{}, ErrNotFound
	}
	return e, nil
}

func scanSQLiteEvent(stmt *sqlite.Stmt) model.Event {
	return model.Event{
		ID:               stmt.ColumnInt64(0),
		Name:             stmt.ColumnText(1),
		Date:             stmt.ColumnText(2),
		TicketsRemaining: stmt.ColumnInt(3),
		Capacity:         stmt.ColumnInt(4),
	}
}
