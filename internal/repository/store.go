// Package repository implements the inventory store: durable, transactional
// storage for events and bookings. Queries are plain SQL against pgx or
// SQLite; there is no ORM.
package repository

import (
	"context"
	"errors"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("not found")

// Tx is the set of point operations available inside an atomic unit.
// Event lookups lock what they read until the unit commits or rolls back,
// so a check-then-decrement inside one Tx cannot race another Tx.
type Tx interface {
	EventByID(ctx context.Context, id int64) (model.Event, error)
	// EventByName matches case-insensitively; duplicates resolve to the
	// lowest id.
	EventByName(ctx context.Context, name string) (model.Event, error)
	// DecrementTickets is unconditional; the caller verifies sufficiency
	// within the same Tx.
	DecrementTickets(ctx context.Context, eventID int64, qty int) error
	InsertBooking(ctx context.Context, eventID int64, qty int) (int64, error)
}

// Store is the full inventory store contract.
type Store interface {
	// Atomically runs fn in a serializing transaction. It commits when fn
	// returns nil and rolls back otherwise, returning fn's error unchanged.
	Atomically(ctx context.Context, fn func(Tx) error) error

	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id int64) (model.Event, error)
	CreateEvent(ctx context.Context, name, date string, tickets int) (model.Event, error)
	ListBookings(ctx context.Context, eventID int64) ([]model.Booking, error)
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
