package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// capacity is written once at creation and never updated; tickets_remaining
// is the only inventory counter that changes.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS events (
	id                BIGSERIAL PRIMARY KEY,
	name              TEXT    NOT NULL,
	date              DATE    NOT NULL,
	tickets_remaining INTEGER NOT NULL CHECK (tickets_remaining >= 0),
	capacity          INTEGER NOT NULL CHECK (capacity >= 0)
);

CREATE INDEX IF NOT EXISTS idx_events_lower_name ON events (LOWER(name));

CREATE TABLE IF NOT EXISTS bookings (
	id       BIGSERIAL PRIMARY KEY,
	event_id BIGINT  NOT NULL REFERENCES events (id),
	qty      INTEGER NOT NULL CHECK (qty >= 1)
);

CREATE INDEX IF NOT EXISTS idx_bookings_event_id ON bookings (event_id);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	name              TEXT    NOT NULL,
	date              TEXT    NOT NULL,
	tickets_remaining INTEGER NOT NULL CHECK (tickets_remaining >= 0),
	capacity          INTEGER NOT NULL CHECK (capacity >= 0)
);

CREATE INDEX IF NOT EXISTS idx_events_lower_name ON events (LOWER(name));

CREATE TABLE IF NOT EXISTS bookings (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id INTEGER NOT NULL REFERENCES events (id),
	qty      INTEGER NOT NULL CHECK (qty >= 1)
);

CREATE INDEX IF NOT EXISTS idx_bookings_event_id ON bookings (event_id);
`

type seedEvent struct {
	name    string
	date    string
	tickets int
}

var seedEvents = []seedEvent{
	{"Jazz Night", "2026-11-07", 120},
	{"Homecoming Football Game", "2026-11-14", 500},
	{"Career Fair", "2026-11-20", 300},
	{"Winter Theater Showcase", "2026-12-04", 80},
	{"Spring Concert", "2027-04-17", 250},
}

// BootstrapPostgres creates the schema and, when seed is set and the events
// table is empty, inserts the demo events.
func BootstrapPostgres(ctx context.Context, pool *pgxpool.Pool, seed bool) error {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if !seed {
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, e := range seedEvents {
		_, err := pool.Exec(ctx,
			`INSERT INTO events (name, date, tickets_remaining, capacity) VALUES ($1, $2::date, $3, $3)`,
			e.name, e.date, e.tickets,
		)
		if err != nil {
			return fmt.Errorf("seed event %q: %w", e.name, err)
		}
	}
	return nil
}

// BootstrapSQLite is the SQLite counterpart of BootstrapPostgres. The seed
// runs in one IMMEDIATE transaction so concurrent starters cannot double it.
func BootstrapSQLite(ctx context.Context, pool *sqlitex.Pool, seed bool) (err error) {
	conn, err := pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("take connection: %w", err)
	}
	defer pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, sqliteSchema, nil); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if !seed {
		return nil
	}

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer endTransaction(&err)

	var count int
	err = sqlitex.Execute(conn, `SELECT COUNT(*) FROM events`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, e := range seedEvents {
		err = sqlitex.Execute(conn,
			`INSERT INTO events (name, date, tickets_remaining, capacity) VALUES (?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{e.name, e.date, e.tickets, e.tickets}},
		)
		if err != nil {
			return fmt.Errorf("seed event %q: %w", e.name, err)
		}
	}
	return nil
}
