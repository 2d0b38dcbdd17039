// Package reservation is the only code allowed to change an event's
// remaining-ticket count. Every change goes through Coordinator.Reserve,
// which checks and decrements inside one serializing store transaction.
package reservation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/repository"
)

// Inventory is the part of the store the coordinator needs.
type Inventory interface {
	Atomically(ctx context.Context, fn func(repository.Tx) error) error
}

// Observer receives one call per Reserve. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveReservation(path, outcome string, elapsed time.Duration)
}

// Locator identifies the event a reservation targets.
type Locator struct {
	id     int64
	name   string
	byName bool
}

// ByID locates an event by identifier.
func ByID(id int64) Locator { return Locator{id: id} }

// ByName locates an event by case-insensitive name.
func ByName(name string) Locator { return Locator{name: name, byName: true} }

func (l Locator) String() string {
	if l.byName {
		return fmt.Sprintf("name=%q", l.name)
	}
	return fmt.Sprintf("id=%d", l.id)
}

func (l Locator) resolve(ctx context.Context, tx repository.Tx) (model.Event, error) {
	if l.byName {
		return tx.EventByName(ctx, l.name)
	}
	return tx.EventByID(ctx, l.id)
}

// Coordinator executes reservations against the inventory store.
type Coordinator struct {
	inventory Inventory
	log       *zap.Logger
	observer  Observer
}

// NewCoordinator constructs a Coordinator. observer may be nil.
func NewCoordinator(inventory Inventory, log *zap.Logger, observer Observer) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{inventory: inventory, log: log, observer: observer}
}

// Reserve takes quantity tickets from the event named by loc and, when
// recordBooking is set, writes a booking row for them. Either everything
// commits or nothing does.
//
// Once started, the transaction is not tied to ctx cancellation: a caller
// that gives up simply never sees the result, while the transaction still
// commits or rolls back on its own. Reserve never retries and is not
// idempotent.
func (c *Coordinator) Reserve(ctx context.Context, loc Locator, quantity int, recordBooking bool) (model.Reservation, error) {
	start := time.Now()
	res, err := c.reserve(context.WithoutCancel(ctx), loc, quantity, recordBooking)
	c.report(loc, quantity, recordBooking, res, err, time.Since(start))
	return res, err
}

func (c *Coordinator) reserve(ctx context.Context, loc Locator, quantity int, recordBooking bool) (model.Reservation, error) {
	if quantity <= 0 {
		return model.Reservation{}, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidRequest, quantity)
	}

	var res model.Reservation
	err := c.inventory.Atomically(ctx, func(tx repository.Tx) error {
		event, err := loc.resolve(ctx, tx)
		if err != nil {
			return err
		}

		if event.TicketsRemaining < quantity {
			return fmt.Errorf("%w: event %d has %d, requested %d",
				ErrInsufficientInventory, event.ID, event.TicketsRemaining, quantity)
		}

		if err := tx.DecrementTickets(ctx, event.ID, quantity); err != nil {
			return err
		}

		res = model.Reservation{
			EventID:   event.ID,
			EventName: event.Name,
			Quantity:  quantity,
		}

		if recordBooking {
			id, err := tx.InsertBooking(ctx, event.ID, quantity)
			if err != nil {
				return err
			}
			res.BookingID = id
		}
		return nil
	})
	if err != nil {
		return model.Reservation{}, classify(err, loc)
	}
	return res, nil
}

func (c *Coordinator) report(loc Locator, quantity int, recordBooking bool, res model.Reservation, err error, elapsed time.Duration) {
	path := "purchase"
	if recordBooking {
		path = "booking"
	}
	outcome := Outcome(err)

	if c.observer != nil {
		c.observer.ObserveReservation(path, outcome, elapsed)
	}

	fields := []zap.Field{
		zap.String("path", path),
		zap.Stringer("locator", loc),
		zap.Int("quantity", quantity),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed),
	}
	switch outcome {
	case OutcomeOK:
		fields = append(fields, zap.Int64("event_id", res.EventID))
		if res.BookingID != 0 {
			fields = append(fields, zap.Int64("booking_id", res.BookingID))
		}
		c.log.Debug("reservation committed", fields...)
	case OutcomeStorage:
		c.log.Error("reservation failed", append(fields, zap.Error(err))...)
	default:
		c.log.Info("reservation rejected", fields...)
	}
}
