// Package notify announces committed reservations to downstream consumers.
// Messages are sent only after the inventory transaction has committed, and
// a failed publish never undoes or fails the reservation.
package notify

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
)

const (
	Exchange = "ticketing.events"

	RoutingTicketPurchased  = "ticket.purchased"
	RoutingBookingConfirmed = "booking.confirmed"
)

// TicketPurchased is the payload for a single-ticket purchase.
type TicketPurchased struct {
	EventID    int64     `json:"event_id"`
	EventName  string    `json:"event_name"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingConfirmed is the payload for a multi-ticket booking.
type BookingConfirmed struct {
	BookingID  int64     `json:"booking_id"`
	EventID    int64     `json:"event_id"`
	EventName  string    `json:"event_name"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends reservation notifications.
type Publisher interface {
	TicketPurchased(ctx context.Context, r model.Reservation) error
	BookingConfirmed(ctx context.Context, r model.Reservation) error
	Close() error
}

func purchasedPayload(r model.Reservation, at time.Time) TicketPurchased {
	return TicketPurchased{
		EventID:    r.EventID,
		EventName:  r.EventName,
		Quantity:   r.Quantity,
		OccurredAt: at.UTC(),
	}
}

func confirmedPayload(r model.Reservation, at time.Time) BookingConfirmed {
	return BookingConfirmed{
		BookingID:  r.BookingID,
		EventID:    r.EventID,
		EventName:  r.EventName,
		Quantity:   r.Quantity,
		OccurredAt: at.UTC(),
	}
}

// Noop discards every notification. It is used when no broker is configured.
type Noop struct{}

func (Noop) TicketPurchased(context.Context, model.Reservation) error  { return nil }
func (Noop) BookingConfirmed(context.Context, model.Reservation) error { return nil }
func (Noop) Close() error                                              { return nil }
