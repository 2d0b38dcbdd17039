package reservation

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
)

// Reserver is the coordinator as seen by the adapters.
type Reserver interface {
	Reserve(ctx context.Context, loc Locator, quantity int, recordBooking bool) (model.Reservation, error)
}

// Purchaser is the single-ticket path: one ticket, looked up by id, no
// booking row.
type Purchaser struct {
	reserver Reserver
}

// NewPurchaser constructs a Purchaser.
func NewPurchaser(r Reserver) *Purchaser {
	return &Purchaser{reserver: r}
}

// Purchase reserves one ticket for the event with the given id.
func (p *Purchaser) Purchase(ctx context.Context, eventID int64) (model.Reservation, error) {
	if eventID <= 0 {
		return model.Reservation{}, fmt.Errorf("%w: event id must be positive, got %d", ErrInvalidRequest, eventID)
	}
	return p.reserver.Reserve(ctx, ByID(eventID), 1, false)
}
