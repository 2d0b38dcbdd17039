package reservation

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
)

// Booker is the multi-ticket path. Its inputs usually come from the intent
// resolver and are re-validated here regardless of what the resolver
// promised.
type Booker struct {
	reserver Reserver
}

// NewBooker constructs a Booker.
func NewBooker(r Reserver) *Booker {
	return &Booker{reserver: r}
}

// Book reserves qty tickets for the event whose name matches eventName
// case-insensitively and records a booking for them.
func (b *Booker) Book(ctx context.Context, eventName string, qty int) (model.BookingConfirmation, error) {
	name := strings.TrimSpace(eventName)
	if name == "" {
		return model.BookingConfirmation{}, fmt.Errorf("%w: event name is required", ErrInvalidRequest)
	}
	if qty < 1 {
		return model.BookingConfirmation{}, fmt.Errorf("%w: quantity must be at least 1, got %d", ErrInvalidRequest, qty)
	}

	res, err := b.reserver.Reserve(ctx, ByName(name), qty, true)
	if err != nil {
		return model.BookingConfirmation{}, err
	}

	return model.BookingConfirmation{
		BookingID: res.BookingID,
		EventID:   res.EventID,
		EventName: res.EventName,
		Quantity:  res.Quantity,
	}, nil
}
