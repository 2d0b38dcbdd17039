package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/intent"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/notify"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/reservation"
)

const publishTimeout = 5 * time.Second

// Resolver parses free text into a booking guess.
type Resolver interface {
	Resolve(ctx context.Context, text string) (intent.Result, error)
}

// ConfirmResult is what a successful confirm returns to the client.
type ConfirmResult struct {
	Booking model.BookingConfirmation
	Message string
}

// TicketService fronts both reservation paths and announces what they
// commit.
type TicketService struct {
	purchaser *reservation.Purchaser
	booker    *reservation.Booker
	resolver  Resolver
	publisher notify.Publisher
	log       *zap.Logger
}

// NewTicketService constructs a TicketService. A nil publisher disables
// notifications.
func NewTicketService(
	purchaser *reservation.Purchaser,
	booker *reservation.Booker,
	resolver Resolver,
	publisher notify.Publisher,
	log *zap.Logger,
) *TicketService {
	if publisher == nil {
		publisher = notify.Noop{}
	}
	return &TicketService{
		purchaser: purchaser,
		booker:    booker,
		resolver:  resolver,
		publisher: publisher,
		log:       log,
	}
}

// Purchase buys one ticket for eventID.
func (s *TicketService) Purchase(ctx context.Context, eventID int64) (model.Reservation, error) {
	res, err := s.purchaser.Purchase(ctx, eventID)
	if err != nil {
		return model.Reservation{}, err
	}

	s.announce(ctx, notify.RoutingTicketPurchased, func(ctx context.Context) error {
		return s.publisher.TicketPurchased(ctx, res)
	})
	return res, nil
}

// Parse resolves free text into a structured booking guess. The guess is
// not acted on; Confirm must be called with it.
func (s *TicketService) Parse(ctx context.Context, text string) (intent.Result, error) {
	return s.resolver.Resolve(ctx, text)
}

// Confirm books a parsed request. Both fields are re-checked here because
// they arrive from the client, whatever the resolver produced.
func (s *TicketService) Confirm(ctx context.Context, req model.ConfirmRequest) (ConfirmResult, error) {
	name := strings.TrimSpace(req.Event)
	if name == "" || req.Tickets == nil {
		return ConfirmResult{}, fmt.Errorf("%w: event and tickets are required", reservation.ErrInvalidRequest)
	}
	qty := *req.Tickets
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty < 1 || qty > math.MaxInt32 {
		return ConfirmResult{}, fmt.Errorf("%w: tickets must be at least 1", reservation.ErrInvalidRequest)
	}

	conf, err := s.booker.Book(ctx, name, int(math.Floor(qty)))
	if err != nil {
		return ConfirmResult{}, err
	}

	res := model.Reservation{
		EventID:   conf.EventID,
		EventName: conf.EventName,
		Quantity:  conf.Quantity,
		BookingID: conf.BookingID,
	}
	s.announce(ctx, notify.RoutingBookingConfirmed, func(ctx context.Context) error {
		return s.publisher.BookingConfirmed(ctx, res)
	})

	return ConfirmResult{
		Booking: conf,
		Message: fmt.Sprintf("Booked %d ticket(s) for %s.", conf.Quantity, conf.EventName),
	}, nil
}

// announce runs after commit. The client may already be gone, so the
// publish gets its own deadline instead of the request's.
func (s *TicketService) announce(ctx context.Context, key string, publish func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := publish(ctx); err != nil {
		s.log.Warn("notification not delivered",
			zap.String("routing_key", key),
			zap.Error(err),
		)
	}
}
