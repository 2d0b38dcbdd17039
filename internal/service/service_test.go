package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/database"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/intent"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/repository"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/reservation"
)

type recordingPublisher struct {
	mu        sync.Mutex
	purchased []model.Reservation
	confirmed []model.Reservation
	err       error
}

func (p *recordingPublisher) TicketPurchased(_ context.Context, r model.Reservation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.purchased = append(p.purchased, r)
	return p.err
}

func (p *recordingPublisher) BookingConfirmed(_ context.Context, r model.Reservation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmed = append(p.confirmed, r)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	store     *repository.SQLiteStore
	events    *EventService
	tickets   *TicketService
	publisher *recordingPublisher
}

func setup(t *testing.T) fixture {
	t.Helper()

	pool, err := database.OpenSQLite(config.SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "service.db"),
		PoolSize:    4,
		BusyTimeout: 5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	require.NoError(t, database.BootstrapSQLite(context.Background(), pool, false))

	store := repository.NewSQLiteStore(pool)
	coord := reservation.NewCoordinator(store, zap.NewNop(), nil)
	pub := &recordingPublisher{}

	return fixture{
		store:  store,
		events: NewEventService(store),
		tickets: NewTicketService(
			reservation.NewPurchaser(coord),
			reservation.NewBooker(coord),
			intent.NewResolver(nil, zap.NewNop()),
			pub,
			zap.NewNop(),
		),
		publisher: pub,
	}
}

func intPtr(n int) *int { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestCreateEventValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.events.CreateEvent(ctx, model.CreateEventRequest{Name: "  ", Date: "2026-02-30", Tickets: intPtr(-1)})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{
		"name":    "required",
		"date":    "use YYYY-MM-DD and a real calendar date",
		"tickets": "integer >= 0 required",
	}, verr.Details)

	_, err = f.events.CreateEvent(ctx, model.CreateEventRequest{Name: "Career Fair", Date: "2026-11-20"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{"tickets": "integer >= 0 required"}, verr.Details)

	e, err := f.events.CreateEvent(ctx, model.CreateEventRequest{Name: "  Career Fair ", Date: "2026-11-20", Tickets: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, "Career Fair", e.Name)
	assert.True(t, e.SoldOut())
}

func TestIsCalendarDate(t *testing.T) {
	assert.True(t, isCalendarDate("2028-02-29"))
	assert.False(t, isCalendarDate("2027-02-29"))
	assert.False(t, isCalendarDate("2026-1-07"))
	assert.False(t, isCalendarDate("07/11/2026"))
	assert.False(t, isCalendarDate(""))
}

func TestGetEventAndBookings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.events.GetEvent(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.events.ListBookings(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	e, err := f.events.CreateEvent(ctx, model.CreateEventRequest{Name: "Jazz Night", Date: "2026-11-07", Tickets: intPtr(5)})
	require.NoError(t, err)

	_, err = f.tickets.Confirm(ctx, model.ConfirmRequest{Event: "jazz night", Tickets: floatPtr(2)})
	require.NoError(t, err)

	bookings, err := f.events.ListBookings(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, 2, bookings[0].Qty)
}

func TestPurchasePublishesAfterCommit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	e, err := f.store.CreateEvent(ctx, "Spring Concert", "2027-04-17", 1)
	require.NoError(t, err)

	res, err := f.tickets.Purchase(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Quantity)

	_, err = f.tickets.Purchase(ctx, e.ID)
	assert.ErrorIs(t, err, reservation.ErrInsufficientInventory)

	require.Len(t, f.publisher.purchased, 1, "failed purchases are not announced")
	assert.Equal(t, e.ID, f.publisher.purchased[0].EventID)
}

func TestPublishFailureDoesNotFailPurchase(t *testing.T) {
	f := setup(t)
	f.publisher.err = errors.New("broker down")
	ctx := context.Background()

	e, err := f.store.CreateEvent(ctx, "Spring Concert", "2027-04-17", 3)
	require.NoError(t, err)

	_, err = f.tickets.Purchase(ctx, e.ID)
	require.NoError(t, err)

	got, err := f.store.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TicketsRemaining)
}

func TestConfirm(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	e, err := f.store.CreateEvent(ctx, "Jazz Night", "2026-11-07", 5)
	require.NoError(t, err)

	out, err := f.tickets.Confirm(ctx, model.ConfirmRequest{Event: " Jazz Night ", Tickets: floatPtr(2.9)})
	require.NoError(t, err)
	assert.Equal(t, "Booked 2 ticket(s) for Jazz Night.", out.Message)
	assert.NotZero(t, out.Booking.BookingID)

	got, err := f.store.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TicketsRemaining)

	require.Len(t, f.publisher.confirmed, 1)
	assert.Equal(t, out.Booking.BookingID, f.publisher.confirmed[0].BookingID)
}

func TestConfirmRejectsBadInput(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.store.CreateEvent(ctx, "Jazz Night", "2026-11-07", 5)
	require.NoError(t, err)

	cases := []model.ConfirmRequest{
		{Event: "", Tickets: floatPtr(1)},
		{Event: "Jazz Night"},
		{Event: "Jazz Night", Tickets: floatPtr(0.5)},
		{Event: "Jazz Night", Tickets: floatPtr(-2)},
	}
	for _, req := range cases {
		_, err := f.tickets.Confirm(ctx, req)
		assert.ErrorIs(t, err, reservation.ErrInvalidRequest)
	}

	_, err = f.tickets.Confirm(ctx, model.ConfirmRequest{Event: "Jazz Night", Tickets: floatPtr(6)})
	assert.ErrorIs(t, err, reservation.ErrInsufficientInventory)

	_, err = f.tickets.Confirm(ctx, model.ConfirmRequest{Event: "Polka Night", Tickets: floatPtr(1)})
	assert.ErrorIs(t, err, reservation.ErrNotFound)

	assert.Empty(t, f.publisher.confirmed)
}

func TestParse(t *testing.T) {
	f := setup(t)

	res, err := f.tickets.Parse(context.Background(), "Book 2 tickets for Jazz Night")
	require.NoError(t, err)
	assert.Equal(t, intent.Result{Event: "Jazz Night", Tickets: 2, Intent: intent.Book}, res)
}
