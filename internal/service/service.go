// Package service implements validation and orchestration between the HTTP
// handlers, the reservation core and the side channels (notifications,
// intent parsing).
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/repository"
)

// ValidationError reports per-field problems with a request.
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Details))
	for f := range e.Details {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid input: " + strings.Join(fields, ", ")
}

// EventService handles the catalogue side: listing, lookup and creation.
// None of it touches tickets_remaining after creation.
type EventService struct {
	store repository.Store
}

// NewEventService constructs an EventService.
func NewEventService(store repository.Store) *EventService {
	return &EventService{store: store}
}

// CreateEvent validates req and inserts the event.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (model.Event, error) {
	name := strings.TrimSpace(req.Name)
	details := map[string]string{}

	if name == "" {
		details["name"] = "required"
	}
	if !isCalendarDate(req.Date) {
		details["date"] = "use YYYY-MM-DD and a real calendar date"
	}
	if req.Tickets == nil || *req.Tickets < 0 {
		details["tickets"] = "integer >= 0 required"
	}
	if len(details) > 0 {
		return model.Event{}, &ValidationError{Details: details}
	}

	event, err := s.store.CreateEvent(ctx, name, req.Date, *req.Tickets)
	if err != nil {
		return model.Event{}, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// ListEvents returns every event. Counts are a snapshot and may be stale by
// the time the caller acts on them.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetEvent returns one event or repository.ErrNotFound.
func (s *EventService) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Event{}, repository.ErrNotFound
		}
		return model.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// ListBookings returns the bookings recorded against an event.
func (s *EventService) ListBookings(ctx context.Context, eventID int64) ([]model.Booking, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	bookings, err := s.store.ListBookings(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// isCalendarDate accepts only YYYY-MM-DD strings naming a real day, so
// 2026-02-30 is rejected.
func isCalendarDate(s string) bool {
	if len(s) != len(model.DateLayout) {
		return false
	}
	t, err := time.Parse(model.DateLayout, s)
	return err == nil && t.Format(model.DateLayout) == s
}
