// Package model defines the core domain types for the campus ticketing system.
package model

// DateLayout is the calendar-date format used for event dates everywhere.
const DateLayout = "2006-01-02"

// Event represents a ticketed occurrence created by an administrator.
type Event struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Date             string `json:"date"`
	TicketsRemaining int    `json:"tickets"`
	Capacity         int    `json:"capacity"`
}

// Sold returns how many tickets have been reserved against the event.
func (e *Event) Sold() int {
	return e.Capacity - e.TicketsRemaining
}

// SoldOut returns true when no tickets remain.
func (e *Event) SoldOut() bool {
	return e.TicketsRemaining <= 0
}

// Booking is the persisted record of a multi-ticket reservation.
type Booking struct {
	ID      int64 `json:"id"`
	EventID int64 `json:"event_id"`
	Qty     int   `json:"qty"`
}

// Reservation is the committed outcome of a single inventory transaction.
// BookingID is zero when no booking row was written.
type Reservation struct {
	EventID   int64
	EventName string
	Quantity  int
	BookingID int64
}

// BookingConfirmation is returned to callers of the multi-ticket path.
type BookingConfirmation struct {
	BookingID int64  `json:"bookingId"`
	EventID   int64  `json:"eventId"`
	EventName string `json:"eventName"`
	Quantity  int    `json:"quantity"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Name    string `json:"name"`
	Date    string `json:"date"`
	Tickets *int   `json:"tickets"`
}

// Credentials is the payload for registering and logging in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ParseRequest carries free text for the intent resolver.
type ParseRequest struct {
	Text string `json:"text"`
}

// ConfirmRequest is the structured booking request produced by the parse step.
// Tickets stays a float so fractional resolver output can be floored server-side.
type ConfirmRequest struct {
	Event   string   `json:"event"`
	Tickets *float64 `json:"tickets"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Hint    string            `json:"hint,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}
