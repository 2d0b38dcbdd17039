package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/intent"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/service"
)

const parseHint = "Try: 'Book 2 tickets for Jazz Night'"

var (
	purchaseMessages = reservationMessages{notFound: "Not found", insufficient: "Sold out"}
	confirmMessages  = reservationMessages{notFound: "Event not found", insufficient: "Not enough tickets"}
)

// TicketHandler serves both reservation paths and the parse step.
type TicketHandler struct {
	svc *service.TicketService
	log *zap.Logger
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(svc *service.TicketService, log *zap.Logger) *TicketHandler {
	return &TicketHandler{svc: svc, log: log}
}

// Purchase handles POST /api/events/{id}/purchase
func (h *TicketHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	res, err := h.svc.Purchase(r.Context(), id)
	if err != nil {
		writeReservationError(w, h.log, err, purchaseMessages)
		return
	}

	if claims, ok := ClaimsFrom(r.Context()); ok {
		h.log.Info("ticket purchased",
			zap.String("user", claims.Email),
			zap.Int64("event_id", res.EventID),
		)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type parseResponse struct {
	Event   *string     `json:"event"`
	Tickets int         `json:"tickets"`
	Intent  intent.Kind `json:"intent"`
}

// Parse handles POST /api/llm/parse
// Nothing is reserved here; the client shows the guess and calls confirm.
func (h *TicketHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req model.ParseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing text")
		return
	}

	res, err := h.svc.Parse(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, intent.ErrEmptyText) {
			writeError(w, http.StatusBadRequest, "Missing text")
			return
		}
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "Could not understand request", Hint: parseHint})
		return
	}

	out := parseResponse{Tickets: res.Tickets, Intent: res.Intent}
	if res.Event != "" {
		out.Event = &res.Event
	}
	writeJSON(w, http.StatusOK, out)
}

type confirmResponse struct {
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	BookingID int64  `json:"bookingId"`
}

// Confirm handles POST /api/llm/confirm
func (h *TicketHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req model.ConfirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	out, err := h.svc.Confirm(r.Context(), req)
	if err != nil {
		writeReservationError(w, h.log, err, confirmMessages)
		return
	}

	writeJSON(w, http.StatusOK, confirmResponse{OK: true, Message: out.Message, BookingID: out.Booking.BookingID})
}
