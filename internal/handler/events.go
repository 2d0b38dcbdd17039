package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/repository"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/service"
)

// EventHandler serves the event catalogue and the admin create endpoint.
type EventHandler struct {
	svc *service.EventService
	log *zap.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService, log *zap.Logger) *EventHandler {
	return &EventHandler{svc: svc, log: log}
}

// CreateEvent handles POST /api/admin/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "Invalid input", Details: verr.Details})
			return
		}
		h.log.Error("create event failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /api/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		h.log.Error("list events failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	event, err := h.svc.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.log.Error("get event failed", zap.Int64("event_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// ListBookings handles GET /api/events/{id}/bookings
func (h *EventHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	bookings, err := h.svc.ListBookings(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.log.Error("list bookings failed", zap.Int64("event_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}
