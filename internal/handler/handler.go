// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/reservation"
)

var errBadID = errors.New("invalid event id")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

// decodeJSON reads at most 1 MB. Unknown fields are ignored so clients can
// post the parse result straight back to confirm.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(dst)
}

func eventID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errBadID
	}
	return id, nil
}

// reservationMessages lets each endpoint keep its own wording for the same
// outcome.
type reservationMessages struct {
	notFound     string
	insufficient string
}

// writeReservationError maps the reservation outcome taxonomy onto HTTP.
func writeReservationError(w http.ResponseWriter, log *zap.Logger, err error, msgs reservationMessages) {
	switch {
	case errors.Is(err, reservation.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, reservation.ErrNotFound):
		writeError(w, http.StatusNotFound, msgs.notFound)
	case errors.Is(err, reservation.ErrInsufficientInventory):
		writeError(w, http.StatusConflict, msgs.insufficient)
	default:
		log.Error("reservation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
