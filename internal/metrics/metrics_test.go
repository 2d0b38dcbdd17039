package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveReservation(t *testing.T) {
	m := New()
	m.ObserveReservation("purchase", "ok", 3*time.Millisecond)
	m.ObserveReservation("purchase", "ok", 4*time.Millisecond)
	m.ObserveReservation("booking", "insufficient_inventory", time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, `ticketing_reservations_total{outcome="ok",path="purchase"} 2`)
	assert.Contains(t, out, `ticketing_reservations_total{outcome="insufficient_inventory",path="booking"} 1`)
	assert.Contains(t, out, `ticketing_reservation_duration_seconds_count{path="purchase"} 2`)
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/events/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/events/"+id, nil))
	}

	out := scrape(t, m)
	assert.Contains(t, out, `ticketing_http_requests_total{method="GET",route="/api/events/{id}",status="404"} 3`)
}
