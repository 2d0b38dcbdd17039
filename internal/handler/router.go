package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/auth"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/metrics"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/ratelimit"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/service"
)

// Deps is everything the router needs. Limiter may be nil.
type Deps struct {
	Events        *service.EventService
	Tickets       *service.TicketService
	Auth          *auth.Service
	Metrics       *metrics.Metrics
	Limiter       *ratelimit.Limiter
	Log           *zap.Logger
	AllowedOrigin string
}

// NewRouter builds the full HTTP surface.
func NewRouter(d Deps) http.Handler {
	events := NewEventHandler(d.Events, d.Log)
	tickets := NewTicketHandler(d.Tickets, d.Log)
	authH := NewAuthHandler(d.Auth, d.Log)
	requireAuth := Authenticate(d.Auth)

	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(d.Log))
	r.Use(d.Metrics.Middleware)
	r.Use(CORS(d.AllowedOrigin))

	r.Get("/health", HealthCheck)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.With(requireAuth).Get("/protected", authH.Protected)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", events.ListEvents)
			r.Get("/{id}", events.GetEvent)
			r.Get("/{id}/bookings", events.ListBookings)
			r.With(requireAuth, d.Limiter.Middleware).Post("/{id}/purchase", tickets.Purchase)
		})

		r.Post("/admin/events", events.CreateEvent)

		r.Route("/llm", func(r chi.Router) {
			r.Post("/parse", tickets.Parse)
			r.With(d.Limiter.Middleware).Post("/confirm", tickets.Confirm)
		})
	})

	return r
}
