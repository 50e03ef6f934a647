package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clinicware/booking-platform/internal/appointments"
	"github.com/clinicware/booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	MetricsHandler      http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/health", cfg.AppointmentsHandler.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Get("/availability", cfg.AppointmentsHandler.GetAvailability)
	r.Get("/doctors", cfg.AppointmentsHandler.ListDoctors)

	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", cfg.AppointmentsHandler.ListAppointments)
		r.Post("/", cfg.AppointmentsHandler.CreateAppointment)
		r.Post("/{id}/cancel", cfg.AppointmentsHandler.CancelAppointment)
	})

	return r
}
