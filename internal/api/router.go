package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicore/booking/internal/booking"
	"github.com/clinicore/booking/internal/report"
	"github.com/clinicore/booking/internal/slot"
)

type RouterConfig struct {
	Slots    *slot.Service
	Bookings *booking.Service
	Reports  *report.PgReporter
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Env      string
	Version  string
	Logger   zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(PrincipalMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/doctors/{doctorID}", func(r chi.Router) {
		r.Post("/slots/generate", generateSlotsHandler(cfg.Slots))
		r.Get("/slots", listAvailableSlotsHandler(cfg.Slots))
		r.Post("/slots/bulk-status", bulkUpdateSlotsHandler(cfg.Slots))
		r.Post("/unavailability", markUnavailableHandler(cfg.Slots))
		r.Get("/appointments", listDoctorAppointmentsHandler(cfg.Bookings))
		r.Get("/stats", doctorStatsHandler(cfg.Reports))
	})

	r.Post("/appointments", bookAppointmentHandler(cfg.Bookings))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Bookings))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Bookings))
	r.Post("/appointments/{id}/status", setAppointmentStatusHandler(cfg.Bookings))

	r.Get("/users/{userID}/appointments", listUserAppointmentsHandler(cfg.Bookings))

	return r
}
