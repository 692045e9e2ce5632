package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/clinicore/booking/internal/api"
	"github.com/clinicore/booking/internal/booking"
	"github.com/clinicore/booking/internal/clock"
	"github.com/clinicore/booking/internal/config"
	"github.com/clinicore/booking/internal/db"
	"github.com/clinicore/booking/internal/directory"
	"github.com/clinicore/booking/internal/logging"
	"github.com/clinicore/booking/internal/metrics"
	"github.com/clinicore/booking/internal/notify"
	redisclient "github.com/clinicore/booking/internal/redis"
	"github.com/clinicore/booking/internal/report"
	"github.com/clinicore/booking/internal/schedule"
	"github.com/clinicore/booking/internal/slot"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("prod", "info")
		bootLog.Fatal().Err(err).Msg("config load error")
	}

	log := logging.New(cfg.Env, cfg.LogLevel)
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)
	clk := clock.System()

	dir := directory.NewPgDirectory(pgPool)
	scheduleRepo := schedule.NewPgRepository(pgPool)
	slotRepo := slot.NewPgRepository(pgPool)
	bookingRepo := booking.NewPgRepository(pgPool)
	reporter := report.NewPgReporter(pgPool)

	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.EmailFrom,
		FromName:  cfg.EmailFromName,
	}, log); sg != nil {
		sender = sg
	} else {
		sender = notify.NewStubSender(log)
		log.Info().Msg("sendgrid not configured, using stub email sender")
	}
	notifier := notify.NewBookingNotifier(sender, log)

	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	slotSvc := slot.NewService(slotRepo, scheduleRepo, dir, clk, bookingMetrics, log)
	bookingSvc := booking.NewService(bookingRepo, slotRepo, dir, dir, locker, notifier, clk, bookingMetrics, log)

	router := api.NewRouter(api.RouterConfig{
		Slots:    slotSvc,
		Bookings: bookingSvc,
		Reports:  reporter,
		PgPool:   pgPool,
		Redis:    rdb,
		Env:      cfg.Env,
		Version:  version,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
