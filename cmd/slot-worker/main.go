package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicore/booking/internal/clock"
	"github.com/clinicore/booking/internal/config"
	"github.com/clinicore/booking/internal/db"
	"github.com/clinicore/booking/internal/directory"
	"github.com/clinicore/booking/internal/logging"
	"github.com/clinicore/booking/internal/schedule"
	"github.com/clinicore/booking/internal/slot"
)

// The slot worker keeps every doctor's booking window rolled forward:
// on each tick it re-generates slots from today through today+N days.
// Generation is idempotent, so overlapping runs only produce duplicates.

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("prod", "info")
		bootLog.Fatal().Err(err).Msg("config load error")
	}

	log := logging.New(cfg.Env, cfg.LogLevel)
	log.Info().
		Str("env", cfg.Env).
		Dur("interval", cfg.WorkerInterval).
		Int("window_days", cfg.SlotWindowDays).
		Msg("slot-worker starting up")

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

	clk := clock.System()
	dir := directory.NewPgDirectory(pgPool)
	slotSvc := slot.NewService(
		slot.NewPgRepository(pgPool),
		schedule.NewPgRepository(pgPool),
		dir,
		clk,
		nil,
		log,
	)

	w := worker{
		doctors:    dir,
		slots:      slotSvc,
		clk:        clk,
		windowDays: cfg.SlotWindowDays,
		log:        log,
	}

	// Run once at startup
	w.runOnce(rootCtx)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping slot worker")
			return
		case <-ticker.C:
			w.runOnce(rootCtx)
		}
	}
}

type worker struct {
	doctors    directory.DoctorDirectory
	slots      *slot.Service
	clk        clock.Clock
	windowDays int
	log        zerolog.Logger
}

func (w worker) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()

	ids, err := w.doctors.ListDoctorIDs(runCtx)
	if err != nil {
		w.log.Error().Err(err).Msg("list doctors failed")
		return
	}

	var generated, duplicates int
	for _, id := range ids {
		doctor, err := w.doctors.GetDoctor(runCtx, id)
		if err != nil {
			w.log.Warn().Err(err).Str("doctor_id", id.String()).Msg("skipping doctor")
			continue
		}

		loc := doctor.Location()
		from := clock.LocalDate(w.clk.Now(), loc)
		to := from.AddDate(0, 0, w.windowDays)

		res, err := w.slots.GenerateSlots(runCtx, id, from.Format("2006-01-02"), to.Format("2006-01-02"))
		if err != nil {
			w.log.Error().Err(err).Str("doctor_id", id.String()).Msg("slot generation failed")
			continue
		}
		generated += res.SlotsGenerated
		duplicates += res.Duplicates
	}

	w.log.Info().
		Int("doctors", len(ids)).
		Int("generated", generated).
		Int("duplicates", duplicates).
		Dur("took", time.Since(start)).
		Msg("slot window roll complete")
}
