package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/booking/internal/db"
	"github.com/clinicore/booking/internal/schedule"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	doctorIDs, err := seedDoctors(context.Background(), pool, 50)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedSchedules(context.Background(), pool, doctorIDs); err != nil {
		log.Fatalf("seed schedules: %v", err)
	}
	if err := seedUsers(context.Background(), pool, 2000); err != nil {
		log.Fatalf("seed users: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d doctors", count)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}
	timezones := []string{
		"America/New_York",
		"America/Chicago",
		"America/Los_Angeles",
		"Europe/London",
		"Asia/Kolkata",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		email := gofakeit.Email()
		specialty := specialties[gofakeit.Number(0, len(specialties)-1)]
		tz := timezones[gofakeit.Number(0, len(timezones)-1)]
		fee := float64(gofakeit.Number(20, 200))

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, email, specialty, consultation_fee, timezone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		`, id, name, email, specialty, fee, tz)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("doctors seeded")
	return ids, nil
}

// seedSchedules gives every doctor a Monday-Friday template with a
// lunch break, plus a Saturday morning for some of them.
func seedSchedules(ctx context.Context, pool *pgxpool.Pool, doctorIDs []uuid.UUID) error {
	log.Printf("seeding schedules for %d doctors", len(doctorIDs))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	weekdayPeriods := []string{string(schedule.PeriodMorning), string(schedule.PeriodAfternoon)}
	saturdayPeriods := []string{string(schedule.PeriodMorning)}

	for _, doctorID := range doctorIDs {
		saturdays := gofakeit.Bool()

		for day := 0; day < 7; day++ {
			available := day >= 1 && day <= 5
			periods := weekdayPeriods
			startTime, endTime := "09:00", "17:00"
			breakStart, breakEnd := "13:00", "14:00"

			if day == 6 && saturdays {
				available = true
				periods = saturdayPeriods
				startTime, endTime = "09:00", "12:00"
				breakStart, breakEnd = "", ""
			}

			var bs, be *string
			if breakStart != "" {
				bs, be = &breakStart, &breakEnd
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO schedules (id, doctor_id, day_of_week, is_available, periods,
				                       start_time, end_time, break_start_time, break_end_time,
				                       created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
			`, uuid.New(), doctorID, day, available, periods, startTime, endTime, bs, be)
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("schedules seeded")
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d users", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO users (id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
			`, uuid.New(), gofakeit.Name(), gofakeit.Email())
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("users seeded: %d/%d", end, count)
	}

	log.Println("users seeded")
	return nil
}
