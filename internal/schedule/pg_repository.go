package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the repository needs. Tests
// substitute a pgxmock pool.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	pool Querier
}

func NewPgRepository(pool Querier) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	var periods []string

	err := row.Scan(
		&s.ID,
		&s.DoctorID,
		&s.DayOfWeek,
		&s.IsAvailable,
		&periods,
		&s.StartTime,
		&s.EndTime,
		&s.BreakStart,
		&s.BreakEnd,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	s.Periods = make([]Period, 0, len(periods))
	for _, p := range periods {
		s.Periods = append(s.Periods, Period(p))
	}
	return &s, nil
}

func scanUnavailability(row pgx.Row) (*Unavailability, error) {
	var u Unavailability

	err := row.Scan(
		&u.ID,
		&u.DoctorID,
		&u.StartDate,
		&u.EndDate,
		&u.Reason,
		&u.Type,
		&u.IsRecurring,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnavailabilityNotFound
		}
		return nil, err
	}

	return &u, nil
}

func (r *PgRepository) WeekTemplate(ctx context.Context, doctorID uuid.UUID) (WeekTemplate, error) {
	var week WeekTemplate

	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, day_of_week, is_available, periods,
		       start_time, end_time, break_start_time, break_end_time,
		       created_at, updated_at
		FROM schedules
		WHERE doctor_id = $1
		ORDER BY day_of_week
	`, doctorID)
	if err != nil {
		return week, fmt.Errorf("query week template: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return week, err
		}
		if s.DayOfWeek >= 0 && s.DayOfWeek < 7 {
			week[s.DayOfWeek] = s
		}
	}

	if err := rows.Err(); err != nil {
		return week, err
	}

	return week, nil
}

func (r *PgRepository) DayTemplate(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*Schedule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, day_of_week, is_available, periods,
		       start_time, end_time, break_start_time, break_end_time,
		       created_at, updated_at
		FROM schedules
		WHERE doctor_id = $1 AND day_of_week = $2
	`, doctorID, dayOfWeek)
	return scanSchedule(row)
}

func (r *PgRepository) ListUnavailability(ctx context.Context, doctorID uuid.UUID) ([]Unavailability, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, start_date, end_date, reason, type, is_recurring, created_at
		FROM unavailability
		WHERE doctor_id = $1
		ORDER BY start_date
	`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("query unavailability: %w", err)
	}
	defer rows.Close()

	var result []Unavailability
	for rows.Next() {
		u, err := scanUnavailability(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CreateUnavailability(ctx context.Context, u Unavailability) (*Unavailability, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO unavailability (id, doctor_id, start_date, end_date, reason, type, is_recurring, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING id, doctor_id, start_date, end_date, reason, type, is_recurring, created_at
	`, u.ID, u.DoctorID, u.StartDate, u.EndDate, u.Reason, u.Type, u.IsRecurring)

	return scanUnavailability(row)
}
