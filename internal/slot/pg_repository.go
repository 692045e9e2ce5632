package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinicore/booking/internal/schedule"
)

type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type PgRepository struct {
	pool Querier
}

func NewPgRepository(pool Querier) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	var bookingType *string

	err := row.Scan(
		&s.ID,
		&s.DoctorID,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.Period,
		&s.Status,
		&bookingType,
		&s.AppointmentID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	if bookingType != nil {
		bt := BookingType(*bookingType)
		s.BookingType = &bt
	}
	return &s, nil
}

const slotColumns = `id, doctor_id, date, start_time, end_time, period, status, booking_type, appointment_id, created_at, updated_at`

// InsertMany writes candidates in one pipelined batch. Tuples that
// already exist hit the (doctor_id, date, start_time) unique constraint
// and are absorbed by ON CONFLICT DO NOTHING, counted as duplicates.
// Any other failure aborts the batch; the counts accumulated up to that
// point are still returned alongside the error.
func (r *PgRepository) InsertMany(ctx context.Context, slots []Slot) (InsertResult, error) {
	var res InsertResult
	if len(slots) == 0 {
		return res, nil
	}

	batch := &pgx.Batch{}
	for _, s := range slots {
		id := s.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(`
			INSERT INTO slots (id, doctor_id, date, start_time, end_time, period, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
			ON CONFLICT (doctor_id, date, start_time) DO NOTHING
		`, id, s.DoctorID, s.Date, s.StartTime, s.EndTime, s.Period, StatusAvailable)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range slots {
		tag, err := br.Exec()
		if err != nil {
			return res, fmt.Errorf("insert slots: %w", err)
		}
		if tag.RowsAffected() == 0 {
			res.Duplicates++
		} else {
			res.Inserted++
		}
	}

	return res, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE id = $1
	`, id)
	return scanSlot(row)
}

func (r *PgRepository) ListAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time, period *schedule.Period) ([]Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE doctor_id = $1 AND date = $2 AND status = $3
	`
	args := []any{doctorID, date, StatusAvailable}
	if period != nil {
		query += ` AND period = $4`
		args = append(args, *period)
	}
	query += ` ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	defer rows.Close()

	var result []Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	return result, rows.Err()
}

func (r *PgRepository) CancelAvailableInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE slots
		SET status = $4, updated_at = now()
		WHERE doctor_id = $1
		  AND date >= $2 AND date <= $3
		  AND status = $5
	`, doctorID, from, to, StatusCancelled, StatusAvailable)
	if err != nil {
		return 0, fmt.Errorf("cancel slots in range: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgRepository) UpdateStatusBulk(ctx context.Context, doctorID uuid.UUID, ids []uuid.UUID, from, to Status) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE slots
		SET status = $3, updated_at = now()
		WHERE doctor_id = $1
		  AND id = ANY($2)
		  AND status = $4
	`, doctorID, ids, to, from)
	if err != nil {
		return 0, fmt.Errorf("bulk update slots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgRepository) CountWithStatus(ctx context.Context, doctorID uuid.UUID, ids []uuid.UUID, status Status) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM slots
		WHERE doctor_id = $1 AND id = ANY($2) AND status = $3
	`, doctorID, ids, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count slots by status: %w", err)
	}
	return n, nil
}
