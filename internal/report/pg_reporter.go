package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinicore/booking/internal/booking"
	"github.com/clinicore/booking/internal/slot"
)

type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgReporter serves the read side: dashboard aggregates and filtered
// appointment listings. No invariants of its own; it only reads what
// the booking core wrote.
type PgReporter struct {
	pool Querier
}

func NewPgReporter(pool Querier) *PgReporter {
	return &PgReporter{pool: pool}
}

func (r *PgReporter) DoctorStats(ctx context.Context, doctorID uuid.UUID) (*DoctorStats, error) {
	var s DoctorStats

	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = $2),
		       count(*) FILTER (WHERE status = $3),
		       count(*) FILTER (WHERE status = $4),
		       count(*) FILTER (WHERE status = $5)
		FROM appointments
		WHERE doctor_id = $1
	`, doctorID, booking.StatusConfirmed, booking.StatusCancelled, booking.StatusCompleted, booking.StatusNoShow).Scan(
		&s.TotalAppointments,
		&s.Confirmed,
		&s.Cancelled,
		&s.Completed,
		&s.NoShow,
	)
	if err != nil {
		return nil, fmt.Errorf("appointment stats: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT count(*) FILTER (WHERE status = $2),
		       count(*) FILTER (WHERE status = $3)
		FROM slots
		WHERE doctor_id = $1
	`, doctorID, slot.StatusAvailable, slot.StatusBooked).Scan(
		&s.AvailableSlots,
		&s.BookedSlots,
	)
	if err != nil {
		return nil, fmt.Errorf("slot stats: %w", err)
	}

	return &s, nil
}

// Appointments lists appointment rows matching the validated filter,
// newest first.
func (r *PgReporter) Appointments(ctx context.Context, f Filter, limit, offset int) ([]AppointmentRow, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var (
		where []string
		args  []any
	)
	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, clause+"$"+strconv.Itoa(len(args)))
	}

	if f.DoctorID != nil {
		add("a.doctor_id = ", *f.DoctorID)
	}
	if f.UserID != nil {
		add("a.user_id = ", *f.UserID)
	}
	if f.Status != nil {
		add("a.status = ", *f.Status)
	}
	if f.FromDate != nil {
		add("s.date >= ", *f.FromDate)
	}
	if f.ToDate != nil {
		add("s.date <= ", *f.ToDate)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT a.id, a.user_id, a.doctor_id, s.date, s.start_time, s.end_time,
		       a.appointment_type, a.status, a.consultation_fee, a.created_at
		FROM appointments a
		JOIN slots s ON s.id = a.time_slot_id
		WHERE %s
		ORDER BY s.date DESC, s.start_time DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var result []AppointmentRow
	for rows.Next() {
		var row AppointmentRow
		err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.DoctorID,
			&row.Date,
			&row.StartTime,
			&row.EndTime,
			&row.Type,
			&row.Status,
			&row.Fee,
			&row.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	return result, rows.Err()
}
