package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinicore/booking/internal/slot"
)

// PgxPool is the pool surface the repository needs; pgxmock satisfies
// it in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	pool PgxPool
}

func NewPgRepository(pool PgxPool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `id, user_id, doctor_id, time_slot_id, appointment_type, status,
	consultation_fee, notes, doctor_notes, payment_status,
	cancelled_at, cancelled_by, cancellation_reason, completed_at,
	created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var cancelledBy *string

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.DoctorID,
		&a.TimeSlotID,
		&a.Type,
		&a.Status,
		&a.ConsultationFee,
		&a.Notes,
		&a.DoctorNotes,
		&a.PaymentStatus,
		&a.CancelledAt,
		&cancelledBy,
		&a.CancellationReason,
		&a.CompletedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	if cancelledBy != nil {
		cb := CancelledBy(*cancelledBy)
		a.CancelledBy = &cb
	}
	return &a, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Appointment, error) {
	return r.list(ctx, `user_id`, userID, limit, offset)
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]Appointment, error) {
	return r.list(ctx, `doctor_id`, doctorID, limit, offset)
}

func (r *PgRepository) list(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE `+column+` = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, id, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	return result, rows.Err()
}

// BookSlot claims the slot and creates its appointment in one
// transaction. The conditional UPDATE is the serialization point: of
// two racing transactions, exactly one sees status=available and
// proceeds; the other affects zero rows and fails with
// ErrSlotUnavailable.
func (r *PgRepository) BookSlot(ctx context.Context, p BookParams) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking tx: %w", err)
	}
	defer tx.Rollback(ctx)

	appointmentID := uuid.New()

	tag, err := tx.Exec(ctx, `
		UPDATE slots
		SET status = $2, booking_type = $3, appointment_id = $4, updated_at = now()
		WHERE id = $1 AND status = $5
	`, p.SlotID, slot.StatusBooked, p.Type, appointmentID, slot.StatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("claim slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var status slot.Status
		err := tx.QueryRow(ctx, `SELECT status FROM slots WHERE id = $1`, p.SlotID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, slot.ErrSlotNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("check slot status: %w", err)
		}
		return nil, ErrSlotUnavailable
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO appointments (id, user_id, doctor_id, time_slot_id, appointment_type, status,
		                          consultation_fee, notes, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING `+appointmentColumns+`
	`, appointmentID, p.UserID, p.DoctorID, p.SlotID, p.Type, StatusConfirmed, p.Fee, p.Notes, PaymentPending)

	appt, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit booking tx: %w", err)
	}

	return appt, nil
}

// CancelAppointment cancels the appointment and releases its slot in
// one transaction. A cancelled appointment with a still-booked slot can
// never escape here.
func (r *PgRepository) CancelAppointment(ctx context.Context, p CancelParams) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin cancel tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2, cancelled_at = $3, cancelled_by = $4, cancellation_reason = $5, updated_at = now()
		WHERE id = $1 AND status <> $2
		RETURNING `+appointmentColumns+`
	`, p.AppointmentID, StatusCancelled, p.At, p.CancelledBy, p.Reason)

	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			var status AppointmentStatus
			probe := tx.QueryRow(ctx, `SELECT status FROM appointments WHERE id = $1`, p.AppointmentID).Scan(&status)
			if probe == nil && status == StatusCancelled {
				return nil, ErrAlreadyCancelled
			}
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE slots
		SET status = $2, booking_type = NULL, appointment_id = NULL, updated_at = now()
		WHERE id = $1
	`, appt.TimeSlotID, slot.StatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("release slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cancel tx: %w", err)
	}

	return appt, nil
}

// UpdateStatus moves an appointment between statuses with a conditional
// UPDATE so a stale caller cannot clobber a concurrent transition.
func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus, completedAt *time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2, completed_at = COALESCE($3, completed_at), updated_at = now()
		WHERE id = $1 AND status = $4
		RETURNING `+appointmentColumns+`
	`, id, to, completedAt, from)

	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Distinguish a missing row from one in the wrong state.
			var status AppointmentStatus
			probe := r.pool.QueryRow(ctx, `SELECT status FROM appointments WHERE id = $1`, id).Scan(&status)
			if probe == nil {
				return nil, ErrInvalidTransition
			}
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	return appt, nil
}
