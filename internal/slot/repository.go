package slot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/booking/internal/schedule"
)

var ErrSlotNotFound = errors.New("slot not found")

// InsertResult distinguishes genuinely new rows from tuples a prior
// generation run already created. Duplicates are the expected outcome
// of re-running the generator, never an error.
type InsertResult struct {
	Inserted   int
	Duplicates int
}

// Repository contains the slot-store interactions of the generator,
// the availability listing, and the administrative paths. The booking
// claim itself lives in the booking repository so it can share a
// transaction with the appointment insert.
type Repository interface {
	InsertMany(ctx context.Context, slots []Slot) (InsertResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	ListAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time, period *schedule.Period) ([]Slot, error)

	// CancelAvailableInRange is the unavailability sweep: every available
	// slot in the inclusive date range becomes cancelled. Booked and
	// already-cancelled slots are untouched.
	CancelAvailableInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) (int64, error)

	// UpdateStatusBulk flips slots in ids from exactly one status to
	// another, returning how many rows actually changed.
	UpdateStatusBulk(ctx context.Context, doctorID uuid.UUID, ids []uuid.UUID, from, to Status) (int64, error)
	CountWithStatus(ctx context.Context, doctorID uuid.UUID, ids []uuid.UUID, status Status) (int64, error)
}
