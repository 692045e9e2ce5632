package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/booking/internal/slot"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotUnavailable is the one error callers are expected to retry
	// against by re-fetching availability: somebody else got there first.
	ErrSlotUnavailable = errors.New("slot is no longer available")

	ErrSlotDoctorMismatch = errors.New("slot does not belong to this doctor")
	ErrPastSlot           = errors.New("slot is in the past")
	ErrInvalidBookingType = errors.New("unknown appointment type")
	ErrAlreadyCancelled   = errors.New("appointment is already cancelled")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrSlotBeingBooked    = errors.New("slot is currently being booked, please retry")
)

type BookParams struct {
	SlotID   uuid.UUID
	UserID   uuid.UUID
	DoctorID uuid.UUID
	Type     slot.BookingType
	Fee      float64
	Notes    string
}

type CancelParams struct {
	AppointmentID uuid.UUID
	CancelledBy   CancelledBy
	Reason        string
	At            time.Time
}

// Repository contains the appointment-store interactions. BookSlot and
// CancelAppointment are single transactions: slot claim plus appointment
// insert commit together or not at all, and likewise cancel plus release.
type Repository interface {
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]Appointment, error)

	BookSlot(ctx context.Context, p BookParams) (*Appointment, error)
	CancelAppointment(ctx context.Context, p CancelParams) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus, completedAt *time.Time) (*Appointment, error)
}
