package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/booking/internal/slot"
)

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
	StatusNoShow    AppointmentStatus = "no_show"
)

func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type CancelledBy string

const (
	CancelledByUser   CancelledBy = "user"
	CancelledByDoctor CancelledBy = "doctor"
	CancelledBySystem CancelledBy = "system"
)

// Appointment is a patient's claim on exactly one slot. ConsultationFee
// is snapshotted from the doctor record at booking time and never
// changes afterwards, whatever happens to the doctor's fee.
type Appointment struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	DoctorID           uuid.UUID
	TimeSlotID         uuid.UUID
	Type               slot.BookingType
	Status             AppointmentStatus
	ConsultationFee    float64
	Notes              string
	DoctorNotes        string
	PaymentStatus      PaymentStatus
	CancelledAt        *time.Time
	CancelledBy        *CancelledBy
	CancellationReason *string
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
