package report

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/booking/internal/booking"
)

var (
	ErrEmptyFilter   = errors.New("filter needs at least one field")
	ErrInvalidStatus = errors.New("unknown appointment status in filter")
	ErrInvalidRange  = errors.New("filter from-date is after to-date")
)

// Filter is the explicit read-side query object: every field optional,
// every field validated before it reaches SQL.
type Filter struct {
	DoctorID *uuid.UUID
	UserID   *uuid.UUID
	Status   *booking.AppointmentStatus
	FromDate *time.Time
	ToDate   *time.Time
}

func (f Filter) Validate() error {
	if f.DoctorID == nil && f.UserID == nil && f.Status == nil && f.FromDate == nil && f.ToDate == nil {
		return ErrEmptyFilter
	}
	if f.Status != nil && !booking.ValidStatus(*f.Status) {
		return ErrInvalidStatus
	}
	if f.FromDate != nil && f.ToDate != nil && f.ToDate.Before(*f.FromDate) {
		return ErrInvalidRange
	}
	return nil
}

// DoctorStats is the dashboard aggregate for one doctor.
type DoctorStats struct {
	TotalAppointments int64
	Confirmed         int64
	Cancelled         int64
	Completed         int64
	NoShow            int64
	AvailableSlots    int64
	BookedSlots       int64
}

// AppointmentRow is the flattened read model for listings: appointment
// joined with its slot's calendar position.
type AppointmentRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	DoctorID  uuid.UUID
	Date      time.Time
	StartTime string
	EndTime   string
	Type      string
	Status    booking.AppointmentStatus
	Fee       float64
	CreatedAt time.Time
}
