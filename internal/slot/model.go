package slot

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/booking/internal/schedule"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusAvailable, StatusBooked, StatusCancelled:
		return true
	}
	return false
}

// BookingType is the consultation channel a patient picks when booking.
type BookingType string

const (
	BookingVideoCall   BookingType = "video_call"
	BookingVoiceCall   BookingType = "voice_call"
	BookingClinicVisit BookingType = "clinic_visit"
)

func ValidBookingType(t BookingType) bool {
	switch t {
	case BookingVideoCall, BookingVoiceCall, BookingClinicVisit:
		return true
	}
	return false
}

// Slot is the atomic bookable unit: one doctor, one calendar day, one
// fixed 30-minute window. (doctor_id, date, start_time) is unique in
// the store regardless of status history.
type Slot struct {
	ID            uuid.UUID
	DoctorID      uuid.UUID
	Date          time.Time // doctor-local midnight
	StartTime     string    // "HH:MM"
	EndTime       string
	Period        schedule.Period
	Status        Status
	BookingType   *BookingType
	AppointmentID *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StartAt combines the slot's calendar day and wall-clock start in loc.
func (s *Slot) StartAt(loc *time.Location) (time.Time, error) {
	min, err := schedule.ParseHHMM(s.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), min/60, min%60, 0, 0, loc), nil
}
