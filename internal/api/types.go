package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/booking/internal/booking"
	"github.com/clinicore/booking/internal/slot"
)

type GenerateSlotsRequest struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD, doctor-local
	EndDate   string `json:"end_date"`
}

type GenerateSlotsResponse struct {
	SlotsGenerated int `json:"slots_generated"`
	Duplicates     int `json:"duplicates"`
}

type SlotResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Period    string    `json:"period"`
	Status    string    `json:"status"`
}

type AvailabilityResponse struct {
	DoctorAvailable      bool           `json:"doctor_available"`
	UnavailabilityReason string         `json:"unavailability_reason,omitempty"`
	Slots                []SlotResponse `json:"slots"`
}

type BookRequest struct {
	DoctorID        string `json:"doctor_id"`
	TimeSlotID      string `json:"time_slot_id"`
	AppointmentType string `json:"appointment_type"`
	Notes           string `json:"notes,omitempty"`
}

type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"user_id"`
	DoctorID           uuid.UUID  `json:"doctor_id"`
	TimeSlotID         uuid.UUID  `json:"time_slot_id"`
	AppointmentType    string     `json:"appointment_type"`
	Status             string     `json:"status"`
	ConsultationFee    float64    `json:"consultation_fee"`
	Notes              string     `json:"notes,omitempty"`
	DoctorNotes        string     `json:"doctor_notes,omitempty"`
	PaymentStatus      string     `json:"payment_status"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy        *string    `json:"cancelled_by,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type MarkUnavailableRequest struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Reason      string `json:"reason"`
	Type        string `json:"type"`
	IsRecurring bool   `json:"is_recurring"`
}

type MarkUnavailableResponse struct {
	ID             uuid.UUID `json:"id"`
	DoctorID       uuid.UUID `json:"doctor_id"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	Reason         string    `json:"reason"`
	Type           string    `json:"type"`
	IsRecurring    bool      `json:"is_recurring"`
	SlotsCancelled int64     `json:"slots_cancelled"`
}

type BulkUpdateSlotsRequest struct {
	SlotIDs   []string `json:"slot_ids"`
	NewStatus string   `json:"new_status"`
}

type BulkUpdateSlotsResponse struct {
	UpdatedCount        int64 `json:"updated_count"`
	RejectedBookedCount int64 `json:"rejected_booked_count"`
}

type DoctorStatsResponse struct {
	TotalAppointments int64 `json:"total_appointments"`
	Confirmed         int64 `json:"confirmed"`
	Cancelled         int64 `json:"cancelled"`
	Completed         int64 `json:"completed"`
	NoShow            int64 `json:"no_show"`
	AvailableSlots    int64 `json:"available_slots"`
	BookedSlots       int64 `json:"booked_slots"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toSlotResponse(s slot.Slot) SlotResponse {
	return SlotResponse{
		ID:        s.ID,
		DoctorID:  s.DoctorID,
		Date:      s.Date.Format("2006-01-02"),
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Period:    string(s.Period),
		Status:    string(s.Status),
	}
}

func toAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:                 a.ID,
		UserID:             a.UserID,
		DoctorID:           a.DoctorID,
		TimeSlotID:         a.TimeSlotID,
		AppointmentType:    string(a.Type),
		Status:             string(a.Status),
		ConsultationFee:    a.ConsultationFee,
		Notes:              a.Notes,
		DoctorNotes:        a.DoctorNotes,
		PaymentStatus:      string(a.PaymentStatus),
		CancelledAt:        a.CancelledAt,
		CancellationReason: a.CancellationReason,
		CompletedAt:        a.CompletedAt,
		CreatedAt:          a.CreatedAt,
	}
	if a.CancelledBy != nil {
		by := string(*a.CancelledBy)
		resp.CancelledBy = &by
	}
	return resp
}
