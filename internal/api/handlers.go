package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicore/booking/internal/auth"
	"github.com/clinicore/booking/internal/booking"
	"github.com/clinicore/booking/internal/directory"
	"github.com/clinicore/booking/internal/report"
	"github.com/clinicore/booking/internal/schedule"
	"github.com/clinicore/booking/internal/slot"
)

func generateSlotsHandler(slots *slot.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		doctorID, ok := parseDoctorID(w, r)
		if !ok {
			return
		}
		if !p.IsAdmin() && !(p.IsDoctor() && p.UserID == doctorID) {
			writeError(w, http.StatusForbidden, "forbidden", "only the doctor or an admin may generate slots")
			return
		}

		var req GenerateSlotsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		res, err := slots.GenerateSlots(r.Context(), doctorID, req.StartDate, req.EndDate)
		if err != nil {
			handleSlotError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, GenerateSlotsResponse{
			SlotsGenerated: res.SlotsGenerated,
			Duplicates:     res.Duplicates,
		})
	}
}

func listAvailableSlotsHandler(slots *slot.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := parseDoctorID(w, r)
		if !ok {
			return
		}

		date := r.URL.Query().Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required")
			return
		}

		var period *schedule.Period
		if p := r.URL.Query().Get("period"); p != "" {
			pp := schedule.Period(p)
			period = &pp
		}

		availability, err := slots.ListAvailable(r.Context(), doctorID, date, period)
		if err != nil {
			handleSlotError(w, err)
			return
		}

		resp := AvailabilityResponse{
			DoctorAvailable:      availability.DoctorAvailable,
			UnavailabilityReason: availability.UnavailabilityReason,
			Slots:                make([]SlotResponse, 0, len(availability.Slots)),
		}
		for _, s := range availability.Slots {
			resp.Slots = append(resp.Slots, toSlotResponse(s))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func markUnavailableHandler(slots *slot.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		doctorID, ok := parseDoctorID(w, r)
		if !ok {
			return
		}

		var req MarkUnavailableRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		res, err := slots.MarkUnavailable(r.Context(), slot.MarkUnavailableParams{
			Actor:       p,
			DoctorID:    doctorID,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Reason:      req.Reason,
			Type:        schedule.UnavailabilityType(req.Type),
			IsRecurring: req.IsRecurring,
		})
		if err != nil {
			handleSlotError(w, err)
			return
		}

		u := res.Unavailability
		writeJSON(w, http.StatusCreated, MarkUnavailableResponse{
			ID:             u.ID,
			DoctorID:       u.DoctorID,
			StartDate:      u.StartDate.Format("2006-01-02"),
			EndDate:        u.EndDate.Format("2006-01-02"),
			Reason:         u.Reason,
			Type:           string(u.Type),
			IsRecurring:    u.IsRecurring,
			SlotsCancelled: res.SlotsCancelled,
		})
	}
}

func bulkUpdateSlotsHandler(slots *slot.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		doctorID, ok := parseDoctorID(w, r)
		if !ok {
			return
		}

		var req BulkUpdateSlotsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		ids := make([]uuid.UUID, 0, len(req.SlotIDs))
		for _, raw := range req.SlotIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_slot_id", "slot ids must be valid UUIDs")
				return
			}
			ids = append(ids, id)
		}

		res, err := slots.BulkUpdate(r.Context(), slot.BulkUpdateParams{
			Actor:     p,
			DoctorID:  doctorID,
			SlotIDs:   ids,
			NewStatus: slot.Status(req.NewStatus),
		})
		if err != nil {
			handleSlotError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BulkUpdateSlotsResponse{
			UpdatedCount:        res.UpdatedCount,
			RejectedBookedCount: res.RejectedBookedCount,
		})
	}
}

func bookAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}

		var req BookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}
		slotID, err := uuid.Parse(req.TimeSlotID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time_slot_id", "time_slot_id must be a valid UUID")
			return
		}

		appt, err := svc.Book(r.Context(), booking.BookRequest{
			Actor:    p,
			DoctorID: doctorID,
			SlotID:   slotID,
			Type:     slot.BookingType(req.AppointmentType),
			Notes:    req.Notes,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		id, ok := parseAppointmentID(w, r)
		if !ok {
			return
		}

		appt, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}
		if !p.IsAdmin() && p.UserID != appt.UserID && p.UserID != appt.DoctorID {
			writeError(w, http.StatusForbidden, "forbidden", "not your appointment")
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		id, ok := parseAppointmentID(w, r)
		if !ok {
			return
		}

		var req CancelRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		appt, err := svc.Cancel(r.Context(), id, p, req.Reason)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func setAppointmentStatusHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		id, ok := parseAppointmentID(w, r)
		if !ok {
			return
		}

		var req SetStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.SetStatus(r.Context(), id, p, booking.AppointmentStatus(req.Status))
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func listUserAppointmentsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}

		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id", "userID must be a valid UUID")
			return
		}
		if !p.IsAdmin() && p.UserID != userID {
			writeError(w, http.StatusForbidden, "forbidden", "not your appointments")
			return
		}

		limit, offset := parsePage(r)
		appts, err := svc.ListByUser(r.Context(), userID, limit, offset)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appointmentList(appts))
	}
}

func listDoctorAppointmentsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		doctorID, ok := parseDoctorID(w, r)
		if !ok {
			return
		}
		if !p.IsAdmin() && !(p.IsDoctor() && p.UserID == doctorID) {
			writeError(w, http.StatusForbidden, "forbidden", "not your appointments")
			return
		}

		limit, offset := parsePage(r)
		appts, err := svc.ListByDoctor(r.Context(), doctorID, limit, offset)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appointmentList(appts))
	}
}

func doctorStatsHandler(reports *report.PgReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		doctorID, ok := parseDoctorID(w, r)
		if !ok {
			return
		}
		if !p.IsAdmin() && !(p.IsDoctor() && p.UserID == doctorID) {
			writeError(w, http.StatusForbidden, "forbidden", "not your dashboard")
			return
		}

		stats, err := reports.DoctorStats(r.Context(), doctorID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, DoctorStatsResponse{
			TotalAppointments: stats.TotalAppointments,
			Confirmed:         stats.Confirmed,
			Cancelled:         stats.Cancelled,
			Completed:         stats.Completed,
			NoShow:            stats.NoShow,
			AvailableSlots:    stats.AvailableSlots,
			BookedSlots:       stats.BookedSlots,
		})
	}
}

func appointmentList(appts []booking.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	return out
}

func parseDoctorID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "doctorID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorID must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseAppointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parsePage(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

func handleSlotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directory.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, slot.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found", err.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, slot.ErrInvalidDate),
		errors.Is(err, slot.ErrInvalidRange),
		errors.Is(err, slot.ErrInvalidPeriod),
		errors.Is(err, slot.ErrInvalidAbsenceType),
		errors.Is(err, slot.ErrInvalidTargetStatus),
		errors.Is(err, slot.ErrNoSlotIDs):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", "storage timed out")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, slot.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found", err.Error())
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, directory.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, booking.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", "slot is no longer available, refresh availability and retry")
	case errors.Is(err, booking.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	case errors.Is(err, booking.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, "already_cancelled", err.Error())
	case errors.Is(err, booking.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, booking.ErrSlotDoctorMismatch):
		writeError(w, http.StatusBadRequest, "slot_doctor_mismatch", err.Error())
	case errors.Is(err, booking.ErrPastSlot):
		writeError(w, http.StatusBadRequest, "past_slot", err.Error())
	case errors.Is(err, booking.ErrInvalidBookingType):
		writeError(w, http.StatusBadRequest, "invalid_appointment_type", err.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", "booking timed out and was rolled back")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
