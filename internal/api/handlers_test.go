package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/booking/internal/auth"
	"github.com/clinicore/booking/internal/booking"
	"github.com/clinicore/booking/internal/clock"
	"github.com/clinicore/booking/internal/directory"
	"github.com/clinicore/booking/internal/schedule"
	"github.com/clinicore/booking/internal/slot"
)

// memBackend is an in-memory stand-in for Postgres so the handlers can
// be exercised through the real router and services.
type memBackend struct {
	mu           sync.Mutex
	slots        map[uuid.UUID]*slot.Slot
	appointments map[uuid.UUID]*booking.Appointment
	week         schedule.WeekTemplate
	absences     []schedule.Unavailability
	doctors      map[uuid.UUID]*directory.Doctor
	users        map[uuid.UUID]*directory.User
}

func newMemBackend() *memBackend {
	return &memBackend{
		slots:        make(map[uuid.UUID]*slot.Slot),
		appointments: make(map[uuid.UUID]*booking.Appointment),
		doctors:      make(map[uuid.UUID]*directory.Doctor),
		users:        make(map[uuid.UUID]*directory.User),
	}
}

// slot.Repository

func (m *memBackend) InsertMany(_ context.Context, slots []slot.Slot) (slot.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res slot.InsertResult
	for _, s := range slots {
		dup := false
		for _, have := range m.slots {
			if have.DoctorID == s.DoctorID && have.Date.Equal(s.Date) && have.StartTime == s.StartTime {
				dup = true
				break
			}
		}
		if dup {
			res.Duplicates++
			continue
		}
		cp := s
		cp.ID = uuid.New()
		m.slots[cp.ID] = &cp
		res.Inserted++
	}
	return res, nil
}

func (m *memBackend) GetByID(_ context.Context, id uuid.UUID) (*slot.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, slot.ErrSlotNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memBackend) ListAvailable(_ context.Context, doctorID uuid.UUID, date time.Time, period *schedule.Period) ([]slot.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []slot.Slot
	for _, s := range m.slots {
		if s.DoctorID != doctorID || !s.Date.Equal(date) || s.Status != slot.StatusAvailable {
			continue
		}
		if period != nil && s.Period != *period {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *memBackend) CancelAvailableInRange(_ context.Context, doctorID uuid.UUID, from, to time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.slots {
		if s.DoctorID == doctorID && s.Status == slot.StatusAvailable &&
			!s.Date.Before(from) && !s.Date.After(to) {
			s.Status = slot.StatusCancelled
			n++
		}
	}
	return n, nil
}

func (m *memBackend) UpdateStatusBulk(_ context.Context, doctorID uuid.UUID, ids []uuid.UUID, from, to slot.Status) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if s, ok := m.slots[id]; ok && s.DoctorID == doctorID && s.Status == from {
			s.Status = to
			n++
		}
	}
	return n, nil
}

func (m *memBackend) CountWithStatus(_ context.Context, doctorID uuid.UUID, ids []uuid.UUID, status slot.Status) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if s, ok := m.slots[id]; ok && s.DoctorID == doctorID && s.Status == status {
			n++
		}
	}
	return n, nil
}

// schedule.Repository

func (m *memBackend) WeekTemplate(context.Context, uuid.UUID) (schedule.WeekTemplate, error) {
	return m.week, nil
}

func (m *memBackend) DayTemplate(_ context.Context, _ uuid.UUID, dow int) (*schedule.Schedule, error) {
	if m.week[dow] == nil {
		return nil, schedule.ErrScheduleNotFound
	}
	return m.week[dow], nil
}

func (m *memBackend) ListUnavailability(context.Context, uuid.UUID) ([]schedule.Unavailability, error) {
	return m.absences, nil
}

func (m *memBackend) CreateUnavailability(_ context.Context, u schedule.Unavailability) (*schedule.Unavailability, error) {
	u.ID = uuid.New()
	m.absences = append(m.absences, u)
	return &u, nil
}

// directory interfaces

func (m *memBackend) GetDoctor(_ context.Context, id uuid.UUID) (*directory.Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, directory.ErrDoctorNotFound
	}
	return d, nil
}

func (m *memBackend) ListDoctorIDs(context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id := range m.doctors {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memBackend) GetUser(_ context.Context, id uuid.UUID) (*directory.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, directory.ErrUserNotFound
	}
	return u, nil
}

// booking.Repository

func (m *memBackend) GetAppointmentByID(_ context.Context, id uuid.UUID) (*booking.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, booking.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memBackend) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]booking.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []booking.Appointment
	for _, a := range m.appointments {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memBackend) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]booking.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []booking.Appointment
	for _, a := range m.appointments {
		if a.DoctorID == doctorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memBackend) BookSlot(_ context.Context, p booking.BookParams) (*booking.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[p.SlotID]
	if !ok {
		return nil, slot.ErrSlotNotFound
	}
	if s.Status != slot.StatusAvailable {
		return nil, booking.ErrSlotUnavailable
	}

	appt := &booking.Appointment{
		ID:              uuid.New(),
		UserID:          p.UserID,
		DoctorID:        p.DoctorID,
		TimeSlotID:      p.SlotID,
		Type:            p.Type,
		Status:          booking.StatusConfirmed,
		ConsultationFee: p.Fee,
		Notes:           p.Notes,
		PaymentStatus:   booking.PaymentPending,
		CreatedAt:       time.Now(),
	}
	s.Status = slot.StatusBooked
	s.BookingType = &p.Type
	s.AppointmentID = &appt.ID
	m.appointments[appt.ID] = appt

	cp := *appt
	return &cp, nil
}

func (m *memBackend) CancelAppointment(_ context.Context, p booking.CancelParams) (*booking.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[p.AppointmentID]
	if !ok {
		return nil, booking.ErrAppointmentNotFound
	}
	if a.Status == booking.StatusCancelled {
		return nil, booking.ErrAlreadyCancelled
	}
	a.Status = booking.StatusCancelled
	at, by, reason := p.At, p.CancelledBy, p.Reason
	a.CancelledAt, a.CancelledBy, a.CancellationReason = &at, &by, &reason

	if s, ok := m.slots[a.TimeSlotID]; ok {
		s.Status = slot.StatusAvailable
		s.BookingType = nil
		s.AppointmentID = nil
	}
	cp := *a
	return &cp, nil
}

func (m *memBackend) UpdateStatus(_ context.Context, id uuid.UUID, from, to booking.AppointmentStatus, completedAt *time.Time) (*booking.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok {
		return nil, booking.ErrAppointmentNotFound
	}
	if a.Status != from {
		return nil, booking.ErrInvalidTransition
	}
	a.Status = to
	if completedAt != nil {
		a.CompletedAt = completedAt
	}
	cp := *a
	return &cp, nil
}

type passLocker struct{}

func (passLocker) WithSlotLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type apiFixture struct {
	backend *memBackend
	router  http.Handler
	doctor  *directory.Doctor
	user    *directory.User
	slot    *slot.Slot
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	backend := newMemBackend()

	doctor := &directory.Doctor{
		ID:              uuid.New(),
		Name:            "Mehta",
		Email:           "mehta@clinic.test",
		ConsultationFee: 75,
		Timezone:        "UTC",
	}
	user := &directory.User{ID: uuid.New(), Name: "Asha", Email: "asha@example.test"}
	backend.doctors[doctor.ID] = doctor
	backend.users[user.ID] = user

	// Monday 2026-09-07 09:00-11:00, mornings only.
	backend.week[int(time.Monday)] = &schedule.Schedule{
		DoctorID:    doctor.ID,
		DayOfWeek:   int(time.Monday),
		IsAvailable: true,
		StartTime:   "09:00",
		EndTime:     "11:00",
		Periods:     []schedule.Period{schedule.PeriodMorning},
	}

	sl := &slot.Slot{
		ID:        uuid.New(),
		DoctorID:  doctor.ID,
		Date:      time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		EndTime:   "10:30",
		Period:    schedule.PeriodMorning,
		Status:    slot.StatusAvailable,
	}
	backend.slots[sl.ID] = sl

	clk := clock.Fixed(time.Date(2026, time.September, 7, 8, 0, 0, 0, time.UTC))

	slots := slot.NewService(backend, backend, backend, clk, nil, zerolog.Nop())
	bookings := booking.NewService(backend, backend, backend, backend, passLocker{}, nil, clk, nil, zerolog.Nop())

	router := NewRouter(RouterConfig{
		Slots:    slots,
		Bookings: bookings,
		Env:      "test",
		Version:  "test",
		Logger:   zerolog.Nop(),
	})

	return &apiFixture{backend: backend, router: router, doctor: doctor, user: user, slot: sl}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, as *auth.Principal) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("X-User-ID", as.UserID.String())
		req.Header.Set("X-User-Role", string(as.Role))
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) asPatient() *auth.Principal {
	return &auth.Principal{UserID: f.user.ID, Role: auth.RolePatient}
}

func (f *apiFixture) asDoctor() *auth.Principal {
	return &auth.Principal{UserID: f.doctor.ID, Role: auth.RoleDoctor}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestBookAppointmentEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	body := BookRequest{
		DoctorID:        f.doctor.ID.String(),
		TimeSlotID:      f.slot.ID.String(),
		AppointmentType: "video_call",
		Notes:           "first visit",
	}

	rec := f.do(t, http.MethodPost, "/appointments", body, f.asPatient())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	appt := decode[AppointmentResponse](t, rec)
	assert.Equal(t, "confirmed", appt.Status)
	assert.Equal(t, f.user.ID, appt.UserID)
	assert.Equal(t, 75.0, appt.ConsultationFee)
	assert.Equal(t, "video_call", appt.AppointmentType)

	// The same slot immediately 409s.
	rec = f.do(t, http.MethodPost, "/appointments", body, f.asPatient())
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "slot_unavailable", decode[ErrorResponse](t, rec).Error)
}

func TestBookAppointmentEndpoint_Failures(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("unauthenticated", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/appointments", BookRequest{}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown slot", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/appointments", BookRequest{
			DoctorID:        f.doctor.ID.String(),
			TimeSlotID:      uuid.NewString(),
			AppointmentType: "video_call",
		}, f.asPatient())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("doctor mismatch", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/appointments", BookRequest{
			DoctorID:        uuid.NewString(),
			TimeSlotID:      f.slot.ID.String(),
			AppointmentType: "video_call",
		}, f.asPatient())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "slot_doctor_mismatch", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("invalid type", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/appointments", BookRequest{
			DoctorID:        f.doctor.ID.String(),
			TimeSlotID:      f.slot.ID.String(),
			AppointmentType: "house_call",
		}, f.asPatient())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_appointment_type", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("bad uuid", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/appointments", BookRequest{
			DoctorID:        "not-a-uuid",
			TimeSlotID:      f.slot.ID.String(),
			AppointmentType: "video_call",
		}, f.asPatient())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCancelAppointmentEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/appointments", BookRequest{
		DoctorID:        f.doctor.ID.String(),
		TimeSlotID:      f.slot.ID.String(),
		AppointmentType: "clinic_visit",
	}, f.asPatient())
	require.Equal(t, http.StatusCreated, rec.Code)
	appt := decode[AppointmentResponse](t, rec)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/appointments/%s/cancel", appt.ID), CancelRequest{Reason: "conflict"}, f.asPatient())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[AppointmentResponse](t, rec)
	assert.Equal(t, "cancelled", got.Status)
	require.NotNil(t, got.CancelledBy)
	assert.Equal(t, "user", *got.CancelledBy)

	// Cancelling again conflicts.
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/appointments/%s/cancel", appt.ID), CancelRequest{}, f.asPatient())
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The slot is bookable again.
	rec = f.do(t, http.MethodPost, "/appointments", BookRequest{
		DoctorID:        f.doctor.ID.String(),
		TimeSlotID:      f.slot.ID.String(),
		AppointmentType: "video_call",
	}, f.asPatient())
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSetAppointmentStatusEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/appointments", BookRequest{
		DoctorID:        f.doctor.ID.String(),
		TimeSlotID:      f.slot.ID.String(),
		AppointmentType: "video_call",
	}, f.asPatient())
	require.Equal(t, http.StatusCreated, rec.Code)
	appt := decode[AppointmentResponse](t, rec)

	// Patients may not complete appointments.
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/appointments/%s/status", appt.ID), SetStatusRequest{Status: "completed"}, f.asPatient())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/appointments/%s/status", appt.ID), SetStatusRequest{Status: "completed"}, f.asDoctor())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[AppointmentResponse](t, rec)
	assert.Equal(t, "completed", got.Status)
	assert.NotNil(t, got.CompletedAt)

	// Only terminal states are accepted.
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/appointments/%s/status", appt.ID), SetStatusRequest{Status: "confirmed"}, f.asDoctor())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGenerateSlotsEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	body := GenerateSlotsRequest{StartDate: "2026-09-14", EndDate: "2026-09-20"}

	// Patients may not generate.
	rec := f.do(t, http.MethodPost, fmt.Sprintf("/doctors/%s/slots/generate", f.doctor.ID), body, f.asPatient())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/doctors/%s/slots/generate", f.doctor.ID), body, f.asDoctor())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[GenerateSlotsResponse](t, rec)
	assert.Equal(t, 4, res.SlotsGenerated) // one Monday, 09:00-11:00
	assert.Zero(t, res.Duplicates)

	// Idempotent re-run only reports duplicates.
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/doctors/%s/slots/generate", f.doctor.ID), body, f.asDoctor())
	require.Equal(t, http.StatusCreated, rec.Code)
	res = decode[GenerateSlotsResponse](t, rec)
	assert.Zero(t, res.SlotsGenerated)
	assert.Equal(t, 4, res.Duplicates)

	// Invalid range is a 400.
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/doctors/%s/slots/generate", f.doctor.ID),
		GenerateSlotsRequest{StartDate: "2026-09-20", EndDate: "2026-09-14"}, f.asDoctor())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAvailableSlotsEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/doctors/%s/slots?date=2026-09-07", f.doctor.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[AvailabilityResponse](t, rec)
	assert.True(t, res.DoctorAvailable)
	require.Len(t, res.Slots, 1)
	assert.Equal(t, "10:00", res.Slots[0].StartTime)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/doctors/%s/slots", f.doctor.ID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/doctors/%s/slots?date=2026-09-07&period=midday", f.doctor.ID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkUnavailableEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/doctors/%s/unavailability", f.doctor.ID), MarkUnavailableRequest{
		StartDate: "2026-09-07",
		EndDate:   "2026-09-08",
		Reason:    "conference",
		Type:      "personal_leave",
	}, f.asDoctor())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	res := decode[MarkUnavailableResponse](t, rec)
	assert.Equal(t, int64(1), res.SlotsCancelled)

	// Availability now reports the absence instead of slots.
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/doctors/%s/slots?date=2026-09-07", f.doctor.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	avail := decode[AvailabilityResponse](t, rec)
	assert.False(t, avail.DoctorAvailable)
	assert.Equal(t, "conference", avail.UnavailabilityReason)
	assert.Empty(t, avail.Slots)
}

func TestListUserAppointmentsEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/appointments", BookRequest{
		DoctorID:        f.doctor.ID.String(),
		TimeSlotID:      f.slot.ID.String(),
		AppointmentType: "video_call",
	}, f.asPatient())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/users/%s/appointments", f.user.ID), nil, f.asPatient())
	require.Equal(t, http.StatusOK, rec.Code)
	appts := decode[[]AppointmentResponse](t, rec)
	assert.Len(t, appts, 1)

	// Another patient's listing is forbidden.
	other := &auth.Principal{UserID: uuid.New(), Role: auth.RolePatient}
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/users/%s/appointments", f.user.ID), nil, other)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetAppointmentEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/appointments", BookRequest{
		DoctorID:        f.doctor.ID.String(),
		TimeSlotID:      f.slot.ID.String(),
		AppointmentType: "voice_call",
	}, f.asPatient())
	require.Equal(t, http.StatusCreated, rec.Code)
	appt := decode[AppointmentResponse](t, rec)

	rec = f.do(t, http.MethodGet, "/appointments/"+appt.ID.String(), nil, f.asPatient())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/appointments/"+appt.ID.String(), nil, f.asDoctor())
	assert.Equal(t, http.StatusOK, rec.Code)

	stranger := &auth.Principal{UserID: uuid.New(), Role: auth.RolePatient}
	rec = f.do(t, http.MethodGet, "/appointments/"+appt.ID.String(), nil, stranger)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/appointments/"+uuid.NewString(), nil, f.asPatient())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkUpdateSlotsEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/doctors/%s/slots/bulk-status", f.doctor.ID), BulkUpdateSlotsRequest{
		SlotIDs:   []string{f.slot.ID.String()},
		NewStatus: "cancelled",
	}, f.asDoctor())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[BulkUpdateSlotsResponse](t, rec)
	assert.Equal(t, int64(1), res.UpdatedCount)
	assert.Zero(t, res.RejectedBookedCount)

	// Booked is not a valid target.
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/doctors/%s/slots/bulk-status", f.doctor.ID), BulkUpdateSlotsRequest{
		SlotIDs:   []string{f.slot.ID.String()},
		NewStatus: "booked",
	}, f.asDoctor())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	assert.Equal(t, "req-42", rr.Header().Get("X-Request-ID"))
}
