package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicore/booking/internal/auth"
	"github.com/clinicore/booking/internal/clock"
	"github.com/clinicore/booking/internal/directory"
	"github.com/clinicore/booking/internal/metrics"
	redisclient "github.com/clinicore/booking/internal/redis"
	"github.com/clinicore/booking/internal/slot"
)

// Notification carries everything the email side needs, so the sender
// never has to reach back into the stores.
type Notification struct {
	PatientName  string
	PatientEmail string
	DoctorName   string
	DoctorEmail  string
	Date         string
	StartTime    string
	Type         slot.BookingType
	Fee          float64
	Reason       string
}

// Notifier delivers best-effort messages after a commit. Failures are
// the implementation's problem to log; the booking stands regardless.
type Notifier interface {
	BookingConfirmed(ctx context.Context, n Notification)
	BookingCancelled(ctx context.Context, n Notification)
}

// Service implements the booking protocol: ordered precondition checks,
// a per-slot lock around a single claim+insert transaction, and
// post-commit notifications outside the lock.
type Service struct {
	repo     Repository
	slots    slot.Repository
	doctors  directory.DoctorDirectory
	users    directory.UserDirectory
	locker   redisclient.Locker
	notifier Notifier
	clk      clock.Clock
	metrics  *metrics.BookingMetrics
	log      zerolog.Logger
}

func NewService(repo Repository, slots slot.Repository, doctors directory.DoctorDirectory, users directory.UserDirectory, locker redisclient.Locker, notifier Notifier, clk clock.Clock, m *metrics.BookingMetrics, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		slots:    slots,
		doctors:  doctors,
		users:    users,
		locker:   locker,
		notifier: notifier,
		clk:      clk,
		metrics:  m,
		log:      log,
	}
}

type BookRequest struct {
	Actor    auth.Principal
	DoctorID uuid.UUID
	SlotID   uuid.UUID
	Type     slot.BookingType
	Notes    string
}

// Book claims the slot for the acting patient and creates the
// appointment. Preconditions run in a fixed order so each failure mode
// surfaces as its own error; the transaction re-asserts availability,
// so a stale pre-check can only ever downgrade to ErrSlotUnavailable.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	start := time.Now()
	appt, err := s.book(ctx, req)
	s.metrics.ObserveBooking(bookingOutcome(err), time.Since(start).Seconds())
	return appt, err
}

func (s *Service) book(ctx context.Context, req BookRequest) (*Appointment, error) {
	sl, err := s.slots.GetByID(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if sl.Status != slot.StatusAvailable {
		return nil, ErrSlotUnavailable
	}
	if sl.DoctorID != req.DoctorID {
		return nil, ErrSlotDoctorMismatch
	}

	doctor, err := s.doctors.GetDoctor(ctx, sl.DoctorID)
	if err != nil {
		return nil, err
	}
	loc := doctor.Location()

	startAt, err := sl.StartAt(loc)
	if err != nil {
		return nil, fmt.Errorf("slot start time: %w", err)
	}
	if startAt.Before(s.clk.Now().In(loc)) {
		return nil, ErrPastSlot
	}

	if !slot.ValidBookingType(req.Type) {
		return nil, ErrInvalidBookingType
	}

	var created *Appointment
	err = s.locker.WithSlotLock(ctx, req.SlotID, func(lockCtx context.Context) error {
		appt, err := s.repo.BookSlot(lockCtx, BookParams{
			SlotID:   req.SlotID,
			UserID:   req.Actor.UserID,
			DoctorID: sl.DoctorID,
			Type:     req.Type,
			Fee:      doctor.ConsultationFee,
			Notes:    req.Notes,
		})
		if err != nil {
			return err
		}
		created = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", created.ID.String()).
		Str("slot_id", req.SlotID.String()).
		Str("doctor_id", sl.DoctorID.String()).
		Str("user_id", req.Actor.UserID.String()).
		Str("type", string(req.Type)).
		Msg("appointment booked")

	// Post-commit, outside the slot lock. Never unwinds the booking.
	s.notify(ctx, created, sl, doctor, "", true)

	return created, nil
}

// Cancel releases the slot along with cancelling the appointment. The
// owning patient, the owning doctor, and admins may cancel.
func (s *Service) Cancel(ctx context.Context, appointmentID uuid.UUID, actor auth.Principal, reason string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	var by CancelledBy
	switch {
	case actor.IsAdmin():
		by = CancelledBySystem
	case actor.IsDoctor() && actor.UserID == appt.DoctorID:
		by = CancelledByDoctor
	case actor.UserID == appt.UserID:
		by = CancelledByUser
	default:
		return nil, auth.ErrUnauthorized
	}

	if appt.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	cancelled, err := s.repo.CancelAppointment(ctx, CancelParams{
		AppointmentID: appointmentID,
		CancelledBy:   by,
		Reason:        reason,
		At:            s.clk.Now(),
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCancellation(string(by))

	s.log.Info().
		Str("appointment_id", appointmentID.String()).
		Str("cancelled_by", string(by)).
		Msg("appointment cancelled")

	sl, err := s.slots.GetByID(ctx, cancelled.TimeSlotID)
	if err == nil {
		if doctor, derr := s.doctors.GetDoctor(ctx, cancelled.DoctorID); derr == nil {
			s.notifyCancelled(ctx, cancelled, sl, doctor, reason)
		}
	}

	return cancelled, nil
}

// SetStatus moves a confirmed appointment to completed or no_show.
// Only the owning doctor or an admin may do this, and a cancelled
// appointment is off limits.
func (s *Service) SetStatus(ctx context.Context, appointmentID uuid.UUID, actor auth.Principal, newStatus AppointmentStatus) (*Appointment, error) {
	if newStatus != StatusCompleted && newStatus != StatusNoShow {
		return nil, ErrInvalidTransition
	}

	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && !(actor.IsDoctor() && actor.UserID == appt.DoctorID) {
		return nil, auth.ErrUnauthorized
	}
	if appt.Status == StatusCancelled {
		return nil, ErrInvalidTransition
	}

	var completedAt *time.Time
	if newStatus == StatusCompleted {
		now := s.clk.Now()
		completedAt = &now
	}

	return s.repo.UpdateStatus(ctx, appointmentID, StatusConfirmed, newStatus, completedAt)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointmentByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Service) notify(ctx context.Context, appt *Appointment, sl *slot.Slot, doctor *directory.Doctor, reason string, confirmed bool) {
	if s.notifier == nil {
		return
	}

	user, err := s.users.GetUser(ctx, appt.UserID)
	if err != nil {
		s.log.Warn().Err(err).
			Str("appointment_id", appt.ID.String()).
			Msg("skipping notification, user lookup failed")
		return
	}

	n := Notification{
		PatientName:  user.Name,
		PatientEmail: user.Email,
		DoctorName:   doctor.Name,
		DoctorEmail:  doctor.Email,
		Date:         sl.Date.Format("2006-01-02"),
		StartTime:    sl.StartTime,
		Type:         appt.Type,
		Fee:          appt.ConsultationFee,
		Reason:       reason,
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if confirmed {
		s.notifier.BookingConfirmed(notifyCtx, n)
	} else {
		s.notifier.BookingCancelled(notifyCtx, n)
	}
}

func (s *Service) notifyCancelled(ctx context.Context, appt *Appointment, sl *slot.Slot, doctor *directory.Doctor, reason string) {
	s.notify(ctx, appt, sl, doctor, reason, false)
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return "booked"
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrSlotBeingBooked):
		return "conflict"
	case errors.Is(err, ErrPastSlot):
		return "past_slot"
	case errors.Is(err, slot.ErrSlotNotFound):
		return "not_found"
	default:
		return "error"
	}
}
