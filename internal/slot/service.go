package slot

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
	"github.com/clinicore/booking/internal/schedule"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate         = errors.New("invalid date, want YYYY-MM-DD")
	ErrInvalidRange        = errors.New("start date is after end date")
	ErrInvalidPeriod       = errors.New("unknown period")
	ErrInvalidAbsenceType  = errors.New("unknown unavailability type")
	ErrInvalidTargetStatus = errors.New("bulk update may only target available or cancelled")
	ErrNoSlotIDs           = errors.New("no slot ids given")
)

// Service owns slot generation, availability listing, and the
// administrative slot paths. The booking claim lives in the booking
// service.
type Service struct {
	slots     Repository
	schedules schedule.Repository
	doctors   directory.DoctorDirectory
	clk       clock.Clock
	metrics   *metrics.BookingMetrics
	log       zerolog.Logger
}

func NewService(slots Repository, schedules schedule.Repository, doctors directory.DoctorDirectory, clk clock.Clock, m *metrics.BookingMetrics, log zerolog.Logger) *Service {
	return &Service{
		slots:     slots,
		schedules: schedules,
		doctors:   doctors,
		clk:       clk,
		metrics:   m,
		log:       log,
	}
}

type GenerateResult struct {
	SlotsGenerated int
	Duplicates     int
}

// GenerateSlots expands the doctor's weekly template over the inclusive
// date range and stores the candidates. Re-running over the same range
// is harmless: already-present tuples count as duplicates, not errors.
func (s *Service) GenerateSlots(ctx context.Context, doctorID uuid.UUID, startDate, endDate string) (GenerateResult, error) {
	var res GenerateResult

	doctor, err := s.doctors.GetDoctor(ctx, doctorID)
	if err != nil {
		return res, err
	}
	loc := doctor.Location()

	from, err := parseLocalDate(startDate, loc)
	if err != nil {
		return res, err
	}
	to, err := parseLocalDate(endDate, loc)
	if err != nil {
		return res, err
	}
	if to.Before(from) {
		return res, ErrInvalidRange
	}

	week, err := s.schedules.WeekTemplate(ctx, doctorID)
	if err != nil {
		return res, fmt.Errorf("load week template: %w", err)
	}
	absences, err := s.schedules.ListUnavailability(ctx, doctorID)
	if err != nil {
		return res, fmt.Errorf("load unavailability: %w", err)
	}

	candidates, err := Expand(GenerateInput{
		DoctorID: doctorID,
		From:     from,
		To:       to,
		Week:     week,
		Absences: absences,
		Location: loc,
	})
	if err != nil {
		return res, fmt.Errorf("expand schedule: %w", err)
	}

	inserted, err := s.slots.InsertMany(ctx, candidates)
	res.SlotsGenerated = inserted.Inserted
	res.Duplicates = inserted.Duplicates
	s.metrics.AddSlotsGenerated(inserted.Inserted)
	if err != nil {
		return res, err
	}

	s.log.Info().
		Str("doctor_id", doctorID.String()).
		Str("from", startDate).
		Str("to", endDate).
		Int("generated", res.SlotsGenerated).
		Int("duplicates", res.Duplicates).
		Msg("slots generated")

	return res, nil
}

// Availability is the read contract of listAvailableSlots. When the
// doctor has a covering absence the slot list is empty and the reason
// is carried alongside.
type Availability struct {
	Slots                []Slot
	DoctorAvailable      bool
	UnavailabilityReason string
}

func (s *Service) ListAvailable(ctx context.Context, doctorID uuid.UUID, date string, period *schedule.Period) (*Availability, error) {
	doctor, err := s.doctors.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	loc := doctor.Location()

	day, err := parseLocalDate(date, loc)
	if err != nil {
		return nil, err
	}
	if period != nil && !schedule.ValidPeriod(*period) {
		return nil, ErrInvalidPeriod
	}

	absences, err := s.schedules.ListUnavailability(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load unavailability: %w", err)
	}
	if cov := schedule.FirstCovering(absences, day); cov != nil {
		return &Availability{
			DoctorAvailable:      false,
			UnavailabilityReason: cov.Reason,
		}, nil
	}

	slots, err := s.slots.ListAvailable(ctx, doctorID, day, period)
	if err != nil {
		return nil, err
	}

	// Hide slots that have already started when listing today.
	now := s.clk.Now().In(loc)
	if clock.LocalDate(now, loc).Equal(day) {
		nowMin := now.Hour()*60 + now.Minute()
		kept := slots[:0]
		for _, sl := range slots {
			min, err := schedule.ParseHHMM(sl.StartTime)
			if err != nil || min <= nowMin {
				continue
			}
			kept = append(kept, sl)
		}
		slots = kept
	}

	return &Availability{Slots: slots, DoctorAvailable: true}, nil
}

type MarkUnavailableParams struct {
	Actor       auth.Principal
	DoctorID    uuid.UUID
	StartDate   string
	EndDate     string
	Reason      string
	Type        schedule.UnavailabilityType
	IsRecurring bool
}

type MarkUnavailableResult struct {
	Unavailability *schedule.Unavailability
	SlotsCancelled int64
}

// MarkUnavailable records the absence, then sweeps every available slot
// in the range to cancelled. The sweep is deliberately outside any
// transaction with the insert: it only touches available slots, so a
// concurrent booking either wins the slot first or loses it to the
// sweep, never both.
func (s *Service) MarkUnavailable(ctx context.Context, p MarkUnavailableParams) (*MarkUnavailableResult, error) {
	if err := requireDoctorOrAdmin(p.Actor, p.DoctorID); err != nil {
		return nil, err
	}
	if !schedule.ValidUnavailabilityType(p.Type) {
		return nil, ErrInvalidAbsenceType
	}

	doctor, err := s.doctors.GetDoctor(ctx, p.DoctorID)
	if err != nil {
		return nil, err
	}
	loc := doctor.Location()

	from, err := parseLocalDate(p.StartDate, loc)
	if err != nil {
		return nil, err
	}
	to, err := parseLocalDate(p.EndDate, loc)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	created, err := s.schedules.CreateUnavailability(ctx, schedule.Unavailability{
		DoctorID:    p.DoctorID,
		StartDate:   from,
		EndDate:     to,
		Reason:      p.Reason,
		Type:        p.Type,
		IsRecurring: p.IsRecurring,
	})
	if err != nil {
		return nil, fmt.Errorf("create unavailability: %w", err)
	}

	swept, err := s.slots.CancelAvailableInRange(ctx, p.DoctorID, from, to)
	if err != nil {
		// The absence itself is recorded; a failed sweep leaves stale
		// available slots that the next sweep or generation pass will
		// not resurrect. Surface it in logs, not to the caller.
		s.log.Error().Err(err).
			Str("doctor_id", p.DoctorID.String()).
			Msg("unavailability sweep failed")
		swept = 0
	}
	s.metrics.AddSlotsSwept(swept)

	s.log.Info().
		Str("doctor_id", p.DoctorID.String()).
		Str("from", p.StartDate).
		Str("to", p.EndDate).
		Bool("recurring", p.IsRecurring).
		Int64("slots_cancelled", swept).
		Msg("doctor marked unavailable")

	return &MarkUnavailableResult{Unavailability: created, SlotsCancelled: swept}, nil
}

type BulkUpdateParams struct {
	Actor     auth.Principal
	DoctorID  uuid.UUID
	SlotIDs   []uuid.UUID
	NewStatus Status
}

type BulkUpdateResult struct {
	UpdatedCount        int64
	RejectedBookedCount int64
}

// BulkUpdate flips available slots to cancelled or cancelled slots back
// to available. Booked slots are never altered here; they are counted
// and reported as rejected. A booked slot only frees up through
// appointment cancellation.
func (s *Service) BulkUpdate(ctx context.Context, p BulkUpdateParams) (BulkUpdateResult, error) {
	var res BulkUpdateResult

	if err := requireDoctorOrAdmin(p.Actor, p.DoctorID); err != nil {
		return res, err
	}
	if len(p.SlotIDs) == 0 {
		return res, ErrNoSlotIDs
	}

	var from Status
	switch p.NewStatus {
	case StatusCancelled:
		from = StatusAvailable
	case StatusAvailable:
		from = StatusCancelled
	default:
		return res, ErrInvalidTargetStatus
	}

	rejected, err := s.slots.CountWithStatus(ctx, p.DoctorID, p.SlotIDs, StatusBooked)
	if err != nil {
		return res, err
	}

	updated, err := s.slots.UpdateStatusBulk(ctx, p.DoctorID, p.SlotIDs, from, p.NewStatus)
	if err != nil {
		return res, err
	}

	res.UpdatedCount = updated
	res.RejectedBookedCount = rejected
	return res, nil
}

func requireDoctorOrAdmin(actor auth.Principal, doctorID uuid.UUID) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.IsDoctor() && actor.UserID == doctorID {
		return nil
	}
	return auth.ErrUnauthorized
}

func parseLocalDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
