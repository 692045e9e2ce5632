package slot

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/booking/internal/schedule"
)

// GenerateInput carries everything Expand needs, pre-loaded, so the
// expansion itself stays a pure function over its arguments.
type GenerateInput struct {
	DoctorID uuid.UUID
	From     time.Time // inclusive, doctor-local midnight
	To       time.Time // inclusive
	Week     schedule.WeekTemplate
	Absences []schedule.Unavailability
	Location *time.Location
}

// Expand walks every calendar day in [From, To] and emits the candidate
// available slots the doctor's weekly template produces for that day:
// 30-minute steps over [start, end), minus the break window, minus any
// step whose time-of-day period the template does not offer, and nothing
// at all on days covered by an absence. The result carries no IDs; the
// store assigns them on insert.
func Expand(in GenerateInput) ([]Slot, error) {
	if in.To.Before(in.From) {
		return nil, fmt.Errorf("invalid range: %s after %s", in.From.Format("2006-01-02"), in.To.Format("2006-01-02"))
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	var out []Slot
	for day := in.From; !day.After(in.To); day = day.AddDate(0, 0, 1) {
		if schedule.FirstCovering(in.Absences, day) != nil {
			continue
		}

		tmpl := in.Week[int(day.Weekday())]
		if tmpl == nil || !tmpl.IsAvailable || tmpl.StartTime == "" || tmpl.EndTime == "" {
			continue
		}

		daySlots, err := expandDay(in.DoctorID, day, loc, tmpl)
		if err != nil {
			return nil, err
		}
		out = append(out, daySlots...)
	}

	return out, nil
}

func expandDay(doctorID uuid.UUID, day time.Time, loc *time.Location, tmpl *schedule.Schedule) ([]Slot, error) {
	start, err := schedule.ParseHHMM(tmpl.StartTime)
	if err != nil {
		return nil, fmt.Errorf("schedule start for day %d: %w", tmpl.DayOfWeek, err)
	}
	end, err := schedule.ParseHHMM(tmpl.EndTime)
	if err != nil {
		return nil, fmt.Errorf("schedule end for day %d: %w", tmpl.DayOfWeek, err)
	}
	if start >= end {
		return nil, fmt.Errorf("schedule for day %d: start %s not before end %s", tmpl.DayOfWeek, tmpl.StartTime, tmpl.EndTime)
	}

	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)

	var out []Slot
	for t := start; t < end; t += schedule.MinutesPerSlot {
		period := schedule.PeriodForMinute(t)
		if !tmpl.HasPeriod(period) {
			continue
		}
		if tmpl.InBreak(t) {
			continue
		}

		out = append(out, Slot{
			DoctorID:  doctorID,
			Date:      date,
			StartTime: schedule.FormatHHMM(t),
			EndTime:   schedule.FormatHHMM(t + schedule.MinutesPerSlot),
			Period:    period,
			Status:    StatusAvailable,
		})
	}

	return out, nil
}
