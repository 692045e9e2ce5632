package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Period is the coarse time-of-day bucket a slot belongs to.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
	PeriodNight     Period = "night"
)

// ValidPeriod reports whether p is one of the four known buckets.
func ValidPeriod(p Period) bool {
	switch p {
	case PeriodMorning, PeriodAfternoon, PeriodEvening, PeriodNight:
		return true
	}
	return false
}

type UnavailabilityType string

const (
	UnavailabilityHoliday       UnavailabilityType = "holiday"
	UnavailabilitySickLeave     UnavailabilityType = "sick_leave"
	UnavailabilityPersonalLeave UnavailabilityType = "personal_leave"
	UnavailabilityEmergency     UnavailabilityType = "emergency"
	UnavailabilityOther         UnavailabilityType = "other"
)

func ValidUnavailabilityType(t UnavailabilityType) bool {
	switch t {
	case UnavailabilityHoliday, UnavailabilitySickLeave, UnavailabilityPersonalLeave,
		UnavailabilityEmergency, UnavailabilityOther:
		return true
	}
	return false
}

// Schedule is one doctor's working template for a single day of week.
// DayOfWeek follows time.Weekday numbering: 0=Sunday through 6=Saturday.
type Schedule struct {
	ID          uuid.UUID
	DoctorID    uuid.UUID
	DayOfWeek   int
	IsAvailable bool
	Periods     []Period
	StartTime   string // "HH:MM", doctor-local
	EndTime     string
	BreakStart  *string
	BreakEnd    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPeriod reports whether the template offers p on this day.
func (s *Schedule) HasPeriod(p Period) bool {
	for _, have := range s.Periods {
		if have == p {
			return true
		}
	}
	return false
}

// WeekTemplate indexes a doctor's schedules by day of week. Missing days
// stay nil, which generation treats the same as is_available=false.
type WeekTemplate [7]*Schedule

// Unavailability is a declared absence window. Non-recurring rows cover
// the inclusive [StartDate, EndDate] calendar range. Recurring rows
// repeat the same month/day span every year.
type Unavailability struct {
	ID          uuid.UUID
	DoctorID    uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	Reason      string
	Type        UnavailabilityType
	IsRecurring bool
	CreatedAt   time.Time
}

// Covers reports whether the absence applies to calendar day d.
// Only the calendar date of d is considered, never its clock time.
func (u Unavailability) Covers(d time.Time) bool {
	if u.IsRecurring {
		return coversRecurring(u.StartDate, u.EndDate, d)
	}
	day := ymd(d)
	return day >= ymd(u.StartDate) && day <= ymd(u.EndDate)
}

// coversRecurring matches the (month, day) of d against the recurring
// span's (month, day) range, wrapping across year end so a recurring
// Dec 30 – Jan 2 blocks both tails every year.
func coversRecurring(start, end, d time.Time) bool {
	from, to, day := md(start), md(end), md(d)
	if from <= to {
		return day >= from && day <= to
	}
	return day >= from || day <= to
}

func ymd(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func md(t time.Time) int {
	return int(t.Month())*100 + t.Day()
}
