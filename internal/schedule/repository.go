package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrScheduleNotFound       = errors.New("schedule not found")
	ErrUnavailabilityNotFound = errors.New("unavailability not found")
)

// Repository reads the weekly templates and absence declarations the
// slot generator and booking core depend on. Both tables are owned by
// admin flows; this core never mutates templates and only inserts
// absences via MarkUnavailable.
type Repository interface {
	WeekTemplate(ctx context.Context, doctorID uuid.UUID) (WeekTemplate, error)
	DayTemplate(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*Schedule, error)

	ListUnavailability(ctx context.Context, doctorID uuid.UUID) ([]Unavailability, error)
	CreateUnavailability(ctx context.Context, u Unavailability) (*Unavailability, error)
}

// FirstCovering returns the first absence in list that applies to day d,
// or nil when the doctor has no matching absence.
func FirstCovering(list []Unavailability, d time.Time) *Unavailability {
	for i := range list {
		if list[i].Covers(d) {
			return &list[i]
		}
	}
	return nil
}
