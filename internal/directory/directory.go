package directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrUserNotFound   = errors.New("user not found")
)

// Doctor is the profile slice the booking core needs: fee for the
// booking-time snapshot, email/name for notifications, timezone for
// doctor-local date math. Profile CRUD lives elsewhere.
type Doctor struct {
	ID              uuid.UUID
	Name            string
	Email           string
	Specialty       *string
	ConsultationFee float64
	Timezone        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Location resolves the doctor's IANA timezone, falling back to UTC on
// an unknown or empty name rather than failing the request.
func (d *Doctor) Location() *time.Location {
	if d.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DoctorDirectory and UserDirectory are the identity collaborators of
// the booking core. The core only reads through them.
type DoctorDirectory interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
	ListDoctorIDs(ctx context.Context) ([]uuid.UUID, error)
}

type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
}
