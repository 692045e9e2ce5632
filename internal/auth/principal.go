package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Session issuance happens upstream; this core trusts the identity it
// is handed and only applies its own role/ownership checks.

var ErrUnauthorized = errors.New("not authorized")

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func ValidRole(r Role) bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller. For doctors, UserID is the
// doctor's own ID.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool  { return p.Role == RoleAdmin }
func (p Principal) IsDoctor() bool { return p.Role == RoleDoctor }

type contextKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
