package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgDirectory serves both doctor and user lookups from Postgres.
type PgDirectory struct {
	pool Querier
}

func NewPgDirectory(pool Querier) *PgDirectory {
	return &PgDirectory{pool: pool}
}

func (r *PgDirectory) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	var d Doctor

	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, specialty, consultation_fee, timezone, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id).Scan(
		&d.ID,
		&d.Name,
		&d.Email,
		&d.Specialty,
		&d.ConsultationFee,
		&d.Timezone,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	return &d, nil
}

func (r *PgDirectory) ListDoctorIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM doctors ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *PgDirectory) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User

	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}
