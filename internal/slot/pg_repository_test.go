package slot

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/booking/internal/schedule"
)

func newSlotMock(t *testing.T) (pgxmock.PgxPoolIface, *PgRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPgRepository(mock)
}

func TestInsertMany_CountsDuplicates(t *testing.T) {
	mock, repo := newSlotMock(t)
	doctorID := uuid.New()
	date := time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)

	slots := []Slot{
		{DoctorID: doctorID, Date: date, StartTime: "09:00", EndTime: "09:30", Period: schedule.PeriodMorning},
		{DoctorID: doctorID, Date: date, StartTime: "09:30", EndTime: "10:00", Period: schedule.PeriodMorning},
		{DoctorID: doctorID, Date: date, StartTime: "10:00", EndTime: "10:30", Period: schedule.PeriodMorning},
	}

	eb := mock.ExpectBatch()
	eb.ExpectExec("INSERT INTO slots").
		WithArgs(pgxmock.AnyArg(), doctorID, date, "09:00", "09:30", schedule.PeriodMorning, StatusAvailable).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	eb.ExpectExec("INSERT INTO slots").
		WithArgs(pgxmock.AnyArg(), doctorID, date, "09:30", "10:00", schedule.PeriodMorning, StatusAvailable).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	eb.ExpectExec("INSERT INTO slots").
		WithArgs(pgxmock.AnyArg(), doctorID, date, "10:00", "10:30", schedule.PeriodMorning, StatusAvailable).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	res, err := repo.InsertMany(context.Background(), slots)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Duplicates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMany_Empty(t *testing.T) {
	_, repo := newSlotMock(t)

	res, err := repo.InsertMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
	assert.Zero(t, res.Duplicates)
}

func TestGetByID_NotFound(t *testing.T) {
	mock, repo := newSlotMock(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM slots").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestListAvailable_WithPeriod(t *testing.T) {
	mock, repo := newSlotMock(t)
	doctorID := uuid.New()
	date := time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)
	period := schedule.PeriodMorning
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "doctor_id", "date", "start_time", "end_time", "period",
		"status", "booking_type", "appointment_id", "created_at", "updated_at",
	}).AddRow(uuid.New(), doctorID, date, "09:00", "09:30", schedule.PeriodMorning,
		StatusAvailable, nil, nil, now, now)

	mock.ExpectQuery("SELECT (.+) FROM slots").
		WithArgs(doctorID, date, StatusAvailable, period).
		WillReturnRows(rows)

	got, err := repo.ListAvailable(context.Background(), doctorID, date, &period)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "09:00", got[0].StartTime)
	assert.Nil(t, got[0].BookingType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelAvailableInRange(t *testing.T) {
	mock, repo := newSlotMock(t)
	doctorID := uuid.New()
	from := time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 2)

	mock.ExpectExec("UPDATE slots").
		WithArgs(doctorID, from, to, StatusCancelled, StatusAvailable).
		WillReturnResult(pgxmock.NewResult("UPDATE", 7))

	n, err := repo.CancelAvailableInRange(context.Background(), doctorID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestUpdateStatusBulk(t *testing.T) {
	mock, repo := newSlotMock(t)
	doctorID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	mock.ExpectExec("UPDATE slots").
		WithArgs(doctorID, ids, StatusCancelled, StatusAvailable).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	n, err := repo.UpdateStatusBulk(context.Background(), doctorID, ids, StatusAvailable, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCountWithStatus(t *testing.T) {
	mock, repo := newSlotMock(t)
	doctorID := uuid.New()
	ids := []uuid.UUID{uuid.New()}

	mock.ExpectQuery("SELECT count").
		WithArgs(doctorID, ids, StatusBooked).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	n, err := repo.CountWithStatus(context.Background(), doctorID, ids, StatusBooked)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
