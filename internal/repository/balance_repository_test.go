package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstream-hq/hr-attend-api/internal/models"
)

func TestBalanceRepositoryAdjustApplied(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewBalanceRepository(db)

	mock.ExpectExec("UPDATE leave_balances").
		WithArgs(3.0, sqlmock.AnyArg(), "emp-1", 2024, models.LeaveTypeCasual, models.LeaveTypeUnpaid).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.Adjust(context.Background(), "emp-1", 2024, models.LeaveTypeCasual, 3.0)
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestBalanceRepositoryAdjustInsufficient(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewBalanceRepository(db)

	// The sufficiency guard lives in the WHERE clause: zero rows means the
	// remaining balance no longer covers the delta.
	mock.ExpectExec("UPDATE leave_balances").
		WithArgs(5.0, sqlmock.AnyArg(), "emp-1", 2024, models.LeaveTypeAnnual, models.LeaveTypeUnpaid).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.Adjust(context.Background(), "emp-1", 2024, models.LeaveTypeAnnual, 5.0)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestBalanceRepositorySetTotalGuardsConsumedLeave(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewBalanceRepository(db)

	mock.ExpectExec("UPDATE leave_balances").
		WithArgs(2.0, sqlmock.AnyArg(), "emp-1", 2024, models.LeaveTypeCasual).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.SetTotal(context.Background(), "emp-1", 2024, models.LeaveTypeCasual, 2.0)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestBalanceRepositoryGetOrCreateSeedsDefaults(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewBalanceRepository(db)

	for range models.LeaveTypes {
		mock.ExpectExec("INSERT INTO leave_balances").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "employee_id", "year", "leave_type", "total", "used", "remaining", "created_at", "updated_at",
	}).
		AddRow("bal-1", "emp-1", 2024, "annual", 15.0, 0.0, 15.0, now, now).
		AddRow("bal-2", "emp-1", 2024, "casual", 12.0, 2.0, 10.0, now, now)
	mock.ExpectQuery("SELECT (.+) FROM leave_balances").
		WithArgs("emp-1", 2024).
		WillReturnRows(rows)

	balances, err := repo.GetOrCreate(context.Background(), "emp-1", 2024, map[models.LeaveType]float64{
		models.LeaveTypeCasual: 12, models.LeaveTypeSick: 10, models.LeaveTypeAnnual: 15,
	})
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, 10.0, balances[1].Remaining)
}

func TestBalanceRepositoryFindReturnsRow(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewBalanceRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "employee_id", "year", "leave_type", "total", "used", "remaining", "created_at", "updated_at",
	}).
		AddRow("bal-1", "emp-1", 2024, "casual", 12.0, 11.0, 1.0, now, now)
	mock.ExpectQuery("SELECT (.+) FROM leave_balances").
		WithArgs("emp-1", 2024, models.LeaveTypeCasual).
		WillReturnRows(rows)

	balance, err := repo.Find(context.Background(), "emp-1", 2024, models.LeaveTypeCasual)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, 1.0, balance.Remaining)
}

func TestBalanceRepositoryFindAbsentIsNil(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewBalanceRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM leave_balances").
		WithArgs("emp-9", 2024, models.LeaveTypeSick).
		WillReturnError(sql.ErrNoRows)

	balance, err := repo.Find(context.Background(), "emp-9", 2024, models.LeaveTypeSick)
	require.NoError(t, err)
	assert.Nil(t, balance)
}
