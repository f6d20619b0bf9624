package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workstream-hq/hr-attend-api/internal/models"
)

// BalanceRepository handles persistence for leave balances. Every mutation is
// a single conditional UPDATE; sufficiency is enforced inside the statement
// so concurrent approvals cannot lose updates.
type BalanceRepository struct {
	db *sqlx.DB
}

// NewBalanceRepository constructs the repository.
func NewBalanceRepository(db *sqlx.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

const balanceColumns = `id, employee_id, year, leave_type, total, used, remaining, created_at, updated_at`

// GetOrCreate returns the employee's balance rows for the year, lazily
// inserting any missing category with its default allotment. The insert uses
// ON CONFLICT DO NOTHING so concurrent first access cannot duplicate rows.
func (r *BalanceRepository) GetOrCreate(ctx context.Context, employeeID string, year int, defaults map[models.LeaveType]float64) ([]models.LeaveBalance, error) {
	now := time.Now().UTC()
	insert := `INSERT INTO leave_balances (id, employee_id, year, leave_type, total, used, remaining, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, $5, $6, $6)
ON CONFLICT (employee_id, year, leave_type) DO NOTHING`
	for _, leaveType := range models.LeaveTypes {
		total := defaults[leaveType]
		if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), employeeID, year, leaveType, total, now); err != nil {
			return nil, fmt.Errorf("seed leave balance %s: %w", leaveType, err)
		}
	}
	query := fmt.Sprintf(`SELECT %s FROM leave_balances
WHERE employee_id = $1 AND year = $2 ORDER BY leave_type ASC`, balanceColumns)
	var rows []models.LeaveBalance
	if err := r.db.SelectContext(ctx, &rows, query, employeeID, year); err != nil {
		return nil, fmt.Errorf("list leave balances: %w", err)
	}
	return rows, nil
}

// Find returns one balance row, or nil when absent.
func (r *BalanceRepository) Find(ctx context.Context, employeeID string, year int, leaveType models.LeaveType) (*models.LeaveBalance, error) {
	query := fmt.Sprintf(`SELECT %s FROM leave_balances
WHERE employee_id = $1 AND year = $2 AND leave_type = $3`, balanceColumns)
	var row models.LeaveBalance
	if err := r.db.GetContext(ctx, &row, query, employeeID, year, leaveType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find leave balance: %w", err)
	}
	return &row, nil
}

// Adjust atomically moves usedDelta days from remaining to used. For paid
// categories a positive delta only applies while remaining covers it; the
// caller learns via the applied flag whether the deduction happened. Negative
// deltas (restores) always apply.
func (r *BalanceRepository) Adjust(ctx context.Context, employeeID string, year int, leaveType models.LeaveType, usedDelta float64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE leave_balances
SET used = used + $1, remaining = remaining - $1, updated_at = $2
WHERE employee_id = $3 AND year = $4 AND leave_type = $5
  AND ($1 <= 0 OR leave_type = $6 OR remaining >= $1)`,
		usedDelta, time.Now().UTC(), employeeID, year, leaveType, models.LeaveTypeUnpaid)
	if err != nil {
		return false, fmt.Errorf("adjust leave balance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("adjust leave balance affected: %w", err)
	}
	return affected == 1, nil
}

// SetTotal replaces the yearly allotment and recomputes remaining. It refuses
// totals below the already-consumed amount; the guard lives in the statement
// so the check and write cannot be split.
func (r *BalanceRepository) SetTotal(ctx context.Context, employeeID string, year int, leaveType models.LeaveType, newTotal float64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE leave_balances
SET total = $1, remaining = $1 - used, updated_at = $2
WHERE employee_id = $3 AND year = $4 AND leave_type = $5 AND used <= $1`,
		newTotal, time.Now().UTC(), employeeID, year, leaveType)
	if err != nil {
		return false, fmt.Errorf("set leave balance total: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set leave balance total affected: %w", err)
	}
	return affected == 1, nil
}
