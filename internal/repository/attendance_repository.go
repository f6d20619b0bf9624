package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workstream-hq/hr-attend-api/internal/models"
)

// InsertOutcome is the tri-state result of an insert-if-absent write. A
// concurrent writer creating the row first is reported as OutcomeExisted, not
// as an error.
type InsertOutcome int

const (
	OutcomeCreated InsertOutcome = iota
	OutcomeExisted
)

// AttendanceRepository handles persistence for the attendance ledger. Every
// write is keyed by (employee_id, date) so user actions and batch jobs can
// race safely.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, employee_id, date, check_in, check_out, status, work_hours, note, marked_by, is_manual, created_at, updated_at`

// FindByEmployeeAndDate returns the ledger row for one employee-day, or nil
// when none exists.
func (r *AttendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records WHERE employee_id = $1 AND date = $2`, attendanceColumns)
	var rec models.AttendanceRecord
	if err := r.db.GetContext(ctx, &rec, query, employeeID, date); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find attendance record: %w", err)
	}
	return &rec, nil
}

// Upsert inserts or updates the employee-day row in place.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO attendance_records (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (employee_id, date)
DO UPDATE SET check_in = EXCLUDED.check_in, check_out = EXCLUDED.check_out,
    status = EXCLUDED.status, work_hours = EXCLUDED.work_hours, note = EXCLUDED.note,
    marked_by = EXCLUDED.marked_by, is_manual = EXCLUDED.is_manual, updated_at = EXCLUDED.updated_at
RETURNING %s`, attendanceColumns, attendanceColumns)
	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.EmployeeID, record.Date, record.CheckIn, record.CheckOut,
		record.Status, record.WorkHours, record.Note, record.MarkedBy, record.IsManual,
		record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert attendance record: %w", err)
	}
	return &stored, nil
}

// InsertIfAbsent creates the employee-day row only when none exists yet and
// reports which of the two happened.
func (r *AttendanceRepository) InsertIfAbsent(ctx context.Context, record *models.AttendanceRecord) (InsertOutcome, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO attendance_records (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (employee_id, date) DO NOTHING RETURNING id`, attendanceColumns)
	var insertedID string
	err := r.db.QueryRowxContext(ctx, query,
		record.ID, record.EmployeeID, record.Date, record.CheckIn, record.CheckOut,
		record.Status, record.WorkHours, record.Note, record.MarkedBy, record.IsManual,
		record.CreatedAt, record.UpdatedAt).Scan(&insertedID)
	if err == sql.ErrNoRows {
		return OutcomeExisted, nil
	}
	if err != nil {
		return OutcomeExisted, fmt.Errorf("insert attendance record: %w", err)
	}
	return OutcomeCreated, nil
}

// ListRange returns one employee's rows in [from, to], oldest first.
func (r *AttendanceRepository) ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records
WHERE employee_id = $1 AND date >= $2 AND date <= $3
ORDER BY date ASC`, attendanceColumns)
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, employeeID, from, to); err != nil {
		return nil, fmt.Errorf("list attendance range: %w", err)
	}
	return rows, nil
}

// ListOpenByDate returns the day's rows with a check-in but no check-out.
// These are the candidates for the nightly auto-checkout.
func (r *AttendanceRepository) ListOpenByDate(ctx context.Context, date time.Time) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records
WHERE date = $1 AND check_in IS NOT NULL AND check_out IS NULL`, attendanceColumns)
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("list open attendance records: %w", err)
	}
	return rows, nil
}

// ListEmployeeIDsWithRecord returns the IDs of employees that already have
// any ledger row for the day.
func (r *AttendanceRepository) ListEmployeeIDsWithRecord(ctx context.Context, date time.Time) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids,
		`SELECT employee_id FROM attendance_records WHERE date = $1`, date); err != nil {
		return nil, fmt.Errorf("list attended employee ids: %w", err)
	}
	return ids, nil
}

// BulkInsertMissing best-effort inserts one row per employee for the day.
// Rows created concurrently by another writer are counted as skipped, not
// failed; a single bad row does not abort the batch.
func (r *AttendanceRepository) BulkInsertMissing(ctx context.Context, records []models.AttendanceRecord) (created, skipped int, err error) {
	if len(records) == 0 {
		return 0, 0, nil
	}
	query := fmt.Sprintf(`INSERT INTO attendance_records (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (employee_id, date) DO NOTHING RETURNING id`, attendanceColumns)
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.CreatedAt = now
		rec.UpdatedAt = now
		var insertedID string
		scanErr := r.db.QueryRowxContext(ctx, query,
			rec.ID, rec.EmployeeID, rec.Date, rec.CheckIn, rec.CheckOut,
			rec.Status, rec.WorkHours, rec.Note, rec.MarkedBy, rec.IsManual,
			rec.CreatedAt, rec.UpdatedAt).Scan(&insertedID)
		if scanErr == sql.ErrNoRows {
			skipped++
			continue
		}
		if scanErr != nil {
			return created, skipped, fmt.Errorf("bulk insert attendance for %s: %w", rec.EmployeeID, scanErr)
		}
		created++
	}
	return created, skipped, nil
}

// RevertLeaveDays flips one employee's on-leave days in [from, to] back to
// absent, but only from minDate onward and only where no live check-in
// exists. Past on-leave days stay untouched. Returns the number of rows
// reverted.
func (r *AttendanceRepository) RevertLeaveDays(ctx context.Context, employeeID string, from, to, minDate time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE attendance_records
SET status = $1, work_hours = 0, updated_at = $2
WHERE employee_id = $3 AND date >= $4 AND date <= $5 AND date >= $6
  AND status = $7 AND check_in IS NULL`,
		models.AttendanceStatusAbsent, time.Now().UTC(), employeeID, from, to, minDate,
		models.AttendanceStatusOnLeave)
	if err != nil {
		return 0, fmt.Errorf("revert leave days: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revert leave days affected: %w", err)
	}
	return affected, nil
}
