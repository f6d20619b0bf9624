package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workstream-hq/hr-attend-api/internal/models"
)

// LeaveRepository handles persistence for leave applications. State
// transitions are compare-and-swap updates conditioned on the expected
// current status, so two concurrent reviewers cannot both win.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

const leaveColumns = `id, employee_id, leave_type, from_date, to_date, total_days, reason, status, is_half_day, attendance_marked, applied_at, reviewed_by, reviewed_at, rejection_reason, created_at, updated_at`

// Create inserts a new application.
func (r *LeaveRepository) Create(ctx context.Context, app *models.LeaveApplication) (*models.LeaveApplication, error) {
	now := time.Now().UTC()
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.AppliedAt.IsZero() {
		app.AppliedAt = now
	}
	query := fmt.Sprintf(`INSERT INTO leave_applications (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING %s`, leaveColumns, leaveColumns)
	var stored models.LeaveApplication
	if err := r.db.GetContext(ctx, &stored, query,
		app.ID, app.EmployeeID, app.LeaveType, app.FromDate, app.ToDate, app.TotalDays,
		app.Reason, app.Status, app.IsHalfDay, app.AttendanceMarked, app.AppliedAt,
		app.ReviewedBy, app.ReviewedAt, app.RejectionReason, app.CreatedAt, app.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create leave application: %w", err)
	}
	return &stored, nil
}

// FindByID returns one application, or nil when absent.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.LeaveApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM leave_applications WHERE id = $1`, leaveColumns)
	var app models.LeaveApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find leave application: %w", err)
	}
	return &app, nil
}

// HasOverlap reports whether the employee has any non-terminal application
// whose date range intersects [from, to].
func (r *LeaveRepository) HasOverlap(ctx context.Context, employeeID string, from, to time.Time) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(
SELECT 1 FROM leave_applications
WHERE employee_id = $1 AND status IN ($2, $3) AND from_date <= $4 AND to_date >= $5)`,
		employeeID, models.LeaveStatusPending, models.LeaveStatusApproved, to, from)
	if err != nil {
		return false, fmt.Errorf("check leave overlap: %w", err)
	}
	return exists, nil
}

// TransitionStatus atomically moves an application from the expected status
// to the next one, recording the reviewer when given. It returns false when
// the application was no longer in the expected status.
func (r *LeaveRepository) TransitionStatus(ctx context.Context, id string, from, to models.LeaveStatus, reviewedBy *string, rejectionReason *string) (bool, error) {
	now := time.Now().UTC()
	var reviewedAt *time.Time
	if reviewedBy != nil {
		reviewedAt = &now
	}
	result, err := r.db.ExecContext(ctx, `UPDATE leave_applications
SET status = $1, reviewed_by = COALESCE($2, reviewed_by), reviewed_at = COALESCE($3, reviewed_at),
    rejection_reason = COALESCE($4, rejection_reason), updated_at = $5
WHERE id = $6 AND status = $7`,
		to, reviewedBy, reviewedAt, rejectionReason, now, id, from)
	if err != nil {
		return false, fmt.Errorf("transition leave status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition leave status affected: %w", err)
	}
	return affected == 1, nil
}

// SetAttendanceMarked flags that ledger propagation ran for the application.
func (r *LeaveRepository) SetAttendanceMarked(ctx context.Context, id string, marked bool) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE leave_applications SET attendance_marked = $1, updated_at = $2 WHERE id = $3`,
		marked, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("set attendance marked: %w", err)
	}
	return nil
}

// ListApprovedCovering returns every approved application whose range
// contains the given day.
func (r *LeaveRepository) ListApprovedCovering(ctx context.Context, date time.Time) ([]models.LeaveApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM leave_applications
WHERE status = $1 AND from_date <= $2 AND to_date >= $2`, leaveColumns)
	var rows []models.LeaveApplication
	if err := r.db.SelectContext(ctx, &rows, query, models.LeaveStatusApproved, date); err != nil {
		return nil, fmt.Errorf("list approved leaves covering day: %w", err)
	}
	return rows, nil
}

// List returns applications matching the filter plus the unpaged total.
func (r *LeaveRepository) List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveApplication, int, error) {
	base := `FROM leave_applications la`
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.DepartmentID != "" {
		base += ` JOIN employees e ON e.id = la.employee_id`
		where = append(where, fmt.Sprintf("e.department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.EmployeeID != "" {
		where = append(where, fmt.Sprintf("la.employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("la.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.LeaveType != nil && filter.LeaveType.Valid() {
		where = append(where, fmt.Sprintf("la.leave_type = $%d", len(args)+1))
		args = append(args, *filter.LeaveType)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("la.to_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("la.from_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	cols := "la." + strings.ReplaceAll(leaveColumns, ", ", ", la.")
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY la.applied_at DESC LIMIT %d OFFSET %d`,
		cols, base, whereClause, size, offset)
	var rows []models.LeaveApplication
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list leave applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count leave applications: %w", err)
	}
	return rows, total, nil
}
