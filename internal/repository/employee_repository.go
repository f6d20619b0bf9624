package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/workstream-hq/hr-attend-api/internal/models"
)

// EmployeeRepository is the read-only view onto the employee directory.
// Employee CRUD belongs to the HR administration service.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs the repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// FindByID returns one employee, or nil when absent.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	var emp models.Employee
	err := r.db.GetContext(ctx, &emp,
		`SELECT id, full_name, email, department_id, role, active, created_at FROM employees WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return &emp, nil
}

// ListActiveIDs returns the IDs of all active employees.
func (r *EmployeeRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids,
		`SELECT id FROM employees WHERE active = TRUE ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list active employee ids: %w", err)
	}
	return ids, nil
}
