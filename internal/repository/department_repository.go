package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/workstream-hq/hr-attend-api/internal/models"
)

// DepartmentRepository is the read-only view onto the department directory
// used for approval scoping.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs the repository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// FindManagedBy returns the department an employee manages, or nil when they
// manage none. Resolved live at review time, never cached.
func (r *DepartmentRepository) FindManagedBy(ctx context.Context, managerEmployeeID string) (*models.Department, error) {
	var dept models.Department
	err := r.db.GetContext(ctx, &dept,
		`SELECT id, name, manager_id FROM departments WHERE manager_id = $1`, managerEmployeeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find managed department: %w", err)
	}
	return &dept, nil
}
