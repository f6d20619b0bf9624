package models

import "time"

// Employee is the read-only view of the employee directory the engine
// consumes. Employee CRUD lives outside this service.
type Employee struct {
	ID           string    `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	DepartmentID *string   `db:"department_id" json:"department_id,omitempty"`
	Role         UserRole  `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Department is the read-only department directory row used for approval
// scoping.
type Department struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	ManagerID *string `db:"manager_id" json:"manager_id,omitempty"`
}

// Holiday is a registered non-working day from the holiday calendar.
type Holiday struct {
	ID     string    `db:"id" json:"id"`
	Date   time.Time `db:"date" json:"date"`
	Name   string    `db:"name" json:"name"`
	Active bool      `db:"active" json:"active"`
}
