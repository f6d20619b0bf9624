package models

import "time"

// LeaveBalance is the per-(employee, year, category) counter row. The
// invariant remaining = total - used holds after every mutation; rows are
// only ever changed through atomic increments, never read-modify-write.
type LeaveBalance struct {
	ID         string    `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	Year       int       `db:"year" json:"year"`
	LeaveType  LeaveType `db:"leave_type" json:"leave_type"`
	Total      float64   `db:"total" json:"total"`
	Used       float64   `db:"used" json:"used"`
	Remaining  float64   `db:"remaining" json:"remaining"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
