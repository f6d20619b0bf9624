package models

import "time"

// AttendanceStatus represents the derived status of an attendance record.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusHalfDay AttendanceStatus = "half_day"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusOnLeave AttendanceStatus = "on_leave"
	AttendanceStatusHoliday AttendanceStatus = "holiday"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusHalfDay,
		AttendanceStatusAbsent, AttendanceStatusOnLeave, AttendanceStatusHoliday:
		return true
	default:
		return false
	}
}

// Worked reports whether the status reflects a worked session, i.e. one that
// may carry check times and hours.
func (s AttendanceStatus) Worked() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusHalfDay:
		return true
	default:
		return false
	}
}

// AttendanceRecord is the single ledger row per (employee, calendar day).
// Date is always normalized to UTC midnight of the organizational day.
type AttendanceRecord struct {
	ID         string           `db:"id" json:"id"`
	EmployeeID string           `db:"employee_id" json:"employee_id"`
	Date       time.Time        `db:"date" json:"date"`
	CheckIn    *time.Time       `db:"check_in" json:"check_in,omitempty"`
	CheckOut   *time.Time       `db:"check_out" json:"check_out,omitempty"`
	Status     AttendanceStatus `db:"status" json:"status"`
	WorkHours  float64          `db:"work_hours" json:"work_hours"`
	Note       *string          `db:"note" json:"note,omitempty"`
	MarkedBy   *string          `db:"marked_by" json:"marked_by,omitempty"`
	IsManual   bool             `db:"is_manual" json:"is_manual"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceSummary aggregates a range of ledger rows.
type AttendanceSummary struct {
	Present      int     `json:"present"`
	Late         int     `json:"late"`
	HalfDay      int     `json:"half_day"`
	Absent       int     `json:"absent"`
	OnLeave      int     `json:"on_leave"`
	Holiday      int     `json:"holiday"`
	TotalRecords int     `json:"total_records"`
	TotalHours   float64 `json:"total_hours"`
	WorkingDays  float64 `json:"working_days"`
	AttendedDays float64 `json:"attended_days"`
	Percent      float64 `json:"percent"`
}

// MonthlyAttendance bundles the month's rows with their summary.
type MonthlyAttendance struct {
	EmployeeID string             `json:"employee_id"`
	Month      int                `json:"month"`
	Year       int                `json:"year"`
	Records    []AttendanceRecord `json:"records"`
	Summary    AttendanceSummary  `json:"summary"`
}
