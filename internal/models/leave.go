package models

import "time"

// LeaveType enumerates the leave categories.
type LeaveType string

const (
	LeaveTypeCasual LeaveType = "casual"
	LeaveTypeSick   LeaveType = "sick"
	LeaveTypeAnnual LeaveType = "annual"
	LeaveTypeUnpaid LeaveType = "unpaid"
)

// Valid returns true when the leave type is a supported value.
func (t LeaveType) Valid() bool {
	switch t {
	case LeaveTypeCasual, LeaveTypeSick, LeaveTypeAnnual, LeaveTypeUnpaid:
		return true
	default:
		return false
	}
}

// Paid reports whether the category consumes a finite allotment. Unpaid leave
// is exempt from sufficiency checks.
func (t LeaveType) Paid() bool {
	return t != LeaveTypeUnpaid
}

// LeaveTypes lists every category, in allotment order.
var LeaveTypes = []LeaveType{LeaveTypeCasual, LeaveTypeSick, LeaveTypeAnnual, LeaveTypeUnpaid}

// LeaveStatus enumerates application lifecycle states.
type LeaveStatus string

const (
	LeaveStatusPending   LeaveStatus = "pending"
	LeaveStatusApproved  LeaveStatus = "approved"
	LeaveStatusRejected  LeaveStatus = "rejected"
	LeaveStatusCancelled LeaveStatus = "cancelled"
)

// Valid returns true when the status is a supported value.
func (s LeaveStatus) Valid() bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected, LeaveStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition may leave the state. Approved
// applications are terminal except for a pre-start cancel.
func (s LeaveStatus) Terminal() bool {
	return s == LeaveStatusRejected || s == LeaveStatusCancelled
}

// LeaveApplication models one leave request through its lifecycle.
// FromDate/ToDate are normalized organizational days.
type LeaveApplication struct {
	ID               string      `db:"id" json:"id"`
	EmployeeID       string      `db:"employee_id" json:"employee_id"`
	LeaveType        LeaveType   `db:"leave_type" json:"leave_type"`
	FromDate         time.Time   `db:"from_date" json:"from_date"`
	ToDate           time.Time   `db:"to_date" json:"to_date"`
	TotalDays        float64     `db:"total_days" json:"total_days"`
	Reason           string      `db:"reason" json:"reason"`
	Status           LeaveStatus `db:"status" json:"status"`
	IsHalfDay        bool        `db:"is_half_day" json:"is_half_day"`
	AttendanceMarked bool        `db:"attendance_marked" json:"attendance_marked"`
	AppliedAt        time.Time   `db:"applied_at" json:"applied_at"`
	ReviewedBy       *string     `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time  `db:"reviewed_at" json:"reviewed_at,omitempty"`
	RejectionReason  *string     `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`
}

// LeaveFilter scopes leave history listings.
type LeaveFilter struct {
	EmployeeID   string
	DepartmentID string
	Status       *LeaveStatus
	LeaveType    *LeaveType
	DateFrom     *time.Time
	DateTo       *time.Time
	Page         int
	PageSize     int
}
