package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/workstream-hq/hr-attend-api/internal/models"
	"github.com/workstream-hq/hr-attend-api/internal/repository"
	appErrors "github.com/workstream-hq/hr-attend-api/pkg/errors"
	"github.com/workstream-hq/hr-attend-api/pkg/orgtime"
)

type leaveStore interface {
	Create(ctx context.Context, app *models.LeaveApplication) (*models.LeaveApplication, error)
	FindByID(ctx context.Context, id string) (*models.LeaveApplication, error)
	HasOverlap(ctx context.Context, employeeID string, from, to time.Time) (bool, error)
	TransitionStatus(ctx context.Context, id string, from, to models.LeaveStatus, reviewedBy *string, rejectionReason *string) (bool, error)
	SetAttendanceMarked(ctx context.Context, id string, marked bool) error
	List(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveApplication, int, error)
}

type balanceStore interface {
	GetOrCreate(ctx context.Context, employeeID string, year int, defaults map[models.LeaveType]float64) ([]models.LeaveBalance, error)
	Find(ctx context.Context, employeeID string, year int, leaveType models.LeaveType) (*models.LeaveBalance, error)
	Adjust(ctx context.Context, employeeID string, year int, leaveType models.LeaveType, usedDelta float64) (bool, error)
	SetTotal(ctx context.Context, employeeID string, year int, leaveType models.LeaveType, newTotal float64) (bool, error)
}

type attendanceLedger interface {
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*models.AttendanceRecord, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	InsertIfAbsent(ctx context.Context, record *models.AttendanceRecord) (repository.InsertOutcome, error)
	RevertLeaveDays(ctx context.Context, employeeID string, from, to, minDate time.Time) (int64, error)
}

type departmentDirectory interface {
	FindManagedBy(ctx context.Context, managerEmployeeID string) (*models.Department, error)
}

// LeaveService owns the leave application state machine and is the only
// writer of the leave balance ledger.
type LeaveService struct {
	leaves      leaveStore
	balances    balanceStore
	attendance  attendanceLedger
	employees   employeeDirectory
	departments departmentDirectory
	calendar    *orgtime.Calendar
	defaults    map[models.LeaveType]float64
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewLeaveService constructs the leave service. defaults holds the yearly
// allotment per category used for lazy balance creation.
func NewLeaveService(leaves leaveStore, balances balanceStore, attendance attendanceLedger, employees employeeDirectory, departments departmentDirectory, calendar *orgtime.Calendar, defaults map[models.LeaveType]float64, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &LeaveService{
		leaves:      leaves,
		balances:    balances,
		attendance:  attendance,
		employees:   employees,
		departments: departments,
		calendar:    calendar,
		defaults:    defaults,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
	svc.validator.RegisterValidation("leave_type", func(fl validator.FieldLevel) bool {
		return models.LeaveType(fl.Field().String()).Valid()
	})
	return svc
}

// ApplyLeaveRequest is the application payload.
type ApplyLeaveRequest struct {
	LeaveType string `json:"leave_type" validate:"required,leave_type"`
	FromDate  string `json:"from_date" validate:"required"`
	ToDate    string `json:"to_date" validate:"required"`
	Reason    string `json:"reason" validate:"required,min=10"`
	IsHalfDay bool   `json:"is_half_day"`
}

// Apply validates and admits a new leave application in pending state. The
// balance check here is optimistic; the authoritative deduction happens at
// approval.
func (s *LeaveService) Apply(ctx context.Context, claims *models.JWTClaims, req ApplyLeaveRequest) (*models.LeaveApplication, error) {
	if claims == nil || claims.EmployeeID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave application")
	}

	from, err := s.parseDay(req.FromDate)
	if err != nil {
		return nil, err
	}
	to, err := s.parseDay(req.ToDate)
	if err != nil {
		return nil, err
	}
	today := s.calendar.DayOf(s.now())

	if from.Before(today) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "leave cannot start in the past")
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to date precedes from date")
	}
	if req.IsHalfDay && !from.Equal(to) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "half-day leave must cover a single day")
	}

	leaveType := models.LeaveType(req.LeaveType)
	totalDays := 0.5
	if !req.IsHalfDay {
		totalDays = orgtime.CountWorkingDays(from, to)
	}
	if totalDays == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date range contains no working days")
	}

	overlaps, err := s.leaves.HasOverlap(ctx, claims.EmployeeID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check overlapping leave")
	}
	if overlaps {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an existing leave application overlaps this range")
	}

	if leaveType.Paid() {
		remaining, err := s.remainingBalance(ctx, claims.EmployeeID, from.Year(), leaveType)
		if err != nil {
			return nil, err
		}
		if remaining < totalDays {
			return nil, appErrors.InsufficientBalance(totalDays, remaining)
		}
	}

	app := &models.LeaveApplication{
		EmployeeID: claims.EmployeeID,
		LeaveType:  leaveType,
		FromDate:   from,
		ToDate:     to,
		TotalDays:  totalDays,
		Reason:     req.Reason,
		Status:     models.LeaveStatusPending,
		IsHalfDay:  req.IsHalfDay,
		AppliedAt:  s.now().UTC(),
	}
	stored, err := s.leaves.Create(ctx, app)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave application")
	}
	s.logger.Info("leave_applied",
		zap.String("application_id", stored.ID),
		zap.String("employee_id", stored.EmployeeID),
		zap.String("leave_type", string(stored.LeaveType)),
		zap.Float64("total_days", stored.TotalDays))
	return stored, nil
}

// Cancel withdraws the caller's own application. An approved application can
// only be cancelled before it starts; cancelling it restores the balance and
// reverts not-yet-past on-leave days.
func (s *LeaveService) Cancel(ctx context.Context, claims *models.JWTClaims, applicationID string) (*models.LeaveApplication, error) {
	if claims == nil || claims.EmployeeID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	app, err := s.leaves.FindByID(ctx, applicationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave application")
	}
	if app == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "leave application not found")
	}
	if app.EmployeeID != claims.EmployeeID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the applicant may cancel a leave application")
	}
	if app.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "leave application is already closed")
	}

	today := s.calendar.DayOf(s.now())
	wasApproved := app.Status == models.LeaveStatusApproved
	if wasApproved && !app.FromDate.After(today) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "approved leave that has started cannot be cancelled")
	}

	transitioned, err := s.leaves.TransitionStatus(ctx, app.ID, app.Status, models.LeaveStatusCancelled, nil, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel leave application")
	}
	if !transitioned {
		return nil, appErrors.Clone(appErrors.ErrConflict, "leave application changed state concurrently")
	}

	if wasApproved {
		if _, err := s.balances.Adjust(ctx, app.EmployeeID, app.FromDate.Year(), app.LeaveType, -app.TotalDays); err != nil {
			s.logger.Error("balance restore failed",
				zap.String("application_id", app.ID), zap.Error(err))
		}
		if app.AttendanceMarked {
			reverted, err := s.attendance.RevertLeaveDays(ctx, app.EmployeeID, app.FromDate, app.ToDate, today)
			if err != nil {
				s.logger.Error("leave propagation revert failed",
					zap.String("application_id", app.ID), zap.Error(err))
			} else {
				s.logger.Info("leave propagation reverted",
					zap.String("application_id", app.ID), zap.Int64("days", reverted))
			}
		}
	}

	app.Status = models.LeaveStatusCancelled
	s.logger.Info("leave_cancelled", zap.String("application_id", app.ID))
	return app, nil
}

// ReviewLeaveRequest carries a reviewer decision.
type ReviewLeaveRequest struct {
	Action          string `json:"action" validate:"required,oneof=approve reject"`
	RejectionReason string `json:"rejection_reason"`
}

// Review approves or rejects a pending application. Managers may only review
// applications from their managed department and never their own; approval
// re-checks sufficiency against the live balance and propagates on-leave onto
// the attendance ledger.
func (s *LeaveService) Review(ctx context.Context, claims *models.JWTClaims, applicationID string, req ReviewLeaveRequest) (*models.LeaveApplication, error) {
	if claims == nil || claims.EmployeeID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	app, err := s.leaves.FindByID(ctx, applicationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave application")
	}
	if app == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "leave application not found")
	}
	if app.Status != models.LeaveStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only pending applications can be reviewed")
	}
	if app.EmployeeID == claims.EmployeeID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "reviewers cannot review their own leave")
	}
	if err := s.ensureReviewScope(ctx, claims, app); err != nil {
		return nil, err
	}

	switch req.Action {
	case "reject":
		return s.reject(ctx, claims, app, req.RejectionReason)
	case "approve":
		return s.approve(ctx, claims, app)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown review action")
	}
}

func (s *LeaveService) reject(ctx context.Context, claims *models.JWTClaims, app *models.LeaveApplication, reason string) (*models.LeaveApplication, error) {
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}
	transitioned, err := s.leaves.TransitionStatus(ctx, app.ID, models.LeaveStatusPending, models.LeaveStatusRejected, &claims.EmployeeID, &reason)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject leave application")
	}
	if !transitioned {
		return nil, appErrors.Clone(appErrors.ErrConflict, "leave application changed state concurrently")
	}
	app.Status = models.LeaveStatusRejected
	app.ReviewedBy = &claims.EmployeeID
	app.RejectionReason = &reason
	s.logger.Info("leave_rejected",
		zap.String("application_id", app.ID), zap.String("reviewed_by", claims.EmployeeID))
	return app, nil
}

func (s *LeaveService) approve(ctx context.Context, claims *models.JWTClaims, app *models.LeaveApplication) (*models.LeaveApplication, error) {
	year := app.FromDate.Year()

	// Seed balance rows so the conditional deduction has a row to hit.
	if _, err := s.balances.GetOrCreate(ctx, app.EmployeeID, year, s.defaults); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave balance")
	}

	// The live sufficiency check and the deduction are one atomic statement.
	applied, err := s.balances.Adjust(ctx, app.EmployeeID, year, app.LeaveType, app.TotalDays)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deduct leave balance")
	}
	if !applied {
		// The row was seeded above, so a direct lookup gives the exact
		// remaining amount for the error.
		var remaining float64
		if row, balErr := s.balances.Find(ctx, app.EmployeeID, year, app.LeaveType); balErr == nil && row != nil {
			remaining = row.Remaining
		}
		return nil, appErrors.InsufficientBalance(app.TotalDays, remaining)
	}

	transitioned, err := s.leaves.TransitionStatus(ctx, app.ID, models.LeaveStatusPending, models.LeaveStatusApproved, &claims.EmployeeID, nil)
	if err != nil || !transitioned {
		// A concurrent reviewer won the race; give the deduction back.
		if _, restoreErr := s.balances.Adjust(ctx, app.EmployeeID, year, app.LeaveType, -app.TotalDays); restoreErr != nil {
			s.logger.Error("balance restore after lost review race failed",
				zap.String("application_id", app.ID), zap.Error(restoreErr))
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve leave application")
		}
		return nil, appErrors.Clone(appErrors.ErrConflict, "leave application changed state concurrently")
	}

	s.propagate(ctx, app)
	if err := s.leaves.SetAttendanceMarked(ctx, app.ID, true); err != nil {
		s.logger.Error("set attendance marked failed",
			zap.String("application_id", app.ID), zap.Error(err))
	}

	app.Status = models.LeaveStatusApproved
	app.ReviewedBy = &claims.EmployeeID
	app.AttendanceMarked = true
	s.logger.Info("leave_approved",
		zap.String("application_id", app.ID),
		zap.String("reviewed_by", claims.EmployeeID),
		zap.Float64("total_days", app.TotalDays))
	return app, nil
}

// propagate writes on-leave onto every non-Sunday day of the approved range.
// A day with a live check-in is left alone; per-day failures are logged and
// the nightly job re-evaluates outstanding days.
func (s *LeaveService) propagate(ctx context.Context, app *models.LeaveApplication) {
	orgtime.EachDay(app.FromDate, app.ToDate, func(day time.Time) {
		if orgtime.IsSunday(day) {
			return
		}
		record := &models.AttendanceRecord{
			EmployeeID: app.EmployeeID,
			Date:       day,
			Status:     models.AttendanceStatusOnLeave,
		}
		outcome, err := s.attendance.InsertIfAbsent(ctx, record)
		if err != nil {
			s.logger.Error("leave propagation failed",
				zap.String("application_id", app.ID),
				zap.String("date", day.Format("2006-01-02")), zap.Error(err))
			return
		}
		if outcome == repository.OutcomeCreated {
			return
		}
		existing, err := s.attendance.FindByEmployeeAndDate(ctx, app.EmployeeID, day)
		if err != nil || existing == nil {
			return
		}
		// Live presence wins over approved leave.
		if existing.CheckIn != nil || existing.Status == models.AttendanceStatusOnLeave {
			return
		}
		existing.Status = models.AttendanceStatusOnLeave
		existing.CheckIn = nil
		existing.CheckOut = nil
		existing.WorkHours = 0
		if _, err := s.attendance.Upsert(ctx, existing); err != nil {
			s.logger.Error("leave propagation overwrite failed",
				zap.String("application_id", app.ID),
				zap.String("date", day.Format("2006-01-02")), zap.Error(err))
		}
	})
}

// Balances returns the employee's per-category balances for a year, creating
// them with configured defaults on first access.
func (s *LeaveService) Balances(ctx context.Context, claims *models.JWTClaims, employeeID string, year int) ([]models.LeaveBalance, error) {
	if claims == nil || claims.EmployeeID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if employeeID == "" {
		employeeID = claims.EmployeeID
	}
	if employeeID != claims.EmployeeID && !claims.Role.Privileged() {
		return nil, appErrors.ErrForbidden
	}
	if year == 0 {
		year = s.calendar.DayOf(s.now()).Year()
	}
	balances, err := s.balances.GetOrCreate(ctx, employeeID, year, s.defaults)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave balances")
	}
	return balances, nil
}

// History lists the caller's (or, for privileged roles, anyone's)
// applications with filters and pagination.
func (s *LeaveService) History(ctx context.Context, claims *models.JWTClaims, filter models.LeaveFilter) ([]models.LeaveApplication, *models.Pagination, error) {
	if claims == nil || claims.EmployeeID == "" {
		return nil, nil, appErrors.ErrUnauthorized
	}
	if filter.EmployeeID == "" {
		filter.EmployeeID = claims.EmployeeID
	}
	if filter.EmployeeID != claims.EmployeeID && !claims.Role.Privileged() {
		return nil, nil, appErrors.ErrForbidden
	}
	apps, total, err := s.leaves.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave applications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return apps, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Pending lists reviewable applications: the managed department's for a
// manager, everyone's for HR/admin.
func (s *LeaveService) Pending(ctx context.Context, claims *models.JWTClaims, page, pageSize int) ([]models.LeaveApplication, *models.Pagination, error) {
	if claims == nil || claims.EmployeeID == "" {
		return nil, nil, appErrors.ErrUnauthorized
	}
	pending := models.LeaveStatusPending
	filter := models.LeaveFilter{Status: &pending, Page: page, PageSize: pageSize}

	switch claims.Role {
	case models.RoleHR, models.RoleAdmin:
	case models.RoleManager:
		dept, err := s.departments.FindManagedBy(ctx, claims.EmployeeID)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve managed department")
		}
		if dept == nil {
			return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "no managed department")
		}
		filter.DepartmentID = dept.ID
	default:
		return nil, nil, appErrors.ErrForbidden
	}

	apps, total, err := s.leaves.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending applications")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	return apps, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// SetBalanceTotalRequest is the HR allotment adjustment payload.
type SetBalanceTotalRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	Year       int     `json:"year" validate:"required,min=2000,max=2200"`
	LeaveType  string  `json:"leave_type" validate:"required,leave_type"`
	Total      float64 `json:"total" validate:"min=0"`
}

// SetBalanceTotal replaces a yearly allotment. Totals below the
// already-consumed amount are refused.
func (s *LeaveService) SetBalanceTotal(ctx context.Context, claims *models.JWTClaims, req SetBalanceTotalRequest) ([]models.LeaveBalance, error) {
	if claims == nil || claims.EmployeeID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleHR && claims.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid balance adjustment")
	}

	leaveType := models.LeaveType(req.LeaveType)
	if _, err := s.balances.GetOrCreate(ctx, req.EmployeeID, req.Year, s.defaults); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave balance")
	}
	applied, err := s.balances.SetTotal(ctx, req.EmployeeID, req.Year, leaveType, req.Total)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set leave balance total")
	}
	if !applied {
		return nil, appErrors.Clone(appErrors.ErrValidation, "total cannot be lower than already-used days")
	}
	s.logger.Info("leave_total_adjusted",
		zap.String("employee_id", req.EmployeeID),
		zap.String("leave_type", req.LeaveType),
		zap.Float64("total", req.Total),
		zap.String("adjusted_by", claims.EmployeeID))
	return s.balances.GetOrCreate(ctx, req.EmployeeID, req.Year, s.defaults)
}

func (s *LeaveService) ensureReviewScope(ctx context.Context, claims *models.JWTClaims, app *models.LeaveApplication) error {
	switch claims.Role {
	case models.RoleHR, models.RoleAdmin:
		return nil
	case models.RoleManager:
	default:
		return appErrors.ErrForbidden
	}

	// Membership is re-resolved at review time, never cached.
	dept, err := s.departments.FindManagedBy(ctx, claims.EmployeeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve managed department")
	}
	if dept == nil {
		return appErrors.Clone(appErrors.ErrForbidden, "no managed department")
	}
	applicant, err := s.employees.FindByID(ctx, app.EmployeeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve applicant")
	}
	if applicant == nil || !applicant.Active {
		return appErrors.Clone(appErrors.ErrNotFound, "applicant not found or inactive")
	}
	if applicant.DepartmentID == nil || *applicant.DepartmentID != dept.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "applicant is outside the managed department")
	}
	return nil
}

func (s *LeaveService) remainingBalance(ctx context.Context, employeeID string, year int, leaveType models.LeaveType) (float64, error) {
	balances, err := s.balances.GetOrCreate(ctx, employeeID, year, s.defaults)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave balance")
	}
	for _, balance := range balances {
		if balance.LeaveType == leaveType {
			return balance.Remaining, nil
		}
	}
	return 0, nil
}

func (s *LeaveService) parseDay(raw string) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", raw, s.calendar.Location())
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return s.calendar.DayOf(parsed), nil
}
