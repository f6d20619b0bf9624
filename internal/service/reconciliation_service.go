package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/workstream-hq/hr-attend-api/internal/dto"
	"github.com/workstream-hq/hr-attend-api/internal/models"
	"github.com/workstream-hq/hr-attend-api/internal/repository"
	appErrors "github.com/workstream-hq/hr-attend-api/pkg/errors"
	"github.com/workstream-hq/hr-attend-api/pkg/orgtime"
)

type reconAttendanceStore interface {
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*models.AttendanceRecord, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	InsertIfAbsent(ctx context.Context, record *models.AttendanceRecord) (repository.InsertOutcome, error)
	ListOpenByDate(ctx context.Context, date time.Time) ([]models.AttendanceRecord, error)
	ListEmployeeIDsWithRecord(ctx context.Context, date time.Time) ([]string, error)
	BulkInsertMissing(ctx context.Context, records []models.AttendanceRecord) (created, skipped int, err error)
}

type reconLeaveStore interface {
	ListApprovedCovering(ctx context.Context, date time.Time) ([]models.LeaveApplication, error)
}

type activeRoster interface {
	ListActiveIDs(ctx context.Context) ([]string, error)
}

type holidayRegister interface {
	FindActiveByDate(ctx context.Context, date time.Time) (*models.Holiday, error)
}

type runLocker interface {
	Acquire(ctx context.Context, name string) (bool, error)
	Release(ctx context.Context, name string) error
}

type reconRecorder interface {
	ObserveReconciliation(summary *dto.ReconciliationSummary, err error)
}

// ReconciliationConfig tunes the end-of-day pipeline.
type ReconciliationConfig struct {
	AutoCheckoutAt string
	HalfDayHours   float64
}

// ReconciliationService closes out one organizational day: it stamps
// checkouts on open records, re-applies approved leave, and fills the
// remaining gaps with holiday or absent markers. Every job is idempotent so
// a repeated run only skips.
type ReconciliationService struct {
	attendance reconAttendanceStore
	leaves     reconLeaveStore
	employees  activeRoster
	holidays   holidayRegister
	lock       runLocker
	metrics    reconRecorder
	calendar   *orgtime.Calendar
	cfg        ReconciliationConfig
	logger     *zap.Logger
	now        func() time.Time
}

func NewReconciliationService(attendance reconAttendanceStore, leaves reconLeaveStore, employees activeRoster, holidays holidayRegister, lock runLocker, metrics reconRecorder, calendar *orgtime.Calendar, cfg ReconciliationConfig, logger *zap.Logger) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AutoCheckoutAt == "" {
		cfg.AutoCheckoutAt = "18:30"
	}
	if cfg.HalfDayHours <= 0 {
		cfg.HalfDayHours = 4.0
	}
	return &ReconciliationService{
		attendance: attendance,
		leaves:     leaves,
		employees:  employees,
		holidays:   holidays,
		lock:       lock,
		metrics:    metrics,
		calendar:   calendar,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// RunForDate executes the full pipeline for one organizational day. At most
// one run per day may execute across replicas; a second concurrent caller
// gets ErrRunInProgress.
func (s *ReconciliationService) RunForDate(ctx context.Context, date time.Time) (*dto.ReconciliationSummary, error) {
	day := s.calendar.DayOf(date)
	dayKey := day.Format("2006-01-02")
	lockName := "reconciliation:run:" + dayKey

	acquired, err := s.lock.Acquire(ctx, lockName)
	if err != nil {
		wrapped := appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire reconciliation lock")
		s.observe(nil, wrapped)
		return nil, wrapped
	}
	if !acquired {
		return nil, appErrors.Clone(appErrors.ErrRunInProgress, "a reconciliation run for "+dayKey+" is already executing")
	}
	defer func() {
		if err := s.lock.Release(ctx, lockName); err != nil {
			s.logger.Warn("reconciliation lock release failed", zap.String("date", dayKey), zap.Error(err))
		}
	}()

	started := s.now().UTC()
	summary := &dto.ReconciliationSummary{
		Date:      dayKey,
		Sunday:    orgtime.IsSunday(day),
		StartedAt: started,
	}
	s.logger.Info("reconciliation_started", zap.String("date", dayKey))

	summary.Jobs = append(summary.Jobs, s.autoCheckout(ctx, day))
	summary.Jobs = append(summary.Jobs, s.propagateLeave(ctx, day))

	holiday, err := s.holidays.FindActiveByDate(ctx, day)
	if err != nil {
		s.logger.Error("holiday lookup failed", zap.String("date", dayKey), zap.Error(err))
	}

	switch {
	case holiday != nil:
		summary.Holiday = &holiday.Name
		summary.Jobs = append(summary.Jobs, s.markHoliday(ctx, day, holiday))
	case summary.Sunday:
		// Sundays are non-working; nobody is marked absent.
	default:
		summary.Jobs = append(summary.Jobs, s.markAbsent(ctx, day))
	}

	summary.DurationMS = s.now().UTC().Sub(started).Milliseconds()
	s.observe(summary, nil)
	s.logger.Info("reconciliation_finished",
		zap.String("date", dayKey),
		zap.Int64("duration_ms", summary.DurationMS),
		zap.Int("jobs", len(summary.Jobs)))
	return summary, nil
}

// autoCheckoutNote marks ledger rows closed by the scheduler rather than by
// the employee.
const autoCheckoutNote = "auto checkout by scheduler"

// autoCheckout closes records left open at end of day and tags them so a
// system-closed day stays distinguishable from a live checkout. The stamped
// checkout never precedes the check-in; a short resulting day is downgraded.
func (s *ReconciliationService) autoCheckout(ctx context.Context, day time.Time) dto.JobResult {
	result := dto.JobResult{Name: dto.JobAutoCheckout}

	open, err := s.attendance.ListOpenByDate(ctx, day)
	if err != nil {
		s.logger.Error("auto checkout listing failed", zap.Error(err))
		result.Failed++
		return result
	}
	checkout, err := s.calendar.ClockOn(day, s.cfg.AutoCheckoutAt)
	if err != nil {
		s.logger.Error("auto checkout clock invalid",
			zap.String("clock", s.cfg.AutoCheckoutAt), zap.Error(err))
		result.Failed++
		return result
	}

	for i := range open {
		record := open[i]
		if record.CheckIn == nil {
			result.Skipped++
			continue
		}
		stamp := checkout.UTC()
		if stamp.Before(record.CheckIn.UTC()) {
			stamp = record.CheckIn.UTC()
		}
		record.CheckOut = &stamp
		record.WorkHours = workedHours(*record.CheckIn, stamp)
		record.Status = downgradeShortDay(record.Status, record.WorkHours, s.cfg.HalfDayHours)
		note := autoCheckoutNote
		record.Note = &note
		if _, err := s.attendance.Upsert(ctx, &record); err != nil {
			s.logger.Error("auto checkout failed",
				zap.String("employee_id", record.EmployeeID), zap.Error(err))
			result.Failed++
			continue
		}
		result.Succeeded++
	}
	return result
}

// propagateLeave re-applies every approved leave covering the day, catching
// applications approved after an earlier propagation pass or whose per-day
// writes failed.
func (s *ReconciliationService) propagateLeave(ctx context.Context, day time.Time) dto.JobResult {
	result := dto.JobResult{Name: dto.JobLeavePropagation}

	if orgtime.IsSunday(day) {
		return result
	}
	approved, err := s.leaves.ListApprovedCovering(ctx, day)
	if err != nil {
		s.logger.Error("approved leave listing failed", zap.Error(err))
		result.Failed++
		return result
	}

	for _, app := range approved {
		record := &models.AttendanceRecord{
			EmployeeID: app.EmployeeID,
			Date:       day,
			Status:     models.AttendanceStatusOnLeave,
		}
		outcome, err := s.attendance.InsertIfAbsent(ctx, record)
		if err != nil {
			s.logger.Error("leave propagation insert failed",
				zap.String("application_id", app.ID), zap.Error(err))
			result.Failed++
			continue
		}
		if outcome == repository.OutcomeCreated {
			result.Succeeded++
			continue
		}
		existing, err := s.attendance.FindByEmployeeAndDate(ctx, app.EmployeeID, day)
		if err != nil {
			result.Failed++
			continue
		}
		if existing == nil || existing.CheckIn != nil || existing.Status == models.AttendanceStatusOnLeave {
			result.Skipped++
			continue
		}
		existing.Status = models.AttendanceStatusOnLeave
		existing.CheckIn = nil
		existing.CheckOut = nil
		existing.WorkHours = 0
		if _, err := s.attendance.Upsert(ctx, existing); err != nil {
			s.logger.Error("leave propagation overwrite failed",
				zap.String("application_id", app.ID), zap.Error(err))
			result.Failed++
			continue
		}
		result.Succeeded++
	}
	return result
}

// markHoliday fills the day with holiday rows for every active employee.
// Insert-only, so live check-ins and on-leave rows survive.
func (s *ReconciliationService) markHoliday(ctx context.Context, day time.Time, holiday *models.Holiday) dto.JobResult {
	result := dto.JobResult{Name: dto.JobMarkHoliday}

	active, err := s.employees.ListActiveIDs(ctx)
	if err != nil {
		s.logger.Error("active roster listing failed", zap.Error(err))
		result.Failed++
		return result
	}
	note := holiday.Name
	records := make([]models.AttendanceRecord, 0, len(active))
	for _, employeeID := range active {
		records = append(records, models.AttendanceRecord{
			EmployeeID: employeeID,
			Date:       day,
			Status:     models.AttendanceStatusHoliday,
			Note:       &note,
		})
	}
	created, skipped, err := s.attendance.BulkInsertMissing(ctx, records)
	if err != nil {
		s.logger.Error("holiday marking failed", zap.String("holiday", holiday.Name), zap.Error(err))
		result.Failed++
	}
	result.Succeeded += created
	result.Skipped += skipped
	return result
}

// markAbsent marks every active employee without any record for the day as
// absent. Runs last so earlier jobs have already claimed their rows.
func (s *ReconciliationService) markAbsent(ctx context.Context, day time.Time) dto.JobResult {
	result := dto.JobResult{Name: dto.JobMarkAbsent}

	active, err := s.employees.ListActiveIDs(ctx)
	if err != nil {
		s.logger.Error("active roster listing failed", zap.Error(err))
		result.Failed++
		return result
	}
	recorded, err := s.attendance.ListEmployeeIDsWithRecord(ctx, day)
	if err != nil {
		s.logger.Error("recorded roster listing failed", zap.Error(err))
		result.Failed++
		return result
	}
	seen := make(map[string]struct{}, len(recorded))
	for _, id := range recorded {
		seen[id] = struct{}{}
	}

	records := make([]models.AttendanceRecord, 0, len(active))
	for _, employeeID := range active {
		if _, ok := seen[employeeID]; ok {
			result.Skipped++
			continue
		}
		records = append(records, models.AttendanceRecord{
			EmployeeID: employeeID,
			Date:       day,
			Status:     models.AttendanceStatusAbsent,
		})
	}
	created, skipped, err := s.attendance.BulkInsertMissing(ctx, records)
	if err != nil {
		s.logger.Error("absent marking failed", zap.Error(err))
		result.Failed++
	}
	result.Succeeded += created
	result.Skipped += skipped
	return result
}

func (s *ReconciliationService) observe(summary *dto.ReconciliationSummary, err error) {
	if s.metrics != nil {
		s.metrics.ObserveReconciliation(summary, err)
	}
}
