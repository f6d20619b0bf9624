package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/workstream-hq/hr-attend-api/internal/models"
	appErrors "github.com/workstream-hq/hr-attend-api/pkg/errors"
	"github.com/workstream-hq/hr-attend-api/pkg/export"
	"github.com/workstream-hq/hr-attend-api/pkg/orgtime"
)

type attendanceStore interface {
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*models.AttendanceRecord, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]models.AttendanceRecord, error)
}

type employeeDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// AttendanceConfig carries the derivation thresholds the ledger applies.
type AttendanceConfig struct {
	LateCutoff   string
	HalfDayHours float64
	CacheTTL     time.Duration
}

// AttendanceService coordinates the attendance ledger: live check-in/out,
// summaries, and privileged manual corrections.
type AttendanceService struct {
	repo      attendanceStore
	employees employeeDirectory
	cache     summaryCache
	calendar  *orgtime.Calendar
	cfg       AttendanceConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceStore, employees employeeDirectory, cache summaryCache, calendar *orgtime.Calendar, cfg AttendanceConfig, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LateCutoff == "" {
		cfg.LateCutoff = "09:30"
	}
	if cfg.HalfDayHours <= 0 {
		cfg.HalfDayHours = 4
	}
	svc := &AttendanceService{
		repo:      repo,
		employees: employees,
		cache:     cache,
		calendar:  calendar,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	return svc
}

// CheckIn records the calling employee's arrival for today. A batch-created
// row (absent or on-leave) is overwritten in place; a second check-in on the
// same day conflicts.
func (s *AttendanceService) CheckIn(ctx context.Context, claims *models.JWTClaims) (*models.AttendanceRecord, error) {
	if claims == nil || claims.EmployeeID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.ensureActive(ctx, claims.EmployeeID); err != nil {
		return nil, err
	}

	now := s.now()
	today := s.calendar.DayOf(now)

	existing, err := s.repo.FindByEmployeeAndDate(ctx, claims.EmployeeID, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's attendance")
	}
	if existing != nil && existing.CheckIn != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already checked in today")
	}

	status, err := s.arrivalStatus(today, now)
	if err != nil {
		return nil, err
	}

	record := &models.AttendanceRecord{
		EmployeeID: claims.EmployeeID,
		Date:       today,
		CheckIn:    &now,
		Status:     status,
	}
	if existing != nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}

	stored, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record check-in")
	}
	s.invalidateMonth(ctx, claims.EmployeeID, today)
	s.logger.Info("check_in",
		zap.String("employee_id", claims.EmployeeID),
		zap.String("status", string(stored.Status)))
	return stored, nil
}

// CheckOut closes today's session and derives worked hours. Sessions shorter
// than the half-day floor are downgraded.
func (s *AttendanceService) CheckOut(ctx context.Context, claims *models.JWTClaims) (*models.AttendanceRecord, error) {
	if claims == nil || claims.EmployeeID == "" {
		return nil, appErrors.ErrUnauthorized
	}

	now := s.now()
	today := s.calendar.DayOf(now)

	record, err := s.repo.FindByEmployeeAndDate(ctx, claims.EmployeeID, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's attendance")
	}
	if record == nil || record.CheckIn == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "no check-in recorded today")
	}
	if record.CheckOut != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already checked out today")
	}

	record.CheckOut = &now
	record.WorkHours = workedHours(*record.CheckIn, now)
	record.Status = downgradeShortDay(record.Status, record.WorkHours, s.cfg.HalfDayHours)

	stored, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record check-out")
	}
	s.invalidateMonth(ctx, claims.EmployeeID, today)
	s.logger.Info("check_out",
		zap.String("employee_id", claims.EmployeeID),
		zap.Float64("work_hours", stored.WorkHours),
		zap.String("status", string(stored.Status)))
	return stored, nil
}

// Today returns the caller's record for the current day, or nil when no
// writer has touched it yet.
func (s *AttendanceService) Today(ctx context.Context, claims *models.JWTClaims) (*models.AttendanceRecord, error) {
	if claims == nil || claims.EmployeeID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	record, err := s.repo.FindByEmployeeAndDate(ctx, claims.EmployeeID, s.calendar.DayOf(s.now()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's attendance")
	}
	return record, nil
}

// Monthly returns one employee's records for a month plus the derived
// summary, and whether the result came from the summary cache. Viewing
// someone else's month requires a privileged role.
func (s *AttendanceService) Monthly(ctx context.Context, claims *models.JWTClaims, employeeID string, month, year int) (*models.MonthlyAttendance, bool, error) {
	if claims == nil || claims.EmployeeID == "" {
		return nil, false, appErrors.ErrUnauthorized
	}
	if employeeID == "" {
		employeeID = claims.EmployeeID
	}
	if employeeID != claims.EmployeeID && !claims.Role.Privileged() {
		return nil, false, appErrors.ErrForbidden
	}
	if month < 1 || month > 12 || year < 2000 || year > 2200 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid month or year")
	}

	key := monthKey(employeeID, year, month)
	if s.cache != nil {
		var cached models.MonthlyAttendance
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, true, nil
		}
	}

	from, to := orgtime.MonthBounds(year, time.Month(month))
	records, err := s.repo.ListRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}

	result := &models.MonthlyAttendance{
		EmployeeID: employeeID,
		Month:      month,
		Year:       year,
		Records:    records,
		Summary:    Summarize(records, from, to),
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("summary cache set failed", zap.Error(err))
		}
	}
	return result, false, nil
}

// ManualCorrectionRequest is the privileged upsert payload.
type ManualCorrectionRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	Date       string  `json:"date" validate:"required"`
	Status     string  `json:"status" validate:"required,attendance_status"`
	CheckIn    *string `json:"check_in"`
	CheckOut   *string `json:"check_out"`
	Note       *string `json:"note"`
}

// ManualCorrect upserts a past-or-today record with an explicit status.
// Absent-like statuses force check times to null and hours to zero; worked
// statuses recompute hours when both times are given.
func (s *AttendanceService) ManualCorrect(ctx context.Context, claims *models.JWTClaims, req ManualCorrectionRequest) (*models.AttendanceRecord, error) {
	if claims == nil || claims.EmployeeID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleHR && claims.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid correction payload")
	}

	date, err := s.parseDay(req.Date)
	if err != nil {
		return nil, err
	}
	today := s.calendar.DayOf(s.now())
	if date.After(today) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot correct attendance for a future date")
	}
	if err := s.ensureExists(ctx, req.EmployeeID); err != nil {
		return nil, err
	}

	status := models.AttendanceStatus(req.Status)
	record := &models.AttendanceRecord{
		EmployeeID: req.EmployeeID,
		Date:       date,
		Status:     status,
		Note:       req.Note,
		MarkedBy:   &claims.EmployeeID,
		IsManual:   true,
	}

	if existing, err := s.repo.FindByEmployeeAndDate(ctx, req.EmployeeID, date); err == nil && existing != nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}

	if status.Worked() {
		checkIn, err := s.parseClockOn(date, req.CheckIn)
		if err != nil {
			return nil, err
		}
		checkOut, err := s.parseClockOn(date, req.CheckOut)
		if err != nil {
			return nil, err
		}
		record.CheckIn = checkIn
		record.CheckOut = checkOut
		if checkIn != nil && checkOut != nil {
			if checkOut.Before(*checkIn) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "check-out precedes check-in")
			}
			record.WorkHours = workedHours(*checkIn, *checkOut)
		}
	}

	stored, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply correction")
	}
	s.invalidateMonth(ctx, req.EmployeeID, date)
	s.logger.Info("manual_correction",
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", date.Format("2006-01-02")),
		zap.String("status", string(status)),
		zap.String("marked_by", claims.EmployeeID))
	return stored, nil
}

// ExportMonthly renders a month's records as CSV or PDF.
func (s *AttendanceService) ExportMonthly(ctx context.Context, claims *models.JWTClaims, employeeID string, month, year int, format string) ([]byte, string, string, error) {
	if claims == nil || !claims.Role.Privileged() {
		return nil, "", "", appErrors.ErrForbidden
	}
	monthly, _, err := s.Monthly(ctx, claims, employeeID, month, year)
	if err != nil {
		return nil, "", "", err
	}

	data := export.Dataset{
		Headers: []string{"Date", "Status", "Check In", "Check Out", "Hours", "Note"},
	}
	for _, rec := range monthly.Records {
		row := map[string]string{
			"Date":   rec.Date.Format("2006-01-02"),
			"Status": string(rec.Status),
			"Hours":  fmt.Sprintf("%.2f", rec.WorkHours),
		}
		if rec.CheckIn != nil {
			row["Check In"] = rec.CheckIn.In(s.calendar.Location()).Format("15:04")
		}
		if rec.CheckOut != nil {
			row["Check Out"] = rec.CheckOut.In(s.calendar.Location()).Format("15:04")
		}
		if rec.Note != nil {
			row["Note"] = *rec.Note
		}
		data.Rows = append(data.Rows, row)
	}

	name := fmt.Sprintf("attendance_%s_%04d-%02d", monthly.EmployeeID, year, month)
	switch format {
	case "pdf":
		payload, err := export.NewPDFExporter().Render(data, fmt.Sprintf("Attendance %04d-%02d", year, month))
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", name + ".pdf", nil
	case "", "csv":
		payload, err := export.NewCSVExporter().Render(data)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", name + ".csv", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

// Summarize aggregates ledger rows over [from, to]. Attended days count
// present and late as full days and half-day as 0.5; the percentage is taken
// over non-Sunday working days in the period.
func Summarize(records []models.AttendanceRecord, from, to time.Time) models.AttendanceSummary {
	summary := models.AttendanceSummary{
		WorkingDays: orgtime.CountWorkingDays(from, to),
	}
	for _, rec := range records {
		switch rec.Status {
		case models.AttendanceStatusPresent:
			summary.Present++
			summary.AttendedDays++
		case models.AttendanceStatusLate:
			summary.Late++
			summary.AttendedDays++
		case models.AttendanceStatusHalfDay:
			summary.HalfDay++
			summary.AttendedDays += 0.5
		case models.AttendanceStatusAbsent:
			summary.Absent++
		case models.AttendanceStatusOnLeave:
			summary.OnLeave++
		case models.AttendanceStatusHoliday:
			summary.Holiday++
		}
		summary.TotalRecords++
		summary.TotalHours += rec.WorkHours
	}
	if summary.WorkingDays > 0 {
		summary.Percent = summary.AttendedDays / summary.WorkingDays * 100
	}
	return summary
}

func (s *AttendanceService) arrivalStatus(day time.Time, now time.Time) (models.AttendanceStatus, error) {
	cutoff, err := s.calendar.ClockOn(day, s.cfg.LateCutoff)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid late cutoff configuration")
	}
	if now.Before(cutoff) {
		return models.AttendanceStatusPresent, nil
	}
	return models.AttendanceStatusLate, nil
}

func (s *AttendanceService) ensureActive(ctx context.Context, employeeID string) error {
	emp, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve employee")
	}
	if emp == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	if !emp.Active {
		return appErrors.Clone(appErrors.ErrForbidden, "employee is inactive")
	}
	return nil
}

func (s *AttendanceService) ensureExists(ctx context.Context, employeeID string) error {
	emp, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve employee")
	}
	if emp == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	return nil
}

func (s *AttendanceService) parseDay(raw string) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", raw, s.calendar.Location())
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return s.calendar.DayOf(parsed), nil
}

func (s *AttendanceService) parseClockOn(day time.Time, clock *string) (*time.Time, error) {
	if clock == nil || *clock == "" {
		return nil, nil
	}
	at, err := s.calendar.ClockOn(day, *clock)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid time, expected HH:MM")
	}
	return &at, nil
}

func (s *AttendanceService) invalidateMonth(ctx context.Context, employeeID string, day time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, monthKey(employeeID, day.Year(), int(day.Month()))); err != nil {
		s.logger.Warn("summary cache invalidation failed", zap.Error(err))
	}
}

func monthKey(employeeID string, year, month int) string {
	return fmt.Sprintf("attendance:summary:%s:%04d-%02d", employeeID, year, month)
}

func workedHours(checkIn, checkOut time.Time) float64 {
	hours := checkOut.Sub(checkIn).Hours()
	if hours < 0 {
		return 0
	}
	return hours
}

func downgradeShortDay(status models.AttendanceStatus, hours, halfDayHours float64) models.AttendanceStatus {
	if hours < halfDayHours && (status == models.AttendanceStatusPresent || status == models.AttendanceStatusLate) {
		return models.AttendanceStatusHalfDay
	}
	return status
}
