package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/workstream-hq/hr-attend-api/internal/models"
	appErrors "github.com/workstream-hq/hr-attend-api/pkg/errors"
	"github.com/workstream-hq/hr-attend-api/pkg/orgtime"
)

type fakeAttendanceStore struct {
	records map[string]*models.AttendanceRecord
	nextID  int
}

func newFakeAttendanceStore() *fakeAttendanceStore {
	return &fakeAttendanceStore{records: map[string]*models.AttendanceRecord{}}
}

func attendanceKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (f *fakeAttendanceStore) FindByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*models.AttendanceRecord, error) {
	if rec, ok := f.records[attendanceKey(employeeID, date)]; ok {
		copied := *rec
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeAttendanceStore) Upsert(_ context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	if record.ID == "" {
		f.nextID++
		record.ID = fmt.Sprintf("att-%d", f.nextID)
	}
	copied := *record
	f.records[attendanceKey(record.EmployeeID, record.Date)] = &copied
	return record, nil
}

func (f *fakeAttendanceStore) ListRange(_ context.Context, employeeID string, from, to time.Time) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	orgtime.EachDay(from, to, func(day time.Time) {
		if rec, ok := f.records[attendanceKey(employeeID, day)]; ok {
			out = append(out, *rec)
		}
	})
	return out, nil
}

type fakeEmployeeDirectory struct {
	employees map[string]*models.Employee
}

func (f *fakeEmployeeDirectory) FindByID(_ context.Context, id string) (*models.Employee, error) {
	if emp, ok := f.employees[id]; ok {
		return emp, nil
	}
	return nil, nil
}

func activeDirectory(ids ...string) *fakeEmployeeDirectory {
	dir := &fakeEmployeeDirectory{employees: map[string]*models.Employee{}}
	for _, id := range ids {
		dir.employees[id] = &models.Employee{ID: id, Active: true}
	}
	return dir
}

func newAttendanceServiceForTest(t *testing.T, store *fakeAttendanceStore, at time.Time) *AttendanceService {
	t.Helper()
	calendar, err := orgtime.NewCalendar("Asia/Kolkata")
	require.NoError(t, err)
	svc := NewAttendanceService(store, activeDirectory("emp-1", "emp-2"), nil, calendar, AttendanceConfig{
		LateCutoff:   "09:30",
		HalfDayHours: 4,
	}, nil, zap.NewNop())
	svc.now = func() time.Time { return at }
	return svc
}

func ist(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	require.NoError(t, err)
	return parsed
}

func claimsFor(employeeID string, role models.UserRole) *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-" + employeeID, EmployeeID: employeeID, Role: role}
}

func TestCheckInBeforeCutoffIsPresent(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 09:15"))

	record, err := svc.CheckIn(context.Background(), claimsFor("emp-1", models.RoleEmployee))
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)
	require.NotNil(t, record.CheckIn)
}

func TestCheckInAtCutoffIsLate(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 09:45"))

	record, err := svc.CheckIn(context.Background(), claimsFor("emp-1", models.RoleEmployee))
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusLate, record.Status)
}

func TestCheckInTwiceConflicts(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 09:00"))

	_, err := svc.CheckIn(context.Background(), claimsFor("emp-1", models.RoleEmployee))
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), claimsFor("emp-1", models.RoleEmployee))
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
}

func TestCheckInOverwritesBatchCreatedRow(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 09:00"))

	day := svc.calendar.DayOf(svc.now())
	seeded, err := store.Upsert(context.Background(), &models.AttendanceRecord{
		EmployeeID: "emp-1",
		Date:       day,
		Status:     models.AttendanceStatusAbsent,
	})
	require.NoError(t, err)

	record, err := svc.CheckIn(context.Background(), claimsFor("emp-1", models.RoleEmployee))
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, record.ID)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)
}

func TestCheckInInactiveEmployeeForbidden(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 09:00"))
	svc.employees = &fakeEmployeeDirectory{employees: map[string]*models.Employee{
		"emp-1": {ID: "emp-1", Active: false},
	}}

	_, err := svc.CheckIn(context.Background(), claimsFor("emp-1", models.RoleEmployee))
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

func TestCheckOutDerivesHoursAndDowngradesShortDay(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 09:00"))

	_, err := svc.CheckIn(context.Background(), claimsFor("emp-1", models.RoleEmployee))
	require.NoError(t, err)

	svc.now = func() time.Time { return ist(t, "2025-06-03 11:30") }
	record, err := svc.CheckOut(context.Background(), claimsFor("emp-1", models.RoleEmployee))
	require.NoError(t, err)
	assert.InDelta(t, 2.5, record.WorkHours, 0.001)
	assert.Equal(t, models.AttendanceStatusHalfDay, record.Status)
}

func TestCheckOutFullDayKeepsStatus(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 09:00"))

	_, err := svc.CheckIn(context.Background(), claimsFor("emp-1", models.RoleEmployee))
	require.NoError(t, err)

	svc.now = func() time.Time { return ist(t, "2025-06-03 18:00") }
	record, err := svc.CheckOut(context.Background(), claimsFor("emp-1", models.RoleEmployee))
	require.NoError(t, err)
	assert.InDelta(t, 9, record.WorkHours, 0.001)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)
}

func TestCheckOutWithoutCheckInConflicts(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 18:00"))

	_, err := svc.CheckOut(context.Background(), claimsFor("emp-1", models.RoleEmployee))
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
}

func TestMonthlyForbiddenForOtherEmployee(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 10:00"))

	_, _, err := svc.Monthly(context.Background(), claimsFor("emp-1", models.RoleEmployee), "emp-2", 6, 2025)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

type fakeSummaryCache struct {
	entries map[string]models.MonthlyAttendance
}

func (f *fakeSummaryCache) Get(_ context.Context, key string, dest interface{}) error {
	entry, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if typed, ok := dest.(*models.MonthlyAttendance); ok {
		*typed = entry
		return nil
	}
	return appErrors.ErrCacheMiss
}

func (f *fakeSummaryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if typed, ok := value.(*models.MonthlyAttendance); ok {
		f.entries[key] = *typed
	}
	return nil
}

func (f *fakeSummaryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func TestMonthlyReportsCacheHitOnSecondRead(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 10:00"))
	svc.cache = &fakeSummaryCache{entries: map[string]models.MonthlyAttendance{}}

	first, hit, err := svc.Monthly(context.Background(), claimsFor("emp-1", models.RoleEmployee), "", 6, 2025)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := svc.Monthly(context.Background(), claimsFor("emp-1", models.RoleEmployee), "", 6, 2025)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestManualCorrectRejectsFutureDate(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 10:00"))

	_, err := svc.ManualCorrect(context.Background(), claimsFor("hr-1", models.RoleHR), ManualCorrectionRequest{
		EmployeeID: "emp-1",
		Date:       "2025-06-04",
		Status:     "present",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestManualCorrectRequiresPrivilegedRole(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 10:00"))

	_, err := svc.ManualCorrect(context.Background(), claimsFor("emp-2", models.RoleEmployee), ManualCorrectionRequest{
		EmployeeID: "emp-1",
		Date:       "2025-06-02",
		Status:     "present",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

func TestManualCorrectComputesHoursAndMarksAuthor(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 10:00"))

	checkIn := "09:00"
	checkOut := "17:00"
	record, err := svc.ManualCorrect(context.Background(), claimsFor("hr-1", models.RoleHR), ManualCorrectionRequest{
		EmployeeID: "emp-1",
		Date:       "2025-06-02",
		Status:     "present",
		CheckIn:    &checkIn,
		CheckOut:   &checkOut,
	})
	require.NoError(t, err)
	assert.True(t, record.IsManual)
	require.NotNil(t, record.MarkedBy)
	assert.Equal(t, "hr-1", *record.MarkedBy)
	assert.InDelta(t, 8, record.WorkHours, 0.001)
}

func TestManualCorrectRejectsInvertedClocks(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := newAttendanceServiceForTest(t, store, ist(t, "2025-06-03 10:00"))

	checkIn := "17:00"
	checkOut := "09:00"
	_, err := svc.ManualCorrect(context.Background(), claimsFor("hr-1", models.RoleHR), ManualCorrectionRequest{
		EmployeeID: "emp-1",
		Date:       "2025-06-02",
		Status:     "present",
		CheckIn:    &checkIn,
		CheckOut:   &checkOut,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestSummarizeCountsAndPercent(t *testing.T) {
	from := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)  // Monday
	to := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)    // Sunday
	records := []models.AttendanceRecord{
		{Status: models.AttendanceStatusPresent, WorkHours: 8},
		{Status: models.AttendanceStatusLate, WorkHours: 7},
		{Status: models.AttendanceStatusHalfDay, WorkHours: 3},
		{Status: models.AttendanceStatusAbsent},
		{Status: models.AttendanceStatusOnLeave},
		{Status: models.AttendanceStatusHoliday},
	}

	summary := Summarize(records, from, to)
	assert.Equal(t, 1, summary.Present)
	assert.Equal(t, 1, summary.Late)
	assert.Equal(t, 1, summary.HalfDay)
	assert.Equal(t, 1, summary.Absent)
	assert.Equal(t, 1, summary.OnLeave)
	assert.Equal(t, 1, summary.Holiday)
	assert.InDelta(t, 6, summary.WorkingDays, 0.001)
	assert.InDelta(t, 2.5, summary.AttendedDays, 0.001)
	assert.InDelta(t, 18, summary.TotalHours, 0.001)
	assert.InDelta(t, 2.5/6*100, summary.Percent, 0.001)
}
