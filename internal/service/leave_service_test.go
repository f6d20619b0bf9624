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
	"github.com/workstream-hq/hr-attend-api/internal/repository"
	appErrors "github.com/workstream-hq/hr-attend-api/pkg/errors"
	"github.com/workstream-hq/hr-attend-api/pkg/orgtime"
)

type fakeLeaveStore struct {
	apps    map[string]*models.LeaveApplication
	overlap bool
	nextID  int
}

func newFakeLeaveStore() *fakeLeaveStore {
	return &fakeLeaveStore{apps: map[string]*models.LeaveApplication{}}
}

func (f *fakeLeaveStore) Create(_ context.Context, app *models.LeaveApplication) (*models.LeaveApplication, error) {
	f.nextID++
	app.ID = fmt.Sprintf("leave-%d", f.nextID)
	copied := *app
	f.apps[app.ID] = &copied
	return app, nil
}

func (f *fakeLeaveStore) FindByID(_ context.Context, id string) (*models.LeaveApplication, error) {
	if app, ok := f.apps[id]; ok {
		copied := *app
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeLeaveStore) HasOverlap(_ context.Context, _ string, _, _ time.Time) (bool, error) {
	return f.overlap, nil
}

func (f *fakeLeaveStore) TransitionStatus(_ context.Context, id string, from, to models.LeaveStatus, reviewedBy *string, rejectionReason *string) (bool, error) {
	app, ok := f.apps[id]
	if !ok || app.Status != from {
		return false, nil
	}
	app.Status = to
	if reviewedBy != nil {
		app.ReviewedBy = reviewedBy
	}
	if rejectionReason != nil {
		app.RejectionReason = rejectionReason
	}
	return true, nil
}

func (f *fakeLeaveStore) SetAttendanceMarked(_ context.Context, id string, marked bool) error {
	if app, ok := f.apps[id]; ok {
		app.AttendanceMarked = marked
	}
	return nil
}

func (f *fakeLeaveStore) List(_ context.Context, filter models.LeaveFilter) ([]models.LeaveApplication, int, error) {
	var out []models.LeaveApplication
	for _, app := range f.apps {
		if filter.EmployeeID != "" && app.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != nil && app.Status != *filter.Status {
			continue
		}
		out = append(out, *app)
	}
	return out, len(out), nil
}

type fakeBalanceStore struct {
	balances    map[string]*models.LeaveBalance
	adjustments []float64
}

func newFakeBalanceStore() *fakeBalanceStore {
	return &fakeBalanceStore{balances: map[string]*models.LeaveBalance{}}
}

func balanceKey(employeeID string, year int, leaveType models.LeaveType) string {
	return fmt.Sprintf("%s|%d|%s", employeeID, year, leaveType)
}

func (f *fakeBalanceStore) GetOrCreate(_ context.Context, employeeID string, year int, defaults map[models.LeaveType]float64) ([]models.LeaveBalance, error) {
	for _, leaveType := range models.LeaveTypes {
		key := balanceKey(employeeID, year, leaveType)
		if _, ok := f.balances[key]; !ok {
			total := defaults[leaveType]
			f.balances[key] = &models.LeaveBalance{
				EmployeeID: employeeID,
				Year:       year,
				LeaveType:  leaveType,
				Total:      total,
				Remaining:  total,
			}
		}
	}
	var out []models.LeaveBalance
	for _, leaveType := range models.LeaveTypes {
		out = append(out, *f.balances[balanceKey(employeeID, year, leaveType)])
	}
	return out, nil
}

func (f *fakeBalanceStore) Find(_ context.Context, employeeID string, year int, leaveType models.LeaveType) (*models.LeaveBalance, error) {
	if balance, ok := f.balances[balanceKey(employeeID, year, leaveType)]; ok {
		copied := *balance
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeBalanceStore) Adjust(_ context.Context, employeeID string, year int, leaveType models.LeaveType, usedDelta float64) (bool, error) {
	balance, ok := f.balances[balanceKey(employeeID, year, leaveType)]
	if !ok {
		return false, nil
	}
	if usedDelta > 0 && leaveType.Paid() && balance.Remaining < usedDelta {
		return false, nil
	}
	balance.Used += usedDelta
	balance.Remaining -= usedDelta
	f.adjustments = append(f.adjustments, usedDelta)
	return true, nil
}

func (f *fakeBalanceStore) SetTotal(_ context.Context, employeeID string, year int, leaveType models.LeaveType, newTotal float64) (bool, error) {
	balance, ok := f.balances[balanceKey(employeeID, year, leaveType)]
	if !ok {
		return false, nil
	}
	if balance.Used > newTotal {
		return false, nil
	}
	balance.Total = newTotal
	balance.Remaining = newTotal - balance.Used
	return true, nil
}

type fakeLedger struct {
	fakeAttendanceStore
	reverted int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{fakeAttendanceStore: fakeAttendanceStore{records: map[string]*models.AttendanceRecord{}}}
}

func (f *fakeLedger) InsertIfAbsent(_ context.Context, record *models.AttendanceRecord) (repository.InsertOutcome, error) {
	key := attendanceKey(record.EmployeeID, record.Date)
	if _, ok := f.records[key]; ok {
		return repository.OutcomeExisted, nil
	}
	f.nextID++
	record.ID = fmt.Sprintf("att-%d", f.nextID)
	copied := *record
	f.records[key] = &copied
	return repository.OutcomeCreated, nil
}

func (f *fakeLedger) RevertLeaveDays(_ context.Context, employeeID string, from, to, minDate time.Time) (int64, error) {
	var count int64
	orgtime.EachDay(from, to, func(day time.Time) {
		if day.Before(minDate) {
			return
		}
		rec, ok := f.records[attendanceKey(employeeID, day)]
		if !ok || rec.Status != models.AttendanceStatusOnLeave || rec.CheckIn != nil {
			return
		}
		rec.Status = models.AttendanceStatusAbsent
		count++
	})
	f.reverted += count
	return count, nil
}

type fakeDepartmentDirectory struct {
	byManager map[string]*models.Department
}

func (f *fakeDepartmentDirectory) FindManagedBy(_ context.Context, managerEmployeeID string) (*models.Department, error) {
	if dept, ok := f.byManager[managerEmployeeID]; ok {
		return dept, nil
	}
	return nil, nil
}

type leaveFixture struct {
	svc      *LeaveService
	leaves   *fakeLeaveStore
	balances *fakeBalanceStore
	ledger   *fakeLedger
}

func newLeaveFixture(t *testing.T, at time.Time) *leaveFixture {
	t.Helper()
	calendar, err := orgtime.NewCalendar("Asia/Kolkata")
	require.NoError(t, err)

	leaves := newFakeLeaveStore()
	balances := newFakeBalanceStore()
	ledger := newFakeLedger()

	deptID := "dept-1"
	employees := &fakeEmployeeDirectory{employees: map[string]*models.Employee{
		"emp-1": {ID: "emp-1", Active: true, DepartmentID: &deptID},
		"emp-2": {ID: "emp-2", Active: true, DepartmentID: &deptID},
		"mgr-1": {ID: "mgr-1", Active: true, Role: models.RoleManager},
	}}
	departments := &fakeDepartmentDirectory{byManager: map[string]*models.Department{
		"mgr-1": {ID: deptID, Name: "Engineering"},
	}}
	defaults := map[models.LeaveType]float64{
		models.LeaveTypeCasual: 12,
		models.LeaveTypeSick:   10,
		models.LeaveTypeAnnual: 15,
	}

	svc := NewLeaveService(leaves, balances, ledger, employees, departments, calendar, defaults, nil, zap.NewNop())
	svc.now = func() time.Time { return at }
	return &leaveFixture{svc: svc, leaves: leaves, balances: balances, ledger: ledger}
}

// 2025-06-02 is a Monday.
func leaveTestNow(t *testing.T) time.Time {
	return ist(t, "2025-06-02 10:00")
}

func TestApplyRejectsShortReason(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))

	_, err := fx.svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{
		LeaveType: "casual",
		FromDate:  "2025-06-05",
		ToDate:    "2025-06-05",
		Reason:    "short",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestApplyRejectsPastStart(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))

	_, err := fx.svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{
		LeaveType: "casual",
		FromDate:  "2025-05-30",
		ToDate:    "2025-06-05",
		Reason:    "family function out of town",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestApplyRejectsMultiDayHalfDay(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))

	_, err := fx.svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{
		LeaveType: "casual",
		FromDate:  "2025-06-05",
		ToDate:    "2025-06-06",
		Reason:    "family function out of town",
		IsHalfDay: true,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestApplyRejectsOverlap(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))
	fx.leaves.overlap = true

	_, err := fx.svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{
		LeaveType: "casual",
		FromDate:  "2025-06-05",
		ToDate:    "2025-06-06",
		Reason:    "family function out of town",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
}

func TestApplyCountsWorkingDaysExcludingSundays(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))

	// Thu 2025-06-05 through Mon 2025-06-09 spans Sunday 2025-06-08.
	app, err := fx.svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{
		LeaveType: "casual",
		FromDate:  "2025-06-05",
		ToDate:    "2025-06-09",
		Reason:    "family function out of town",
	})
	require.NoError(t, err)
	assert.InDelta(t, 4, app.TotalDays, 0.001)
	assert.Equal(t, models.LeaveStatusPending, app.Status)
}

func TestApplyHalfDay(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))

	app, err := fx.svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{
		LeaveType: "sick",
		FromDate:  "2025-06-05",
		ToDate:    "2025-06-05",
		Reason:    "doctor appointment after lunch",
		IsHalfDay: true,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, app.TotalDays, 0.001)
}

func TestApplyInsufficientBalance(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))

	// Drain casual down to one remaining day.
	_, err := fx.balances.GetOrCreate(context.Background(), "emp-1", 2025, fx.svc.defaults)
	require.NoError(t, err)
	applied, err := fx.balances.Adjust(context.Background(), "emp-1", 2025, models.LeaveTypeCasual, 11)
	require.NoError(t, err)
	require.True(t, applied)

	_, err = fx.svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{
		LeaveType: "casual",
		FromDate:  "2025-06-05",
		ToDate:    "2025-06-06",
		Reason:    "family function out of town",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErrors.FromError(err).Status)
}

func TestApplyUnpaidSkipsBalanceCheck(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))

	app, err := fx.svc.Apply(context.Background(), claimsFor("emp-1", models.RoleEmployee), ApplyLeaveRequest{
		LeaveType: "unpaid",
		FromDate:  "2025-06-05",
		ToDate:    "2025-06-20",
		Reason:    "extended personal travel abroad",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusPending, app.Status)
}

func applyPending(t *testing.T, fx *leaveFixture, employeeID, from, to string) *models.LeaveApplication {
	t.Helper()
	app, err := fx.svc.Apply(context.Background(), claimsFor(employeeID, models.RoleEmployee), ApplyLeaveRequest{
		LeaveType: "casual",
		FromDate:  from,
		ToDate:    to,
		Reason:    "family function out of town",
	})
	require.NoError(t, err)
	return app
}

func TestReviewApproveDeductsAndPropagates(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))
	app := applyPending(t, fx, "emp-1", "2025-06-05", "2025-06-09")

	reviewed, err := fx.svc.Review(context.Background(), claimsFor("mgr-1", models.RoleManager), app.ID, ReviewLeaveRequest{Action: "approve"})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusApproved, reviewed.Status)
	assert.True(t, reviewed.AttendanceMarked)

	balances, err := fx.balances.GetOrCreate(context.Background(), "emp-1", 2025, fx.svc.defaults)
	require.NoError(t, err)
	for _, balance := range balances {
		if balance.LeaveType == models.LeaveTypeCasual {
			assert.InDelta(t, 4, balance.Used, 0.001)
			assert.InDelta(t, 8, balance.Remaining, 0.001)
		}
	}

	// Thu, Fri, Sat and Mon get on-leave rows; Sunday is skipped.
	marked := 0
	for _, rec := range fx.ledger.records {
		if rec.Status == models.AttendanceStatusOnLeave {
			marked++
		}
	}
	assert.Equal(t, 4, marked)
	sunday := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	_, ok := fx.ledger.records[attendanceKey("emp-1", sunday)]
	assert.False(t, ok)
}

func TestReviewApproveSkipsLiveCheckIn(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))
	app := applyPending(t, fx, "emp-1", "2025-06-05", "2025-06-06")

	// emp-1 already checked in on the 5th before the review lands.
	checkIn := ist(t, "2025-06-05 09:00")
	day := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	_, err := fx.ledger.Upsert(context.Background(), &models.AttendanceRecord{
		EmployeeID: "emp-1",
		Date:       day,
		CheckIn:    &checkIn,
		Status:     models.AttendanceStatusPresent,
	})
	require.NoError(t, err)

	_, err = fx.svc.Review(context.Background(), claimsFor("mgr-1", models.RoleManager), app.ID, ReviewLeaveRequest{Action: "approve"})
	require.NoError(t, err)

	kept := fx.ledger.records[attendanceKey("emp-1", day)]
	assert.Equal(t, models.AttendanceStatusPresent, kept.Status)
}

func TestReviewApproveInsufficientBalanceKeepsPending(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))
	app := applyPending(t, fx, "emp-1", "2025-06-05", "2025-06-06")

	// Another approval consumed the balance between apply and review.
	applied, err := fx.balances.Adjust(context.Background(), "emp-1", 2025, models.LeaveTypeCasual, 11)
	require.NoError(t, err)
	require.True(t, applied)

	_, err = fx.svc.Review(context.Background(), claimsFor("mgr-1", models.RoleManager), app.ID, ReviewLeaveRequest{Action: "approve"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
	assert.Equal(t, "insufficient leave balance: requested 2.0, available 1.0", appErr.Message)

	stored, err := fx.leaves.FindByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusPending, stored.Status)
}

func TestReviewRejectRequiresReason(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))
	app := applyPending(t, fx, "emp-1", "2025-06-05", "2025-06-06")

	_, err := fx.svc.Review(context.Background(), claimsFor("mgr-1", models.RoleManager), app.ID, ReviewLeaveRequest{Action: "reject"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	reviewed, err := fx.svc.Review(context.Background(), claimsFor("mgr-1", models.RoleManager), app.ID, ReviewLeaveRequest{
		Action:          "reject",
		RejectionReason: "team is short-staffed that week",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusRejected, reviewed.Status)
	assert.Empty(t, fx.balances.adjustments)
}

func TestReviewOwnApplicationForbidden(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))
	app := applyPending(t, fx, "mgr-1", "2025-06-05", "2025-06-06")

	_, err := fx.svc.Review(context.Background(), claimsFor("mgr-1", models.RoleManager), app.ID, ReviewLeaveRequest{Action: "approve"})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

func TestReviewManagerOutsideDepartmentForbidden(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))
	app := applyPending(t, fx, "emp-1", "2025-06-05", "2025-06-06")

	// mgr-2 manages a different department.
	fx.svc.departments.(*fakeDepartmentDirectory).byManager["mgr-2"] = &models.Department{ID: "dept-2", Name: "Sales"}

	_, err := fx.svc.Review(context.Background(), claimsFor("mgr-2", models.RoleManager), app.ID, ReviewLeaveRequest{Action: "approve"})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

func TestReviewEmployeeRoleForbidden(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))
	app := applyPending(t, fx, "emp-1", "2025-06-05", "2025-06-06")

	_, err := fx.svc.Review(context.Background(), claimsFor("emp-2", models.RoleEmployee), app.ID, ReviewLeaveRequest{Action: "approve"})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

func TestCancelPendingApplication(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))
	app := applyPending(t, fx, "emp-1", "2025-06-05", "2025-06-06")

	cancelled, err := fx.svc.Cancel(context.Background(), claimsFor("emp-1", models.RoleEmployee), app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusCancelled, cancelled.Status)
	assert.Empty(t, fx.balances.adjustments)
}

func TestCancelOthersApplicationForbidden(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))
	app := applyPending(t, fx, "emp-1", "2025-06-05", "2025-06-06")

	_, err := fx.svc.Cancel(context.Background(), claimsFor("emp-2", models.RoleEmployee), app.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

func TestCancelApprovedRestoresBalanceAndRevertsDays(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))
	app := applyPending(t, fx, "emp-1", "2025-06-05", "2025-06-06")

	_, err := fx.svc.Review(context.Background(), claimsFor("mgr-1", models.RoleManager), app.ID, ReviewLeaveRequest{Action: "approve"})
	require.NoError(t, err)

	cancelled, err := fx.svc.Cancel(context.Background(), claimsFor("emp-1", models.RoleEmployee), app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(2), fx.ledger.reverted)

	balances, err := fx.balances.GetOrCreate(context.Background(), "emp-1", 2025, fx.svc.defaults)
	require.NoError(t, err)
	for _, balance := range balances {
		if balance.LeaveType == models.LeaveTypeCasual {
			assert.InDelta(t, 0, balance.Used, 0.001)
			assert.InDelta(t, 12, balance.Remaining, 0.001)
		}
	}
}

func TestCancelStartedApprovedLeaveConflicts(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))
	app := applyPending(t, fx, "emp-1", "2025-06-05", "2025-06-06")

	_, err := fx.svc.Review(context.Background(), claimsFor("mgr-1", models.RoleManager), app.ID, ReviewLeaveRequest{Action: "approve"})
	require.NoError(t, err)

	// The clock has moved past the leave start.
	fx.svc.now = func() time.Time { return ist(t, "2025-06-05 12:00") }
	_, err = fx.svc.Cancel(context.Background(), claimsFor("emp-1", models.RoleEmployee), app.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
}

func TestPendingScopedToManagedDepartment(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))
	applyPending(t, fx, "emp-1", "2025-06-05", "2025-06-06")

	apps, pagination, err := fx.svc.Pending(context.Background(), claimsFor("mgr-1", models.RoleManager), 1, 50)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Equal(t, 1, pagination.TotalCount)

	_, _, err = fx.svc.Pending(context.Background(), claimsFor("emp-2", models.RoleEmployee), 1, 50)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}

func TestSetBalanceTotalGuardsConsumedDays(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))

	_, err := fx.balances.GetOrCreate(context.Background(), "emp-1", 2025, fx.svc.defaults)
	require.NoError(t, err)
	applied, err := fx.balances.Adjust(context.Background(), "emp-1", 2025, models.LeaveTypeCasual, 5)
	require.NoError(t, err)
	require.True(t, applied)

	_, err = fx.svc.SetBalanceTotal(context.Background(), claimsFor("hr-1", models.RoleHR), SetBalanceTotalRequest{
		EmployeeID: "emp-1",
		Year:       2025,
		LeaveType:  "casual",
		Total:      3,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	balances, err := fx.svc.SetBalanceTotal(context.Background(), claimsFor("hr-1", models.RoleHR), SetBalanceTotalRequest{
		EmployeeID: "emp-1",
		Year:       2025,
		LeaveType:  "casual",
		Total:      20,
	})
	require.NoError(t, err)
	for _, balance := range balances {
		if balance.LeaveType == models.LeaveTypeCasual {
			assert.InDelta(t, 20, balance.Total, 0.001)
			assert.InDelta(t, 15, balance.Remaining, 0.001)
		}
	}
}

func TestSetBalanceTotalRequiresHR(t *testing.T) {
	fx := newLeaveFixture(t, leaveTestNow(t))

	_, err := fx.svc.SetBalanceTotal(context.Background(), claimsFor("mgr-1", models.RoleManager), SetBalanceTotalRequest{
		EmployeeID: "emp-1",
		Year:       2025,
		LeaveType:  "casual",
		Total:      20,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)
}
