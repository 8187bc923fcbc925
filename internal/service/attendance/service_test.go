package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintai-hq/kintai-backend-go/internal/config"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/approval"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/attendance"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/clock"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/validator"
)

// ============================================================================
// MOCK REPOSITORIES
// ============================================================================

type mockAttendanceRepo struct {
	records map[string]*attendance.Attendance
	nextID  int

	// Error injection
	createError error
	getError    error
	updateError error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{
		records: make(map[string]*attendance.Attendance),
		nextID:  1,
	}
}

func (m *mockAttendanceRepo) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	if m.createError != nil {
		return attendance.Attendance{}, m.createError
	}
	for _, existing := range m.records {
		if existing.EmployeeID == att.EmployeeID && existing.Date.Equal(att.Date) {
			return attendance.Attendance{}, attendance.ErrDuplicateDailyRecord
		}
	}
	att.ID = fmt.Sprintf("att-%d", m.nextID)
	m.nextID++
	att.CreatedAt = time.Now()
	att.UpdatedAt = att.CreatedAt
	stored := att
	m.records[att.ID] = &stored
	return att, nil
}

func (m *mockAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	if m.getError != nil {
		return attendance.Attendance{}, m.getError
	}
	att, ok := m.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return *att, nil
}

func (m *mockAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, att := range m.records {
		if att.EmployeeID == employeeID && att.Date.Equal(date) {
			copied := *att
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockAttendanceRepo) Update(ctx context.Context, att attendance.Attendance) error {
	if m.updateError != nil {
		return m.updateError
	}
	stored, ok := m.records[att.ID]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	confirmed := stored.IsConfirmed
	copied := att
	copied.IsConfirmed = confirmed
	m.records[att.ID] = &copied
	return nil
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	var result []attendance.Attendance
	for _, att := range m.records {
		if filter.EmployeeID != nil && att.EmployeeID != *filter.EmployeeID {
			continue
		}
		result = append(result, *att)
	}
	return result, int64(len(result)), nil
}

func (m *mockAttendanceRepo) GetMyAttendance(ctx context.Context, employeeID string, filter attendance.MyAttendanceFilter) ([]attendance.Attendance, int64, error) {
	return m.List(ctx, attendance.AttendanceFilter{EmployeeID: &employeeID})
}

func (m *mockAttendanceRepo) MonthlySummary(ctx context.Context, employeeID string, start, end time.Time) (attendance.MonthlySummary, error) {
	var summary attendance.MonthlySummary
	for _, att := range m.records {
		if att.EmployeeID != employeeID || att.Date.Before(start) || !att.Date.Before(end) {
			continue
		}
		switch att.Status {
		case attendance.StatusAbsent:
			summary.DaysAbsent++
			continue
		case attendance.StatusLate:
			summary.DaysLate++
		case attendance.StatusEarlyLeave:
			summary.DaysEarlyLeave++
		}
		summary.DaysPresent++
		if att.WorkingHours != nil {
			summary.TotalWorkingHours += *att.WorkingHours
		}
		if att.TotalHours != nil {
			summary.TotalHours += *att.TotalHours
		}
		if att.IsConfirmed {
			summary.ConfirmedDays++
		}
	}
	return summary, nil
}

func (m *mockAttendanceRepo) HasConfirmedInRange(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	for _, att := range m.records {
		if att.EmployeeID == employeeID && !att.Date.Before(start) && att.Date.Before(end) && att.IsConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAttendanceRepo) ConfirmRange(ctx context.Context, employeeID string, start, end time.Time, confirmedBy string, confirmedAt time.Time) (int64, error) {
	var count int64
	for _, att := range m.records {
		if att.EmployeeID == employeeID && !att.Date.Before(start) && att.Date.Before(end) {
			att.IsConfirmed = true
			att.ConfirmedBy = &confirmedBy
			att.ConfirmedAt = &confirmedAt
			count++
		}
	}
	return count, nil
}

func (m *mockAttendanceRepo) UnconfirmRange(ctx context.Context, employeeID string, start, end time.Time) (int64, error) {
	var count int64
	for _, att := range m.records {
		if att.EmployeeID == employeeID && !att.Date.Before(start) && att.Date.Before(end) && att.IsConfirmed {
			att.IsConfirmed = false
			att.ConfirmedBy = nil
			att.ConfirmedAt = nil
			count++
		}
	}
	return count, nil
}

func (m *mockAttendanceRepo) BulkCreateAbsences(ctx context.Context, absences []attendance.Attendance) error {
	for _, absence := range absences {
		if existing, _ := m.GetByEmployeeAndDate(ctx, absence.EmployeeID, absence.Date); existing != nil {
			continue
		}
		if _, err := m.Create(ctx, absence); err != nil {
			return err
		}
	}
	return nil
}

type mockApprovalRepo struct {
	requests map[string]*approval.ApprovalRequest
	nextID   int
}

func newMockApprovalRepo() *mockApprovalRepo {
	return &mockApprovalRepo{
		requests: make(map[string]*approval.ApprovalRequest),
		nextID:   1,
	}
}

func (m *mockApprovalRepo) Create(ctx context.Context, request approval.ApprovalRequest) (approval.ApprovalRequest, error) {
	request.ID = fmt.Sprintf("req-%d", m.nextID)
	m.nextID++
	stored := request
	m.requests[request.ID] = &stored
	return request, nil
}

func (m *mockApprovalRepo) GetByID(ctx context.Context, id string) (approval.ApprovalRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return approval.ApprovalRequest{}, approval.ErrApprovalNotFound
	}
	return *req, nil
}

func (m *mockApprovalRepo) GetPendingByPeriod(ctx context.Context, employeeID string, year, month int) (*approval.ApprovalRequest, error) {
	for _, req := range m.requests {
		if req.EmployeeID == employeeID && req.Year == year && req.Month == month && req.Status == approval.RequestStatusPending {
			copied := *req
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockApprovalRepo) DeleteSuperseded(ctx context.Context, employeeID string, year, month int) error {
	for id, req := range m.requests {
		if req.EmployeeID == employeeID && req.Year == year && req.Month == month &&
			(req.Status == approval.RequestStatusReturned || req.Status == approval.RequestStatusRejected) {
			delete(m.requests, id)
		}
	}
	return nil
}

func (m *mockApprovalRepo) Update(ctx context.Context, request approval.ApprovalRequest) error {
	if _, ok := m.requests[request.ID]; !ok {
		return approval.ErrApprovalNotFound
	}
	stored := request
	m.requests[request.ID] = &stored
	return nil
}

func (m *mockApprovalRepo) List(ctx context.Context, filter approval.RequestFilter) ([]approval.ApprovalRequest, int64, error) {
	var result []approval.ApprovalRequest
	for _, req := range m.requests {
		if filter.EmployeeID != nil && req.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(req.Status) != *filter.Status {
			continue
		}
		result = append(result, *req)
	}
	return result, int64(len(result)), nil
}

// ============================================================================
// HELPERS
// ============================================================================

var tokyo = mustLoadLocation("Asia/Tokyo")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func testRules() config.AttendanceConfig {
	return config.AttendanceConfig{
		Timezone:          "Asia/Tokyo",
		LateThresholdHour: 9,
		FullWorkdayHours:  8,
	}
}

func newTestService(clk clock.Clock) (attendance.AttendanceService, *mockAttendanceRepo, *mockApprovalRepo) {
	attendanceRepo := newMockAttendanceRepo()
	approvalRepo := newMockApprovalRepo()
	svc := NewAttendanceService(attendanceRepo, approvalRepo, clk, testRules())
	return svc, attendanceRepo, approvalRepo
}

func at(hour, minute int) *clock.Fixed {
	return clock.NewFixed(time.Date(2024, 3, 15, hour, minute, 0, 0, tokyo))
}

var alice = user.Actor{UserID: "user-alice", EmployeeID: "emp-alice"}
var admin = user.Actor{UserID: "user-admin", EmployeeID: "emp-admin", IsAdmin: true}

// ============================================================================
// TIME CLOCK TESTS
// ============================================================================

func TestCheckInBeforeThresholdIsNormal(t *testing.T) {
	svc, _, _ := newTestService(at(8, 55))

	result, err := svc.CheckIn(context.Background(), alice)
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusNormal), result.Status)
	assert.Equal(t, "2024-03-15", result.Date)
	require.NotNil(t, result.CheckIn)
}

func TestCheckInAtThresholdIsLate(t *testing.T) {
	svc, _, _ := newTestService(at(9, 0))

	result, err := svc.CheckIn(context.Background(), alice)
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusLate), result.Status)
}

func TestCheckInAfterThresholdIsLate(t *testing.T) {
	svc, _, _ := newTestService(at(9, 5))

	result, err := svc.CheckIn(context.Background(), alice)
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusLate), result.Status)
}

func TestRepeatedCheckInReturnsExistingRecord(t *testing.T) {
	clk := at(8, 30)
	svc, _, _ := newTestService(clk)

	first, err := svc.CheckIn(context.Background(), alice)
	require.NoError(t, err)

	clk.Advance(30 * time.Minute)
	second, err := svc.CheckIn(context.Background(), alice)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CheckIn, second.CheckIn)
}

func TestCheckInAfterCheckOutFails(t *testing.T) {
	clk := at(8, 30)
	svc, _, _ := newTestService(clk)

	_, err := svc.CheckIn(context.Background(), alice)
	require.NoError(t, err)

	clk.Advance(9 * time.Hour)
	_, err = svc.CheckOut(context.Background(), alice)
	require.NoError(t, err)

	clk.Advance(1 * time.Hour)
	_, err = svc.CheckIn(context.Background(), alice)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestFullDayWithLunch(t *testing.T) {
	clk := at(8, 30)
	svc, _, _ := newTestService(clk)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, alice)
	require.NoError(t, err)

	clk.Set(time.Date(2024, 3, 15, 12, 0, 0, 0, tokyo))
	_, err = svc.StartLunch(ctx, alice)
	require.NoError(t, err)

	clk.Set(time.Date(2024, 3, 15, 12, 30, 0, 0, tokyo))
	_, err = svc.EndLunch(ctx, alice)
	require.NoError(t, err)

	clk.Set(time.Date(2024, 3, 15, 17, 30, 0, 0, tokyo))
	result, err := svc.CheckOut(ctx, alice)
	require.NoError(t, err)

	require.NotNil(t, result.WorkingHours)
	require.NotNil(t, result.TotalHours)
	assert.Equal(t, 8.5, *result.WorkingHours)
	assert.Equal(t, 9.0, *result.TotalHours)
	assert.Equal(t, string(attendance.StatusNormal), result.Status)
}

func TestShortDayBecomesEarlyLeave(t *testing.T) {
	clk := at(8, 30)
	svc, _, _ := newTestService(clk)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, alice)
	require.NoError(t, err)

	clk.Set(time.Date(2024, 3, 15, 15, 0, 0, 0, tokyo))
	result, err := svc.CheckOut(ctx, alice)
	require.NoError(t, err)

	require.NotNil(t, result.WorkingHours)
	assert.Equal(t, 6.5, *result.WorkingHours)
	assert.Equal(t, string(attendance.StatusEarlyLeave), result.Status)
}

func TestEarlyLeaveOverwritesLate(t *testing.T) {
	clk := at(9, 5)
	svc, _, _ := newTestService(clk)
	ctx := context.Background()

	late, err := svc.CheckIn(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusLate), late.Status)

	clk.Set(time.Date(2024, 3, 15, 16, 0, 0, 0, tokyo))
	result, err := svc.CheckOut(ctx, alice)
	require.NoError(t, err)

	// The late fact is lost once early leave is determined.
	assert.Equal(t, string(attendance.StatusEarlyLeave), result.Status)
}

func TestLunchStateMachine(t *testing.T) {
	clk := at(8, 30)
	svc, _, _ := newTestService(clk)
	ctx := context.Background()

	_, err := svc.StartLunch(ctx, alice)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	_, err = svc.CheckIn(ctx, alice)
	require.NoError(t, err)

	_, err = svc.EndLunch(ctx, alice)
	assert.ErrorIs(t, err, attendance.ErrLunchNotStarted)

	clk.Advance(3 * time.Hour)
	_, err = svc.StartLunch(ctx, alice)
	require.NoError(t, err)

	_, err = svc.StartLunch(ctx, alice)
	assert.ErrorIs(t, err, attendance.ErrLunchAlreadyStarted)

	clk.Advance(45 * time.Minute)
	_, err = svc.EndLunch(ctx, alice)
	require.NoError(t, err)

	_, err = svc.EndLunch(ctx, alice)
	assert.ErrorIs(t, err, attendance.ErrLunchAlreadyEnded)
}

func TestCheckOutWithoutCheckInFails(t *testing.T) {
	svc, _, _ := newTestService(at(17, 0))

	_, err := svc.CheckOut(context.Background(), alice)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

// ============================================================================
// EDIT LOCK TESTS
// ============================================================================

func seedRecord(repo *mockAttendanceRepo, employeeID string, date time.Time) attendance.Attendance {
	checkIn := date.Add(9 * time.Hour)
	created, err := repo.Create(context.Background(), attendance.Attendance{
		EmployeeID: employeeID,
		Date:       date,
		CheckIn:    &checkIn,
		Status:     attendance.StatusNormal,
	})
	if err != nil {
		panic(err)
	}
	return created
}

func TestUpdateConfirmedRecordFails(t *testing.T) {
	svc, repo, _ := newTestService(at(10, 0))

	record := seedRecord(repo, alice.EmployeeID, time.Date(2024, 3, 1, 0, 0, 0, 0, tokyo))
	repo.records[record.ID].IsConfirmed = true

	notes := "forgot to punch"
	_, err := svc.UpdateAttendance(context.Background(), alice, attendance.UpdateAttendanceRequest{
		ID:    record.ID,
		Notes: &notes,
	})
	assert.ErrorIs(t, err, attendance.ErrAttendanceConfirmed)
}

func TestUpdateLockedByPendingRequest(t *testing.T) {
	svc, repo, approvalRepo := newTestService(at(10, 0))

	record := seedRecord(repo, alice.EmployeeID, time.Date(2024, 3, 1, 0, 0, 0, 0, tokyo))
	_, err := approvalRepo.Create(context.Background(), approval.ApprovalRequest{
		EmployeeID: alice.EmployeeID,
		Year:       2024,
		Month:      3,
		Status:     approval.RequestStatusPending,
	})
	require.NoError(t, err)

	notes := "correction"
	_, err = svc.UpdateAttendance(context.Background(), alice, attendance.UpdateAttendanceRequest{
		ID:    record.ID,
		Notes: &notes,
	})
	assert.ErrorIs(t, err, attendance.ErrMonthPendingApproval)
}

func TestUpdateByNonOwnerFails(t *testing.T) {
	svc, repo, _ := newTestService(at(10, 0))

	record := seedRecord(repo, "emp-bob", time.Date(2024, 3, 1, 0, 0, 0, 0, tokyo))

	notes := "not mine"
	_, err := svc.UpdateAttendance(context.Background(), alice, attendance.UpdateAttendanceRequest{
		ID:    record.ID,
		Notes: &notes,
	})
	assert.ErrorIs(t, err, attendance.ErrNotRecordOwner)
}

func TestAdminUpdateRecomputesHours(t *testing.T) {
	svc, repo, _ := newTestService(at(10, 0))

	record := seedRecord(repo, "emp-bob", time.Date(2024, 3, 1, 0, 0, 0, 0, tokyo))

	checkIn := "2024-03-01T09:00:00+09:00"
	checkOut := "2024-03-01T18:00:00+09:00"
	lunchStart := "2024-03-01T12:00:00+09:00"
	lunchEnd := "2024-03-01T13:00:00+09:00"

	result, err := svc.UpdateAttendance(context.Background(), admin, attendance.UpdateAttendanceRequest{
		ID:         record.ID,
		CheckIn:    &checkIn,
		LunchStart: &lunchStart,
		LunchEnd:   &lunchEnd,
		CheckOut:   &checkOut,
	})
	require.NoError(t, err)

	require.NotNil(t, result.WorkingHours)
	assert.Equal(t, 8.0, *result.WorkingHours)
	assert.Equal(t, 9.0, *result.TotalHours)
}

func TestUpdateRejectsBadPunchOrder(t *testing.T) {
	svc, repo, _ := newTestService(at(10, 0))

	record := seedRecord(repo, alice.EmployeeID, time.Date(2024, 3, 1, 0, 0, 0, 0, tokyo))

	checkIn := "2024-03-01T18:00:00+09:00"
	checkOut := "2024-03-01T09:00:00+09:00"
	_, err := svc.UpdateAttendance(context.Background(), alice, attendance.UpdateAttendanceRequest{
		ID:       record.ID,
		CheckIn:  &checkIn,
		CheckOut: &checkOut,
	})

	var validationErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &validationErrs)
}

func TestDeleteConfirmedRecordFails(t *testing.T) {
	svc, repo, _ := newTestService(at(10, 0))

	record := seedRecord(repo, alice.EmployeeID, time.Date(2024, 3, 1, 0, 0, 0, 0, tokyo))
	repo.records[record.ID].IsConfirmed = true

	err := svc.DeleteAttendance(context.Background(), alice, record.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceConfirmed)
}

// ============================================================================
// SUMMARY TESTS
// ============================================================================

func TestMonthlySummaryCountsByStatus(t *testing.T) {
	svc, repo, _ := newTestService(at(10, 0))
	ctx := context.Background()

	working := 8.5
	for day, status := range map[int]attendance.Status{
		1: attendance.StatusNormal,
		4: attendance.StatusLate,
		5: attendance.StatusEarlyLeave,
		6: attendance.StatusAbsent,
	} {
		date := time.Date(2024, 3, day, 0, 0, 0, 0, tokyo)
		record := attendance.Attendance{
			EmployeeID: alice.EmployeeID,
			Date:       date,
			Status:     status,
		}
		if status != attendance.StatusAbsent {
			checkIn := date.Add(9 * time.Hour)
			record.CheckIn = &checkIn
			record.WorkingHours = &working
		}
		_, err := repo.Create(ctx, record)
		require.NoError(t, err)
	}

	summary, err := svc.GetMonthlySummary(ctx, alice, 2024, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.DaysPresent)
	assert.Equal(t, 1, summary.DaysLate)
	assert.Equal(t, 1, summary.DaysEarlyLeave)
	assert.Equal(t, 1, summary.DaysAbsent)
	assert.InDelta(t, 25.5, summary.TotalWorkingHours, 0.001)
}
