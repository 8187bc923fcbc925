package approval

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/approval"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/attendance"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/notification"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/clock"
)

// ============================================================================
// MOCKS
// ============================================================================

type mockApprovalRepo struct {
	requests map[string]*approval.ApprovalRequest
	nextID   int

	updateError error
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
	if m.updateError != nil {
		return m.updateError
	}
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

// mockAttendanceRepo covers only the range operations the workflow uses.
type mockAttendanceRepo struct {
	attendance.AttendanceRepository

	confirmed      map[string]bool
	hasConfirmed   bool
	confirmCalls   int
	unconfirmCalls int
	confirmError   error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{confirmed: make(map[string]bool)}
}

func (m *mockAttendanceRepo) HasConfirmedInRange(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	return m.hasConfirmed, nil
}

func (m *mockAttendanceRepo) ConfirmRange(ctx context.Context, employeeID string, start, end time.Time, confirmedBy string, confirmedAt time.Time) (int64, error) {
	if m.confirmError != nil {
		return 0, m.confirmError
	}
	m.confirmCalls++
	m.confirmed[employeeID] = true
	return 20, nil
}

func (m *mockAttendanceRepo) UnconfirmRange(ctx context.Context, employeeID string, start, end time.Time) (int64, error) {
	m.unconfirmCalls++
	m.confirmed[employeeID] = false
	return 20, nil
}

type mockNotificationSvc struct {
	sent []notification.CreateNotificationRequest
}

func (m *mockNotificationSvc) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	m.sent = append(m.sent, req)
	return nil
}

func (m *mockNotificationSvc) ListMyNotifications(ctx context.Context, actor user.Actor, limit int) ([]notification.NotificationResponse, error) {
	return nil, nil
}

func (m *mockNotificationSvc) MarkRead(ctx context.Context, actor user.Actor, id string) error {
	return nil
}

// mockTransactor runs fn directly; the repositories above are not
// transactional anyway.
type mockTransactor struct {
	beginError error
}

func (m *mockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.beginError != nil {
		return m.beginError
	}
	return fn(ctx)
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

var alice = user.Actor{UserID: "user-alice", EmployeeID: "emp-alice"}
var admin = user.Actor{UserID: "user-admin", EmployeeID: "emp-admin", IsAdmin: true}

type fixture struct {
	svc             approval.ApprovalService
	approvalRepo    *mockApprovalRepo
	attendanceRepo  *mockAttendanceRepo
	notificationSvc *mockNotificationSvc
	clock           *clock.Fixed
}

func newFixture() *fixture {
	f := &fixture{
		approvalRepo:    newMockApprovalRepo(),
		attendanceRepo:  newMockAttendanceRepo(),
		notificationSvc: &mockNotificationSvc{},
		clock:           clock.NewFixed(time.Date(2024, 4, 1, 10, 0, 0, 0, tokyo)),
	}
	f.svc = NewApprovalService(f.approvalRepo, f.attendanceRepo, f.notificationSvc, &mockTransactor{}, f.clock)
	return f
}

func (f *fixture) file(t *testing.T, year, month int) approval.ApprovalResponse {
	t.Helper()
	resp, err := f.svc.FileRequest(context.Background(), alice, approval.FileRequestRequest{Year: year, Month: month})
	require.NoError(t, err)
	return resp
}

// ============================================================================
// FILING TESTS
// ============================================================================

func TestFileRequestCreatesPending(t *testing.T) {
	f := newFixture()

	resp := f.file(t, 2024, 3)

	assert.Equal(t, string(approval.RequestStatusPending), resp.Status)
	assert.Equal(t, 2024, resp.Year)
	assert.Equal(t, 3, resp.Month)
	assert.Equal(t, alice.EmployeeID, resp.EmployeeID)
}

func TestFileRequestTwiceFails(t *testing.T) {
	f := newFixture()

	f.file(t, 2024, 3)

	_, err := f.svc.FileRequest(context.Background(), alice, approval.FileRequestRequest{Year: 2024, Month: 3})
	assert.ErrorIs(t, err, approval.ErrRequestAlreadyPending)
}

func TestFileRequestOnConfirmedMonthFails(t *testing.T) {
	f := newFixture()
	f.attendanceRepo.hasConfirmed = true

	_, err := f.svc.FileRequest(context.Background(), alice, approval.FileRequestRequest{Year: 2024, Month: 3})
	assert.ErrorIs(t, err, approval.ErrMonthAlreadyConfirmed)
}

func TestRefileAfterReturnSupersedesOldRequest(t *testing.T) {
	f := newFixture()

	first := f.file(t, 2024, 3)

	_, err := f.svc.Return(context.Background(), admin, first.ID, approval.ReturnRequestRequest{Reason: "missing overtime"})
	require.NoError(t, err)

	second := f.file(t, 2024, 3)

	// The returned request is gone; only the fresh pending one remains.
	_, err = f.approvalRepo.GetByID(context.Background(), first.ID)
	assert.ErrorIs(t, err, approval.ErrApprovalNotFound)
	assert.NotEqual(t, first.ID, second.ID)
}

// ============================================================================
// PROCESSING TESTS
// ============================================================================

func TestApproveConfirmsMonth(t *testing.T) {
	f := newFixture()

	filed := f.file(t, 2024, 3)

	resp, err := f.svc.Approve(context.Background(), admin, filed.ID)
	require.NoError(t, err)

	assert.Equal(t, string(approval.RequestStatusApproved), resp.Status)
	require.NotNil(t, resp.ProcessedBy)
	assert.Equal(t, admin.EmployeeID, *resp.ProcessedBy)
	assert.NotNil(t, resp.ProcessedAt)
	assert.Equal(t, 1, f.attendanceRepo.confirmCalls)
	assert.True(t, f.attendanceRepo.confirmed[alice.EmployeeID])
}

func TestApproveRequiresAdmin(t *testing.T) {
	f := newFixture()

	filed := f.file(t, 2024, 3)

	_, err := f.svc.Approve(context.Background(), alice, filed.ID)
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

func TestApproveProcessedRequestFails(t *testing.T) {
	f := newFixture()

	filed := f.file(t, 2024, 3)
	_, err := f.svc.Approve(context.Background(), admin, filed.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), admin, filed.ID)
	assert.ErrorIs(t, err, approval.ErrRequestAlreadyProcessed)
}

func TestApproveRollsBackWhenConfirmFails(t *testing.T) {
	f := newFixture()
	f.attendanceRepo.confirmError = errors.New("disk on fire")

	filed := f.file(t, 2024, 3)

	_, err := f.svc.Approve(context.Background(), admin, filed.ID)
	require.Error(t, err)

	// The request stays pending when the bulk write fails.
	stored, getErr := f.approvalRepo.GetByID(context.Background(), filed.ID)
	require.NoError(t, getErr)
	assert.Equal(t, approval.RequestStatusPending, stored.Status)
}

func TestReturnRequiresReason(t *testing.T) {
	f := newFixture()

	filed := f.file(t, 2024, 3)

	_, err := f.svc.Return(context.Background(), admin, filed.ID, approval.ReturnRequestRequest{})
	require.Error(t, err)

	stored, getErr := f.approvalRepo.GetByID(context.Background(), filed.ID)
	require.NoError(t, getErr)
	assert.Equal(t, approval.RequestStatusPending, stored.Status)
}

func TestReturnUnfreezesMonth(t *testing.T) {
	f := newFixture()

	filed := f.file(t, 2024, 3)

	resp, err := f.svc.Return(context.Background(), admin, filed.ID, approval.ReturnRequestRequest{Reason: "missing overtime"})
	require.NoError(t, err)

	assert.Equal(t, string(approval.RequestStatusReturned), resp.Status)
	require.NotNil(t, resp.ReturnReason)
	assert.Equal(t, "missing overtime", *resp.ReturnReason)
	assert.Equal(t, 1, f.attendanceRepo.unconfirmCalls)
}

func TestRejectLeavesAttendanceAlone(t *testing.T) {
	f := newFixture()

	filed := f.file(t, 2024, 3)

	resp, err := f.svc.Reject(context.Background(), admin, filed.ID)
	require.NoError(t, err)

	assert.Equal(t, string(approval.RequestStatusRejected), resp.Status)
	assert.Equal(t, 0, f.attendanceRepo.confirmCalls)
	assert.Equal(t, 0, f.attendanceRepo.unconfirmCalls)
}

func TestApproveMissingRequest(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Approve(context.Background(), admin, "req-missing")
	assert.ErrorIs(t, err, approval.ErrApprovalNotFound)
}

// ============================================================================
// NOTIFICATION TESTS
// ============================================================================

func TestWorkflowTransitionsNotifyEmployee(t *testing.T) {
	f := newFixture()

	filed := f.file(t, 2024, 3)
	_, err := f.svc.Approve(context.Background(), admin, filed.ID)
	require.NoError(t, err)

	types := make([]notification.NotificationType, 0, len(f.notificationSvc.sent))
	for _, n := range f.notificationSvc.sent {
		types = append(types, n.Type)
	}
	assert.Contains(t, types, notification.TypeMonthRequestFiled)
	assert.Contains(t, types, notification.TypeMonthApproved)

	last := f.notificationSvc.sent[len(f.notificationSvc.sent)-1]
	assert.Equal(t, alice.EmployeeID, last.RecipientID)
}

// ============================================================================
// LISTING TESTS
// ============================================================================

func TestListRequestsRequiresAdmin(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ListRequests(context.Background(), alice, approval.RequestFilter{})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

func TestGetMyRequestsScopedToActor(t *testing.T) {
	f := newFixture()

	f.file(t, 2024, 2)
	f.file(t, 2024, 3)

	_, err := f.approvalRepo.Create(context.Background(), approval.ApprovalRequest{
		EmployeeID: "emp-bob",
		Year:       2024,
		Month:      3,
		Status:     approval.RequestStatusPending,
	})
	require.NoError(t, err)

	result, err := f.svc.GetMyRequests(context.Background(), alice, approval.RequestFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.TotalCount)
	for _, req := range result.Requests {
		assert.Equal(t, alice.EmployeeID, req.EmployeeID)
	}
}
