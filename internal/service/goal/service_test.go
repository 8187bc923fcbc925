package goal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/goal"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/notification"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/clock"
)

// ============================================================================
// MOCKS
// ============================================================================

type mockGoalRepo struct {
	goals  map[string]*goal.Goal
	nextID int
}

func newMockGoalRepo() *mockGoalRepo {
	return &mockGoalRepo{
		goals:  make(map[string]*goal.Goal),
		nextID: 1,
	}
}

func (m *mockGoalRepo) Create(ctx context.Context, g goal.Goal) (goal.Goal, error) {
	g.ID = fmt.Sprintf("goal-%d", m.nextID)
	m.nextID++
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	stored := g
	m.goals[g.ID] = &stored
	return g, nil
}

func (m *mockGoalRepo) GetByID(ctx context.Context, id string) (goal.Goal, error) {
	g, ok := m.goals[id]
	if !ok {
		return goal.Goal{}, goal.ErrGoalNotFound
	}
	copied := *g
	copied.History = append(goal.HistoryEntries{}, g.History...)
	return copied, nil
}

func (m *mockGoalRepo) Update(ctx context.Context, g goal.Goal) error {
	if _, ok := m.goals[g.ID]; !ok {
		return goal.ErrGoalNotFound
	}
	stored := g
	stored.History = append(goal.HistoryEntries{}, g.History...)
	m.goals[g.ID] = &stored
	return nil
}

func (m *mockGoalRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.goals[id]; !ok {
		return goal.ErrGoalNotFound
	}
	delete(m.goals, id)
	return nil
}

func (m *mockGoalRepo) List(ctx context.Context, filter goal.GoalFilter) ([]goal.Goal, int64, error) {
	var result []goal.Goal
	for _, g := range m.goals {
		if filter.OwnerID != nil && g.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.ApproverID != nil && (g.CurrentApproverID == nil || *g.CurrentApproverID != *filter.ApproverID) {
			continue
		}
		if filter.Status != nil && string(g.Status) != *filter.Status {
			continue
		}
		result = append(result, *g)
	}
	return result, int64(len(result)), nil
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

var (
	owner     = user.Actor{UserID: "user-owner", EmployeeID: "emp-owner"}
	manager   = user.Actor{UserID: "user-manager", EmployeeID: "emp-manager"}
	director  = user.Actor{UserID: "user-director", EmployeeID: "emp-director"}
	bystander = user.Actor{UserID: "user-bystander", EmployeeID: "emp-bystander"}
)

type fixture struct {
	svc             goal.GoalService
	repo            *mockGoalRepo
	notificationSvc *mockNotificationSvc
	clock           *clock.Fixed
}

func newFixture() *fixture {
	f := &fixture{
		repo:            newMockGoalRepo(),
		notificationSvc: &mockNotificationSvc{},
		clock:           clock.NewFixed(time.Date(2024, 4, 1, 10, 0, 0, 0, tokyo)),
	}
	f.svc = NewGoalService(f.repo, f.notificationSvc, f.clock)
	return f
}

func (f *fixture) createDraft(t *testing.T) goal.GoalResponse {
	t.Helper()
	resp, err := f.svc.CreateGoal(context.Background(), owner, goal.CreateGoalRequest{
		Title:      "Ship the reporting module",
		Level:      string(goal.LevelHigh),
		ApproverID: manager.EmployeeID,
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) submitted(t *testing.T) goal.GoalResponse {
	t.Helper()
	created := f.createDraft(t)
	resp, err := f.svc.Submit(context.Background(), owner, created.ID)
	require.NoError(t, err)
	return resp
}

func (f *fixture) approvedFirst(t *testing.T) goal.GoalResponse {
	t.Helper()
	sub := f.submitted(t)
	resp, err := f.svc.ApproveFirst(context.Background(), manager, goal.ApproveGoalRequest{ID: sub.ID})
	require.NoError(t, err)
	return resp
}

func (f *fixture) pendingFinal(t *testing.T) goal.GoalResponse {
	t.Helper()
	app := f.approvedFirst(t)
	resp, err := f.svc.Evaluate(context.Background(), owner, goal.EvaluateGoalRequest{
		ID:         app.ID,
		Progress:   90,
		Grade:      "A",
		ApproverID: director.EmployeeID,
	})
	require.NoError(t, err)
	return resp
}

// ============================================================================
// LIFECYCLE TESTS
// ============================================================================

func TestCreateGoalStartsAsDraft(t *testing.T) {
	f := newFixture()

	resp := f.createDraft(t)

	assert.Equal(t, string(goal.StatusDraft), resp.Status)
	assert.Equal(t, owner.EmployeeID, resp.OwnerID)
	require.NotNil(t, resp.CurrentApproverID)
	assert.Equal(t, manager.EmployeeID, *resp.CurrentApproverID)
	assert.Empty(t, resp.History)
}

func TestSubmitMovesToPendingFirst(t *testing.T) {
	f := newFixture()

	resp := f.submitted(t)

	assert.Equal(t, string(goal.StatusPendingFirst), resp.Status)
	require.Len(t, resp.History, 1)
	assert.Equal(t, string(goal.ActionSubmit), resp.History[0].Action)
	assert.Equal(t, owner.EmployeeID, resp.History[0].ActorID)
}

func TestSubmitTwiceFails(t *testing.T) {
	f := newFixture()

	resp := f.submitted(t)

	_, err := f.svc.Submit(context.Background(), owner, resp.ID)
	assert.ErrorIs(t, err, goal.ErrInvalidTransition)
}

func TestSubmitByNonOwnerFails(t *testing.T) {
	f := newFixture()

	created := f.createDraft(t)

	_, err := f.svc.Submit(context.Background(), bystander, created.ID)
	assert.ErrorIs(t, err, goal.ErrNotGoalOwner)
}

func TestFullLifecycleToCompleted(t *testing.T) {
	f := newFixture()

	pending := f.pendingFinal(t)

	resp, err := f.svc.ApproveFinal(context.Background(), director, goal.ApproveGoalRequest{ID: pending.ID})
	require.NoError(t, err)

	assert.Equal(t, string(goal.StatusCompleted), resp.Status)
	require.Len(t, resp.History, 4)
	assert.Equal(t, string(goal.ActionSubmit), resp.History[0].Action)
	assert.Equal(t, string(goal.ActionApproveFirst), resp.History[1].Action)
	assert.Equal(t, string(goal.ActionEvaluate), resp.History[2].Action)
	assert.Equal(t, string(goal.ActionApproveFinal), resp.History[3].Action)
}

func TestEvaluateRecordsProgressAndReassignsApprover(t *testing.T) {
	f := newFixture()

	resp := f.pendingFinal(t)

	assert.Equal(t, string(goal.StatusPendingFinal), resp.Status)
	assert.Equal(t, 90, resp.Progress)
	require.NotNil(t, resp.Grade)
	assert.Equal(t, "A", *resp.Grade)
	require.NotNil(t, resp.CurrentApproverID)
	assert.Equal(t, director.EmployeeID, *resp.CurrentApproverID)
}

func TestEvaluateBeforeFirstApprovalFails(t *testing.T) {
	f := newFixture()

	sub := f.submitted(t)

	_, err := f.svc.Evaluate(context.Background(), owner, goal.EvaluateGoalRequest{
		ID:         sub.ID,
		Progress:   50,
		Grade:      "B",
		ApproverID: director.EmployeeID,
	})
	assert.ErrorIs(t, err, goal.ErrInvalidTransition)
}

// ============================================================================
// REJECTION TESTS
// ============================================================================

func TestRejectFirstKillsGoal(t *testing.T) {
	f := newFixture()

	sub := f.submitted(t)

	resp, err := f.svc.RejectFirst(context.Background(), manager, goal.RejectGoalRequest{
		ID:      sub.ID,
		Comment: "scope too broad",
	})
	require.NoError(t, err)

	assert.Equal(t, string(goal.StatusRejected), resp.Status)
	last := resp.History[len(resp.History)-1]
	assert.Equal(t, string(goal.ActionRejectFirst), last.Action)
	require.NotNil(t, last.Comment)
	assert.Equal(t, "scope too broad", *last.Comment)
}

func TestRejectRequiresComment(t *testing.T) {
	f := newFixture()

	sub := f.submitted(t)

	_, err := f.svc.RejectFirst(context.Background(), manager, goal.RejectGoalRequest{ID: sub.ID})
	require.Error(t, err)

	stored, getErr := f.repo.GetByID(context.Background(), sub.ID)
	require.NoError(t, getErr)
	assert.Equal(t, goal.StatusPendingFirst, stored.Status)
}

func TestRejectFinalDemotesToApprovedFirst(t *testing.T) {
	f := newFixture()

	pending := f.pendingFinal(t)

	resp, err := f.svc.RejectFinal(context.Background(), director, goal.RejectGoalRequest{
		ID:      pending.ID,
		Comment: "re-evaluate after Q2 numbers land",
	})
	require.NoError(t, err)

	// The goal returns to the evaluation step, not to rejected.
	assert.Equal(t, string(goal.StatusApprovedFirst), resp.Status)
	assert.Len(t, resp.History, 4)
}

func TestEditingRejectedGoalResetsToDraft(t *testing.T) {
	f := newFixture()

	sub := f.submitted(t)
	_, err := f.svc.RejectFirst(context.Background(), manager, goal.RejectGoalRequest{
		ID:      sub.ID,
		Comment: "needs an action plan",
	})
	require.NoError(t, err)

	plan := "weekly milestones, demo every sprint"
	resp, err := f.svc.UpdateGoal(context.Background(), owner, goal.UpdateGoalRequest{
		ID:         sub.ID,
		ActionPlan: &plan,
	})
	require.NoError(t, err)

	assert.Equal(t, string(goal.StatusDraft), resp.Status)

	// History from the first round survives the reset.
	assert.Len(t, resp.History, 2)
}

// ============================================================================
// AUTHORIZATION TESTS
// ============================================================================

func TestApproveFirstByWrongApproverFails(t *testing.T) {
	f := newFixture()

	sub := f.submitted(t)

	_, err := f.svc.ApproveFirst(context.Background(), bystander, goal.ApproveGoalRequest{ID: sub.ID})
	assert.ErrorIs(t, err, goal.ErrNotCurrentApprover)
}

func TestFirstApproverCannotApproveFinal(t *testing.T) {
	f := newFixture()

	pending := f.pendingFinal(t)

	// The approver was reassigned at the evaluate step.
	_, err := f.svc.ApproveFinal(context.Background(), manager, goal.ApproveGoalRequest{ID: pending.ID})
	assert.ErrorIs(t, err, goal.ErrNotCurrentApprover)
}

func TestApproveOnWrongStageFails(t *testing.T) {
	f := newFixture()

	created := f.createDraft(t)

	_, err := f.svc.ApproveFirst(context.Background(), manager, goal.ApproveGoalRequest{ID: created.ID})
	assert.ErrorIs(t, err, goal.ErrInvalidTransition)
}

func TestGetGoalVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sub := f.submitted(t)

	_, err := f.svc.GetGoal(ctx, owner, sub.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetGoal(ctx, manager, sub.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetGoal(ctx, bystander, sub.ID)
	assert.ErrorIs(t, err, goal.ErrNotGoalOwner)
}

// ============================================================================
// EDIT AND DELETE TESTS
// ============================================================================

func TestUpdatePendingGoalFails(t *testing.T) {
	f := newFixture()

	sub := f.submitted(t)

	title := "retitled"
	_, err := f.svc.UpdateGoal(context.Background(), owner, goal.UpdateGoalRequest{
		ID:    sub.ID,
		Title: &title,
	})
	assert.ErrorIs(t, err, goal.ErrGoalNotEditable)
}

func TestDeletePendingGoalFails(t *testing.T) {
	f := newFixture()

	sub := f.submitted(t)

	err := f.svc.DeleteGoal(context.Background(), owner, sub.ID)
	assert.ErrorIs(t, err, goal.ErrGoalPending)
}

func TestDeleteCompletedGoalSucceeds(t *testing.T) {
	f := newFixture()

	pending := f.pendingFinal(t)
	_, err := f.svc.ApproveFinal(context.Background(), director, goal.ApproveGoalRequest{ID: pending.ID})
	require.NoError(t, err)

	err = f.svc.DeleteGoal(context.Background(), owner, pending.ID)
	assert.NoError(t, err)
}

// ============================================================================
// LISTING AND NOTIFICATION TESTS
// ============================================================================

func TestGetAssignedGoalsFiltersByApprover(t *testing.T) {
	f := newFixture()

	f.submitted(t)

	result, err := f.svc.GetAssignedGoals(context.Background(), manager, goal.GoalFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.TotalCount)

	empty, err := f.svc.GetAssignedGoals(context.Background(), director, goal.GoalFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalCount)
}

func TestListGoalsRequiresAdmin(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ListGoals(context.Background(), owner, goal.GoalFilter{})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

func TestTransitionsNotifyTheRightParty(t *testing.T) {
	f := newFixture()

	sub := f.submitted(t)
	require.Len(t, f.notificationSvc.sent, 1)
	assert.Equal(t, manager.EmployeeID, f.notificationSvc.sent[0].RecipientID)
	assert.Equal(t, notification.TypeGoalSubmitted, f.notificationSvc.sent[0].Type)

	_, err := f.svc.ApproveFirst(context.Background(), manager, goal.ApproveGoalRequest{ID: sub.ID})
	require.NoError(t, err)
	last := f.notificationSvc.sent[len(f.notificationSvc.sent)-1]
	assert.Equal(t, owner.EmployeeID, last.RecipientID)
	assert.Equal(t, notification.TypeGoalApproved, last.Type)
}
