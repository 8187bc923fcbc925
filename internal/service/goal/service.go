package goal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/goal"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/notification"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/clock"
)

type GoalServiceImpl struct {
	goal.GoalRepository
	notificationSvc notification.Service
	clock           clock.Clock
}

func NewGoalService(
	goalRepo goal.GoalRepository,
	notificationSvc notification.Service,
	clk clock.Clock,
) goal.GoalService {
	return &GoalServiceImpl{
		GoalRepository:  goalRepo,
		notificationSvc: notificationSvc,
		clock:           clk,
	}
}

// CreateGoal implements goal.GoalService.
func (s *GoalServiceImpl) CreateGoal(ctx context.Context, actor user.Actor, req goal.CreateGoalRequest) (goal.GoalResponse, error) {
	if err := req.Validate(); err != nil {
		return goal.GoalResponse{}, err
	}

	g := goal.Goal{
		OwnerID:           actor.EmployeeID,
		Title:             req.Title,
		Description:       req.Description,
		Level:             goal.GoalLevel(req.Level),
		ActionPlan:        req.ActionPlan,
		Status:            goal.StatusDraft,
		CurrentApproverID: &req.ApproverID,
		History:           goal.HistoryEntries{},
	}
	if req.Deadline != nil && *req.Deadline != "" {
		deadline, _ := time.ParseInLocation("2006-01-02", *req.Deadline, s.clock.Location())
		g.Deadline = &deadline
	}

	created, err := s.GoalRepository.Create(ctx, g)
	if err != nil {
		return goal.GoalResponse{}, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal.NewGoalResponse(created), nil
}

// GetGoal implements goal.GoalService.
func (s *GoalServiceImpl) GetGoal(ctx context.Context, actor user.Actor, id string) (goal.GoalResponse, error) {
	g, err := s.getGoal(ctx, id)
	if err != nil {
		return goal.GoalResponse{}, err
	}

	if !actor.IsAdmin && g.OwnerID != actor.EmployeeID && !isCurrentApprover(g, actor) {
		return goal.GoalResponse{}, goal.ErrNotGoalOwner
	}

	return goal.NewGoalResponse(g), nil
}

// GetMyGoals implements goal.GoalService.
func (s *GoalServiceImpl) GetMyGoals(ctx context.Context, actor user.Actor, filter goal.GoalFilter) (goal.ListGoalResponse, error) {
	filter.OwnerID = &actor.EmployeeID
	filter.ApproverID = nil
	return s.listGoals(ctx, filter)
}

// GetAssignedGoals implements goal.GoalService.
func (s *GoalServiceImpl) GetAssignedGoals(ctx context.Context, actor user.Actor, filter goal.GoalFilter) (goal.ListGoalResponse, error) {
	filter.OwnerID = nil
	filter.ApproverID = &actor.EmployeeID
	return s.listGoals(ctx, filter)
}

// ListGoals implements goal.GoalService.
func (s *GoalServiceImpl) ListGoals(ctx context.Context, actor user.Actor, filter goal.GoalFilter) (goal.ListGoalResponse, error) {
	if !actor.IsAdmin {
		return goal.ListGoalResponse{}, user.ErrAdminPrivilegeRequired
	}
	return s.listGoals(ctx, filter)
}

func (s *GoalServiceImpl) listGoals(ctx context.Context, filter goal.GoalFilter) (goal.ListGoalResponse, error) {
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	if filter.Page == 0 {
		filter.Page = 1
	}

	goals, total, err := s.GoalRepository.List(ctx, filter)
	if err != nil {
		return goal.ListGoalResponse{}, fmt.Errorf("failed to list goals: %w", err)
	}

	responses := make([]goal.GoalResponse, 0, len(goals))
	for _, g := range goals {
		responses = append(responses, goal.NewGoalResponse(g))
	}

	return goal.ListGoalResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Goals:      responses,
	}, nil
}

// UpdateGoal implements goal.GoalService. Editing a rejected goal resets
// it to draft so it can travel the approval path again.
func (s *GoalServiceImpl) UpdateGoal(ctx context.Context, actor user.Actor, req goal.UpdateGoalRequest) (goal.GoalResponse, error) {
	if err := req.Validate(); err != nil {
		return goal.GoalResponse{}, err
	}

	g, err := s.getGoal(ctx, req.ID)
	if err != nil {
		return goal.GoalResponse{}, err
	}

	if !actor.IsAdmin && g.OwnerID != actor.EmployeeID {
		return goal.GoalResponse{}, goal.ErrNotGoalOwner
	}
	if !g.Editable() {
		return goal.GoalResponse{}, goal.ErrGoalNotEditable
	}

	if req.Title != nil {
		g.Title = *req.Title
	}
	if req.Description != nil {
		g.Description = req.Description
	}
	if req.Level != nil {
		g.Level = goal.GoalLevel(*req.Level)
	}
	if req.ActionPlan != nil {
		g.ActionPlan = req.ActionPlan
	}
	if req.Deadline != nil && *req.Deadline != "" {
		deadline, _ := time.ParseInLocation("2006-01-02", *req.Deadline, s.clock.Location())
		g.Deadline = &deadline
	}
	if req.ApproverID != nil && *req.ApproverID != "" {
		g.CurrentApproverID = req.ApproverID
	}

	if g.Status == goal.StatusRejected {
		g.Status = goal.StatusDraft
	}

	if err := s.GoalRepository.Update(ctx, g); err != nil {
		return goal.GoalResponse{}, fmt.Errorf("failed to update goal: %w", err)
	}

	return goal.NewGoalResponse(g), nil
}

// DeleteGoal implements goal.GoalService.
func (s *GoalServiceImpl) DeleteGoal(ctx context.Context, actor user.Actor, id string) error {
	g, err := s.getGoal(ctx, id)
	if err != nil {
		return err
	}

	if !actor.IsAdmin && g.OwnerID != actor.EmployeeID {
		return goal.ErrNotGoalOwner
	}
	if g.Pending() {
		return goal.ErrGoalPending
	}

	if err := s.GoalRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	return nil
}

// Submit implements goal.GoalService.
func (s *GoalServiceImpl) Submit(ctx context.Context, actor user.Actor, id string) (goal.GoalResponse, error) {
	g, err := s.getGoal(ctx, id)
	if err != nil {
		return goal.GoalResponse{}, err
	}

	if g.OwnerID != actor.EmployeeID {
		return goal.GoalResponse{}, goal.ErrNotGoalOwner
	}
	if g.Status != goal.StatusDraft {
		return goal.GoalResponse{}, goal.ErrInvalidTransition
	}
	if g.CurrentApproverID == nil || *g.CurrentApproverID == "" {
		return goal.GoalResponse{}, goal.ErrApproverRequired
	}

	g.Status = goal.StatusPendingFirst
	s.appendHistory(&g, goal.ActionSubmit, actor.EmployeeID, nil)

	if err := s.GoalRepository.Update(ctx, g); err != nil {
		return goal.GoalResponse{}, fmt.Errorf("failed to update goal: %w", err)
	}

	_ = s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: *g.CurrentApproverID,
		SenderID:    &actor.EmployeeID,
		Type:        notification.TypeGoalSubmitted,
		Title:       "Goal awaiting first approval",
		Message:     fmt.Sprintf("%q was submitted for your approval.", g.Title),
		Data:        map[string]interface{}{"goal_id": g.ID},
	})

	return goal.NewGoalResponse(g), nil
}

// ApproveFirst implements goal.GoalService.
func (s *GoalServiceImpl) ApproveFirst(ctx context.Context, actor user.Actor, req goal.ApproveGoalRequest) (goal.GoalResponse, error) {
	g, err := s.goalForApprover(ctx, actor, req.ID, goal.StatusPendingFirst)
	if err != nil {
		return goal.GoalResponse{}, err
	}

	g.Status = goal.StatusApprovedFirst
	s.appendHistory(&g, goal.ActionApproveFirst, actor.EmployeeID, req.Comment)

	if err := s.GoalRepository.Update(ctx, g); err != nil {
		return goal.GoalResponse{}, fmt.Errorf("failed to update goal: %w", err)
	}

	_ = s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: g.OwnerID,
		SenderID:    &actor.EmployeeID,
		Type:        notification.TypeGoalApproved,
		Title:       "Goal passed first approval",
		Message:     fmt.Sprintf("%q passed first approval. Evaluate it when the work is done.", g.Title),
		Data:        map[string]interface{}{"goal_id": g.ID},
	})

	return goal.NewGoalResponse(g), nil
}

// RejectFirst implements goal.GoalService.
func (s *GoalServiceImpl) RejectFirst(ctx context.Context, actor user.Actor, req goal.RejectGoalRequest) (goal.GoalResponse, error) {
	if err := req.Validate(); err != nil {
		return goal.GoalResponse{}, err
	}

	g, err := s.goalForApprover(ctx, actor, req.ID, goal.StatusPendingFirst)
	if err != nil {
		return goal.GoalResponse{}, err
	}

	g.Status = goal.StatusRejected
	s.appendHistory(&g, goal.ActionRejectFirst, actor.EmployeeID, &req.Comment)

	if err := s.GoalRepository.Update(ctx, g); err != nil {
		return goal.GoalResponse{}, fmt.Errorf("failed to update goal: %w", err)
	}

	_ = s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: g.OwnerID,
		SenderID:    &actor.EmployeeID,
		Type:        notification.TypeGoalRejected,
		Title:       "Goal rejected",
		Message:     fmt.Sprintf("%q was rejected: %s", g.Title, req.Comment),
		Data:        map[string]interface{}{"goal_id": g.ID},
	})

	return goal.NewGoalResponse(g), nil
}

// Evaluate implements goal.GoalService. The owner records progress and a
// self-grade and hands the goal to the final approver.
func (s *GoalServiceImpl) Evaluate(ctx context.Context, actor user.Actor, req goal.EvaluateGoalRequest) (goal.GoalResponse, error) {
	if err := req.Validate(); err != nil {
		return goal.GoalResponse{}, err
	}

	g, err := s.getGoal(ctx, req.ID)
	if err != nil {
		return goal.GoalResponse{}, err
	}

	if g.OwnerID != actor.EmployeeID {
		return goal.GoalResponse{}, goal.ErrNotGoalOwner
	}
	if g.Status != goal.StatusApprovedFirst {
		return goal.GoalResponse{}, goal.ErrInvalidTransition
	}

	g.Progress = req.Progress
	g.Grade = &req.Grade
	g.CurrentApproverID = &req.ApproverID
	g.Status = goal.StatusPendingFinal
	s.appendHistory(&g, goal.ActionEvaluate, actor.EmployeeID, req.Comment)

	if err := s.GoalRepository.Update(ctx, g); err != nil {
		return goal.GoalResponse{}, fmt.Errorf("failed to update goal: %w", err)
	}

	_ = s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: req.ApproverID,
		SenderID:    &actor.EmployeeID,
		Type:        notification.TypeGoalEvaluated,
		Title:       "Goal awaiting final approval",
		Message:     fmt.Sprintf("%q was evaluated and awaits your final approval.", g.Title),
		Data:        map[string]interface{}{"goal_id": g.ID},
	})

	return goal.NewGoalResponse(g), nil
}

// ApproveFinal implements goal.GoalService.
func (s *GoalServiceImpl) ApproveFinal(ctx context.Context, actor user.Actor, req goal.ApproveGoalRequest) (goal.GoalResponse, error) {
	g, err := s.goalForApprover(ctx, actor, req.ID, goal.StatusPendingFinal)
	if err != nil {
		return goal.GoalResponse{}, err
	}

	g.Status = goal.StatusCompleted
	s.appendHistory(&g, goal.ActionApproveFinal, actor.EmployeeID, req.Comment)

	if err := s.GoalRepository.Update(ctx, g); err != nil {
		return goal.GoalResponse{}, fmt.Errorf("failed to update goal: %w", err)
	}

	_ = s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: g.OwnerID,
		SenderID:    &actor.EmployeeID,
		Type:        notification.TypeGoalCompleted,
		Title:       "Goal completed",
		Message:     fmt.Sprintf("%q received final approval and is complete.", g.Title),
		Data:        map[string]interface{}{"goal_id": g.ID},
	})

	return goal.NewGoalResponse(g), nil
}

// RejectFinal implements goal.GoalService. Final-stage rejection demotes
// the goal to the evaluation step rather than killing it.
func (s *GoalServiceImpl) RejectFinal(ctx context.Context, actor user.Actor, req goal.RejectGoalRequest) (goal.GoalResponse, error) {
	if err := req.Validate(); err != nil {
		return goal.GoalResponse{}, err
	}

	g, err := s.goalForApprover(ctx, actor, req.ID, goal.StatusPendingFinal)
	if err != nil {
		return goal.GoalResponse{}, err
	}

	g.Status = goal.StatusApprovedFirst
	s.appendHistory(&g, goal.ActionRejectFinal, actor.EmployeeID, &req.Comment)

	if err := s.GoalRepository.Update(ctx, g); err != nil {
		return goal.GoalResponse{}, fmt.Errorf("failed to update goal: %w", err)
	}

	_ = s.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: g.OwnerID,
		SenderID:    &actor.EmployeeID,
		Type:        notification.TypeGoalRejected,
		Title:       "Goal evaluation rejected",
		Message:     fmt.Sprintf("The evaluation of %q was rejected: %s", g.Title, req.Comment),
		Data:        map[string]interface{}{"goal_id": g.ID},
	})

	return goal.NewGoalResponse(g), nil
}

func (s *GoalServiceImpl) getGoal(ctx context.Context, id string) (goal.Goal, error) {
	g, err := s.GoalRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, goal.ErrGoalNotFound) {
			return goal.Goal{}, goal.ErrGoalNotFound
		}
		return goal.Goal{}, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

// goalForApprover fetches the goal and verifies the actor is its current
// approver and the goal sits in the expected stage. Identity is checked
// before state so an outsider learns nothing about the goal's stage.
func (s *GoalServiceImpl) goalForApprover(ctx context.Context, actor user.Actor, id string, want goal.GoalStatus) (goal.Goal, error) {
	g, err := s.getGoal(ctx, id)
	if err != nil {
		return goal.Goal{}, err
	}

	if !isCurrentApprover(g, actor) {
		return goal.Goal{}, goal.ErrNotCurrentApprover
	}
	if g.Status != want {
		return goal.Goal{}, goal.ErrInvalidTransition
	}

	return g, nil
}

func isCurrentApprover(g goal.Goal, actor user.Actor) bool {
	return g.CurrentApproverID != nil && *g.CurrentApproverID == actor.EmployeeID
}

func (s *GoalServiceImpl) appendHistory(g *goal.Goal, action goal.GoalAction, actorID string, comment *string) {
	g.History = append(g.History, goal.HistoryEntry{
		ID:        uuid.NewString(),
		Action:    action,
		ActorID:   actorID,
		Comment:   comment,
		CreatedAt: s.clock.Now(),
	})
}
