package goal

import (
	"context"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
)

// GoalService drives the two-stage goal approval workflow. Authorization
// compares the actor's employee identity against OwnerID or
// CurrentApproverID; every transition appends one history entry.
type GoalService interface {
	// CreateGoal creates a draft goal owned by the actor
	CreateGoal(ctx context.Context, actor user.Actor, req CreateGoalRequest) (GoalResponse, error)

	// GetGoal retrieves a single goal; owners, the current approver, and
	// admins may read it
	GetGoal(ctx context.Context, actor user.Actor, id string) (GoalResponse, error)

	// GetMyGoals lists goals owned by the actor
	GetMyGoals(ctx context.Context, actor user.Actor, filter GoalFilter) (ListGoalResponse, error)

	// GetAssignedGoals lists pending goals awaiting the actor's approval
	GetAssignedGoals(ctx context.Context, actor user.Actor, filter GoalFilter) (ListGoalResponse, error)

	// ListGoals lists goals across owners (admin)
	ListGoals(ctx context.Context, actor user.Actor, filter GoalFilter) (ListGoalResponse, error)

	// UpdateGoal edits business fields while the goal is in an editable
	// state; editing a rejected goal resets it to draft
	UpdateGoal(ctx context.Context, actor user.Actor, req UpdateGoalRequest) (GoalResponse, error)

	// DeleteGoal removes a goal that is not pending approval
	DeleteGoal(ctx context.Context, actor user.Actor, id string) error

	// Submit moves a draft goal to the first approval stage
	Submit(ctx context.Context, actor user.Actor, id string) (GoalResponse, error)

	// ApproveFirst passes the first approval stage
	ApproveFirst(ctx context.Context, actor user.Actor, req ApproveGoalRequest) (GoalResponse, error)

	// RejectFirst rejects at the first stage with a mandatory comment
	RejectFirst(ctx context.Context, actor user.Actor, req RejectGoalRequest) (GoalResponse, error)

	// Evaluate records progress and grade, reassigns the approver, and
	// moves the goal to the final approval stage
	Evaluate(ctx context.Context, actor user.Actor, req EvaluateGoalRequest) (GoalResponse, error)

	// ApproveFinal completes the goal
	ApproveFinal(ctx context.Context, actor user.Actor, req ApproveGoalRequest) (GoalResponse, error)

	// RejectFinal demotes the goal back to the evaluation step with a
	// mandatory comment
	RejectFinal(ctx context.Context, actor user.Actor, req RejectGoalRequest) (GoalResponse, error)
}
