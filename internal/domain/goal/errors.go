package goal

import "errors"

// Goal workflow domain errors
var (
	ErrGoalNotFound       = errors.New("goal not found")
	ErrNotGoalOwner       = errors.New("not the owner of this goal")
	ErrNotCurrentApprover = errors.New("not the current approver of this goal")
	ErrGoalNotEditable    = errors.New("goal is not editable in its current state")
	ErrGoalPending        = errors.New("goal is pending approval and cannot be deleted")
	ErrInvalidTransition  = errors.New("transition not allowed from the goal's current state")
	ErrApproverRequired   = errors.New("an approver must be assigned before submission")
)
