package goal

import (
	"time"

	"github.com/kintai-hq/kintai-backend-go/internal/pkg/validator"
)

// ========================================
// GOAL DTOs
// ========================================

type CreateGoalRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Level       string  `json:"level"`
	ActionPlan  *string `json:"action_plan"`
	Deadline    *string `json:"deadline"`
	ApproverID  string  `json:"approver_id"`
}

func (r *CreateGoalRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title is required",
		})
	}

	if !validator.IsInSlice(r.Level, AllLevels()) {
		errs = append(errs, validator.ValidationError{
			Field:   "level",
			Message: "level must be one of low, medium, high",
		})
	}

	if validator.IsEmpty(r.ApproverID) {
		errs = append(errs, validator.ValidationError{
			Field:   "approver_id",
			Message: "approver_id is required",
		})
	}

	if r.Deadline != nil && *r.Deadline != "" {
		if _, ok := validator.IsValidDate(*r.Deadline); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "deadline",
				Message: "deadline must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateGoalRequest struct {
	ID          string  `json:"-"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Level       *string `json:"level"`
	ActionPlan  *string `json:"action_plan"`
	Deadline    *string `json:"deadline"`
	ApproverID  *string `json:"approver_id"`
}

func (r *UpdateGoalRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "goal id is required",
		})
	}

	if r.Title != nil && validator.IsEmpty(*r.Title) {
		errs = append(errs, validator.ValidationError{
			Field:   "title",
			Message: "title cannot be empty",
		})
	}

	if r.Level != nil && !validator.IsInSlice(*r.Level, AllLevels()) {
		errs = append(errs, validator.ValidationError{
			Field:   "level",
			Message: "level must be one of low, medium, high",
		})
	}

	if r.Deadline != nil && *r.Deadline != "" {
		if _, ok := validator.IsValidDate(*r.Deadline); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "deadline",
				Message: "deadline must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EvaluateGoalRequest struct {
	ID         string  `json:"-"`
	Progress   int     `json:"progress"`
	Grade      string  `json:"grade"`
	ApproverID string  `json:"approver_id"`
	Comment    *string `json:"comment"`
}

func (r *EvaluateGoalRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Progress < 0 || r.Progress > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "progress",
			Message: "progress must be between 0 and 100",
		})
	}

	if validator.IsEmpty(r.Grade) {
		errs = append(errs, validator.ValidationError{
			Field:   "grade",
			Message: "grade is required",
		})
	}

	if validator.IsEmpty(r.ApproverID) {
		errs = append(errs, validator.ValidationError{
			Field:   "approver_id",
			Message: "approver_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ApproveGoalRequest struct {
	ID      string  `json:"-"`
	Comment *string `json:"comment"`
}

type RejectGoalRequest struct {
	ID      string `json:"-"`
	Comment string `json:"comment"`
}

func (r *RejectGoalRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Comment) {
		errs = append(errs, validator.ValidationError{
			Field:   "comment",
			Message: "a comment is required when rejecting a goal",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type GoalFilter struct {
	OwnerID    *string
	ApproverID *string
	Status     *string
	Page       int
	Limit      int
}

type HistoryEntryResponse struct {
	Action    string  `json:"action"`
	ActorID   string  `json:"actor_id"`
	Comment   *string `json:"comment,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type GoalResponse struct {
	ID                string                 `json:"id"`
	OwnerID           string                 `json:"owner_id"`
	OwnerName         *string                `json:"owner_name,omitempty"`
	Title             string                 `json:"title"`
	Description       *string                `json:"description,omitempty"`
	Progress          int                    `json:"progress"`
	Grade             *string                `json:"grade,omitempty"`
	Deadline          *string                `json:"deadline,omitempty"`
	Level             string                 `json:"level"`
	ActionPlan        *string                `json:"action_plan,omitempty"`
	Status            string                 `json:"status"`
	CurrentApproverID *string                `json:"current_approver_id,omitempty"`
	ApproverName      *string                `json:"approver_name,omitempty"`
	History           []HistoryEntryResponse `json:"history"`
	CreatedAt         string                 `json:"created_at"`
	UpdatedAt         string                 `json:"updated_at"`
}

type ListGoalResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Goals      []GoalResponse `json:"goals"`
}

// NewGoalResponse converts a Goal entity to its response form.
func NewGoalResponse(g Goal) GoalResponse {
	resp := GoalResponse{
		ID:                g.ID,
		OwnerID:           g.OwnerID,
		OwnerName:         g.OwnerName,
		Title:             g.Title,
		Description:       g.Description,
		Progress:          g.Progress,
		Grade:             g.Grade,
		Level:             string(g.Level),
		ActionPlan:        g.ActionPlan,
		Status:            string(g.Status),
		CurrentApproverID: g.CurrentApproverID,
		ApproverName:      g.ApproverName,
		History:           make([]HistoryEntryResponse, 0, len(g.History)),
		CreatedAt:         g.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         g.UpdatedAt.Format(time.RFC3339),
	}
	if g.Deadline != nil {
		s := g.Deadline.Format("2006-01-02")
		resp.Deadline = &s
	}
	for _, entry := range g.History {
		resp.History = append(resp.History, HistoryEntryResponse{
			Action:    string(entry.Action),
			ActorID:   entry.ActorID,
			Comment:   entry.Comment,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
