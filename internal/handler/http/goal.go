package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/goal"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
	"github.com/kintai-hq/kintai-backend-go/internal/handler/http/response"
)

type GoalHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetMyGoals(w http.ResponseWriter, r *http.Request)
	GetAssignedGoals(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	ApproveFirst(w http.ResponseWriter, r *http.Request)
	RejectFirst(w http.ResponseWriter, r *http.Request)
	Evaluate(w http.ResponseWriter, r *http.Request)
	ApproveFinal(w http.ResponseWriter, r *http.Request)
	RejectFinal(w http.ResponseWriter, r *http.Request)
}

type goalHandlerImpl struct {
	goalService goal.GoalService
}

func NewGoalHandler(goalService goal.GoalService) GoalHandler {
	return &goalHandlerImpl{
		goalService: goalService,
	}
}

// Create implements GoalHandler.
func (h *goalHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req goal.CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.goalService.CreateGoal(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Goal created", result)
}

// Get implements GoalHandler.
func (h *goalHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.goalService.GetGoal(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyGoals implements GoalHandler.
func (h *goalHandlerImpl) GetMyGoals(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.goalService.GetMyGoals(r.Context(), actor, goalFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetAssignedGoals implements GoalHandler.
func (h *goalHandlerImpl) GetAssignedGoals(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.goalService.GetAssignedGoals(r.Context(), actor, goalFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements GoalHandler.
func (h *goalHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := goalFilterFromQuery(r)
	filter.OwnerID = optionalQuery(r, "owner_id")

	result, err := h.goalService.ListGoals(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements GoalHandler.
func (h *goalHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req goal.UpdateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.goalService.UpdateGoal(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Goal updated", result)
}

// Delete implements GoalHandler.
func (h *goalHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.goalService.DeleteGoal(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Goal deleted", nil)
}

// Submit implements GoalHandler.
func (h *goalHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.goalService.Submit(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Goal submitted", result)
}

// ApproveFirst implements GoalHandler.
func (h *goalHandlerImpl) ApproveFirst(w http.ResponseWriter, r *http.Request) {
	h.approve(w, r, h.goalService.ApproveFirst, "Goal passed first approval")
}

// ApproveFinal implements GoalHandler.
func (h *goalHandlerImpl) ApproveFinal(w http.ResponseWriter, r *http.Request) {
	h.approve(w, r, h.goalService.ApproveFinal, "Goal completed")
}

func (h *goalHandlerImpl) approve(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, actor user.Actor, req goal.ApproveGoalRequest) (goal.GoalResponse, error),
	message string,
) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := goal.ApproveGoalRequest{ID: chi.URLParam(r, "id")}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
		req.ID = chi.URLParam(r, "id")
	}

	result, err := fn(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// RejectFirst implements GoalHandler.
func (h *goalHandlerImpl) RejectFirst(w http.ResponseWriter, r *http.Request) {
	h.reject(w, r, h.goalService.RejectFirst, "Goal rejected")
}

// RejectFinal implements GoalHandler.
func (h *goalHandlerImpl) RejectFinal(w http.ResponseWriter, r *http.Request) {
	h.reject(w, r, h.goalService.RejectFinal, "Goal evaluation rejected")
}

func (h *goalHandlerImpl) reject(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, actor user.Actor, req goal.RejectGoalRequest) (goal.GoalResponse, error),
	message string,
) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req goal.RejectGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := fn(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// Evaluate implements GoalHandler.
func (h *goalHandlerImpl) Evaluate(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req goal.EvaluateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.goalService.Evaluate(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Goal evaluated", result)
}

func goalFilterFromQuery(r *http.Request) goal.GoalFilter {
	return goal.GoalFilter{
		Status: optionalQuery(r, "status"),
		Page:   intQuery(r, "page"),
		Limit:  intQuery(r, "limit"),
	}
}
