package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/approval"
	"github.com/kintai-hq/kintai-backend-go/internal/handler/http/response"
)

type ApprovalHandler interface {
	File(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Return(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type approvalHandlerImpl struct {
	approvalService approval.ApprovalService
}

func NewApprovalHandler(approvalService approval.ApprovalService) ApprovalHandler {
	return &approvalHandlerImpl{
		approvalService: approvalService,
	}
}

// File implements ApprovalHandler.
func (h *approvalHandlerImpl) File(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req approval.FileRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.approvalService.FileRequest(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Approval request filed", result)
}

// GetMyRequests implements ApprovalHandler.
func (h *approvalHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.approvalService.GetMyRequests(r.Context(), actor, requestFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements ApprovalHandler.
func (h *approvalHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := requestFilterFromQuery(r)
	filter.EmployeeID = optionalQuery(r, "employee_id")

	result, err := h.approvalService.ListRequests(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Approve implements ApprovalHandler.
func (h *approvalHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.approvalService.Approve(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Request approved", result)
}

// Return implements ApprovalHandler.
func (h *approvalHandlerImpl) Return(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req approval.ReturnRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.approvalService.Return(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Request returned", result)
}

// Reject implements ApprovalHandler.
func (h *approvalHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.approvalService.Reject(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Request rejected", result)
}

func requestFilterFromQuery(r *http.Request) approval.RequestFilter {
	filter := approval.RequestFilter{
		Status: optionalQuery(r, "status"),
		Page:   intQuery(r, "page"),
		Limit:  intQuery(r, "limit"),
	}
	if year, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil {
		filter.Year = &year
	}
	if month, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil {
		filter.Month = &month
	}
	return filter
}
