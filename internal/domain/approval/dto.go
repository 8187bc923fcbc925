package approval

import (
	"time"

	"github.com/kintai-hq/kintai-backend-go/internal/pkg/validator"
)

// ========================================
// APPROVAL REQUEST DTOs
// ========================================

type FileRequestRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (r *FileRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ReturnRequestRequest struct {
	Reason string `json:"reason"`
}

func (r *ReturnRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "return reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RequestFilter struct {
	EmployeeID *string
	Status     *string
	Year       *int
	Month      *int
	Page       int
	Limit      int
}

type ApprovalResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Status       string  `json:"status"`
	RequestedAt  string  `json:"requested_at"`
	ProcessedBy  *string `json:"processed_by,omitempty"`
	ProcessedAt  *string `json:"processed_at,omitempty"`
	ReturnReason *string `json:"return_reason,omitempty"`
}

type ListApprovalResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Requests   []ApprovalResponse `json:"requests"`
}

// NewApprovalResponse converts an ApprovalRequest entity to its response form.
func NewApprovalResponse(req ApprovalRequest) ApprovalResponse {
	resp := ApprovalResponse{
		ID:           req.ID,
		EmployeeID:   req.EmployeeID,
		EmployeeName: req.EmployeeName,
		Year:         req.Year,
		Month:        req.Month,
		Status:       string(req.Status),
		RequestedAt:  req.RequestedAt.Format(time.RFC3339),
		ProcessedBy:  req.ProcessedBy,
		ReturnReason: req.ReturnReason,
	}
	if req.ProcessedAt != nil {
		s := req.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	return resp
}
