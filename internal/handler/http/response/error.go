package response

import (
	"errors"
	"net/http"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/approval"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/attendance"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/employee"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/goal"
	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Identity errors
	case errors.Is(err, user.ErrInvalidToken),
		errors.Is(err, user.ErrEmployeeIdentityMissing):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrNotRecordOwner):
		Forbidden(w, "Not the owner of this attendance record")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrLunchAlreadyStarted),
		errors.Is(err, attendance.ErrLunchNotStarted),
		errors.Is(err, attendance.ErrLunchAlreadyEnded),
		errors.Is(err, attendance.ErrAttendanceConfirmed),
		errors.Is(err, attendance.ErrMonthPendingApproval),
		errors.Is(err, attendance.ErrDuplicateDailyRecord):
		Conflict(w, err.Error())

	// Monthly confirmation domain errors
	case errors.Is(err, approval.ErrApprovalNotFound):
		NotFound(w, "Approval request not found")
	case errors.Is(err, approval.ErrNotRequestOwner):
		Forbidden(w, "Not the owner of this approval request")
	case errors.Is(err, approval.ErrRequestAlreadyPending),
		errors.Is(err, approval.ErrMonthAlreadyConfirmed),
		errors.Is(err, approval.ErrRequestAlreadyProcessed):
		Conflict(w, err.Error())

	// Goal domain errors
	case errors.Is(err, goal.ErrGoalNotFound):
		NotFound(w, "Goal not found")
	case errors.Is(err, goal.ErrNotGoalOwner),
		errors.Is(err, goal.ErrNotCurrentApprover):
		Forbidden(w, err.Error())
	case errors.Is(err, goal.ErrGoalNotEditable),
		errors.Is(err, goal.ErrGoalPending),
		errors.Is(err, goal.ErrInvalidTransition):
		Conflict(w, err.Error())
	case errors.Is(err, goal.ErrApproverRequired):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
