package approval

import "errors"

// Monthly confirmation domain errors
var (
	ErrApprovalNotFound        = errors.New("approval request not found")
	ErrRequestAlreadyPending   = errors.New("a pending approval request already exists for this month")
	ErrMonthAlreadyConfirmed   = errors.New("this month already contains confirmed attendance records")
	ErrRequestAlreadyProcessed = errors.New("approval request has already been processed")
	ErrNotRequestOwner         = errors.New("not the owner of this approval request")
)
