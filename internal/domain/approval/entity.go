package approval

import "time"

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
	RequestStatusReturned RequestStatus = "returned"
)

func AllRequestStatuses() []string {
	return []string{
		string(RequestStatusPending),
		string(RequestStatusApproved),
		string(RequestStatusRejected),
		string(RequestStatusReturned),
	}
}

// ApprovalRequest tracks whether one employee's month of attendance has
// been submitted for, and has received, confirmation. At most one pending
// instance exists per (employee, year, month); filing again supersedes
// stale pending/returned instances.
type ApprovalRequest struct {
	ID           string
	EmployeeID   string
	Year         int
	Month        int
	Status       RequestStatus
	RequestedAt  time.Time
	ProcessedBy  *string
	ProcessedAt  *time.Time
	ReturnReason *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO
	EmployeeName *string
}

// Processed reports whether the request has left the pending state.
func (r *ApprovalRequest) Processed() bool {
	return r.Status != RequestStatusPending
}
