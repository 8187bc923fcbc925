package approval

import (
	"context"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
)

// ApprovalService drives the monthly confirmation workflow. Approve and
// Return perform the bulk attendance write and the request-status write
// inside one database transaction.
type ApprovalService interface {
	// FileRequest files a pending request for the actor's month
	FileRequest(ctx context.Context, actor user.Actor, req FileRequestRequest) (ApprovalResponse, error)

	// GetMyRequests lists the actor's own requests
	GetMyRequests(ctx context.Context, actor user.Actor, filter RequestFilter) (ListApprovalResponse, error)

	// ListRequests lists requests across employees (admin)
	ListRequests(ctx context.Context, actor user.Actor, filter RequestFilter) (ListApprovalResponse, error)

	// Approve confirms every attendance record in the request's month and
	// marks the request approved
	Approve(ctx context.Context, actor user.Actor, requestID string) (ApprovalResponse, error)

	// Return clears the confirmation on the month and marks the request
	// returned with a mandatory reason
	Return(ctx context.Context, actor user.Actor, requestID string, req ReturnRequestRequest) (ApprovalResponse, error)

	// Reject marks the request rejected without touching attendance data
	Reject(ctx context.Context, actor user.Actor, requestID string) (ApprovalResponse, error)
}
