package approval

import "context"

// ApprovalRepository defines data access methods for monthly approval
// requests.
type ApprovalRepository interface {
	// Create inserts a new request
	Create(ctx context.Context, request ApprovalRequest) (ApprovalRequest, error)

	// GetByID retrieves a request by ID
	GetByID(ctx context.Context, id string) (ApprovalRequest, error)

	// GetPendingByPeriod retrieves the pending request for a period;
	// returns nil when none exists
	GetPendingByPeriod(ctx context.Context, employeeID string, year, month int) (*ApprovalRequest, error)

	// DeleteSuperseded removes stale returned/rejected requests for the
	// period before a fresh one is filed
	DeleteSuperseded(ctx context.Context, employeeID string, year, month int) error

	// Update rewrites status, processed stamps, and return reason
	Update(ctx context.Context, request ApprovalRequest) error

	// List retrieves requests with filters and pagination
	List(ctx context.Context, filter RequestFilter) ([]ApprovalRequest, int64, error)
}
