package employee

import "context"

// EmployeeRepository defines the read surface the core needs from the
// employee directory.
type EmployeeRepository interface {
	// GetByID retrieves an employee by ID
	GetByID(ctx context.Context, id string) (Employee, error)

	// GetByUserID retrieves an employee by user account ID
	GetByUserID(ctx context.Context, userID string) (Employee, error)

	// ListActive retrieves all active employees
	ListActive(ctx context.Context) ([]Employee, error)
}
