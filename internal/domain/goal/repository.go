package goal

import "context"

// GoalRepository defines data access methods for goals. History rides the
// goal row as JSONB; Update always writes the full entry list, which only
// ever grows.
type GoalRepository interface {
	// Create inserts a new goal
	Create(ctx context.Context, goal Goal) (Goal, error)

	// GetByID retrieves a goal by ID
	GetByID(ctx context.Context, id string) (Goal, error)

	// Update rewrites the mutable fields and the history of a goal
	Update(ctx context.Context, goal Goal) error

	// Delete removes a goal
	Delete(ctx context.Context, id string) error

	// List retrieves goals with filters and pagination
	List(ctx context.Context, filter GoalFilter) ([]Goal, int64, error)
}
