package employee

import "time"

// Employee is the directory entry the core reads for ownership and
// approver checks. Directory management itself lives outside the core.
type Employee struct {
	ID        string
	UserID    *string
	FullName  string
	Email     string
	IsActive  bool
	HireDate  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
