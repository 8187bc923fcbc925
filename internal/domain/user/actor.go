package user

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid or missing token")
	ErrAdminPrivilegeRequired  = errors.New("admin privilege required")
	ErrEmployeeIdentityMissing = errors.New("employee identity missing from token")
)

// Actor is the authenticated identity every core operation consumes.
// Authorization inside the workflows compares EmployeeID, never the raw
// user account id.
type Actor struct {
	UserID     string
	EmployeeID string
	IsAdmin    bool
}

// ActorFromClaims resolves an Actor from JWT claims.
func ActorFromClaims(claims map[string]interface{}) (Actor, error) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Actor{}, ErrInvalidToken
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return Actor{}, ErrEmployeeIdentityMissing
	}

	isAdmin, _ := claims["is_admin"].(bool)

	return Actor{
		UserID:     userID,
		EmployeeID: employeeID,
		IsAdmin:    isAdmin,
	}, nil
}
