package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// The attendances table carries UNIQUE (employee_id, date); that constraint,
// not the service-level existence check, is what guarantees one record per
// employee per local day under concurrent check-ins.
type AttendanceRepository interface {
	// Create creates a new attendance record
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID retrieves attendance by ID
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDate retrieves the record for an employee on a local
	// work day; returns nil when none exists
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// Update rewrites the mutable fields of an existing record
	Update(ctx context.Context, attendance Attendance) error

	// Delete removes a record
	Delete(ctx context.Context, id string) error

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// GetMyAttendance retrieves attendance records for a specific employee
	GetMyAttendance(ctx context.Context, employeeID string, filter MyAttendanceFilter) ([]Attendance, int64, error)

	// MonthlySummary aggregates one employee's records over [start, end)
	MonthlySummary(ctx context.Context, employeeID string, start, end time.Time) (MonthlySummary, error)

	// HasConfirmedInRange reports whether any record in [start, end) is confirmed
	HasConfirmedInRange(ctx context.Context, employeeID string, start, end time.Time) (bool, error)

	// ConfirmRange stamps is_confirmed on every record in [start, end)
	ConfirmRange(ctx context.Context, employeeID string, start, end time.Time, confirmedBy string, confirmedAt time.Time) (int64, error)

	// UnconfirmRange clears is_confirmed on every record in [start, end)
	UnconfirmRange(ctx context.Context, employeeID string, start, end time.Time) (int64, error)

	// BulkCreateAbsences inserts absent records, skipping conflicts on
	// (employee_id, date)
	BulkCreateAbsences(ctx context.Context, absences []Attendance) error
}
