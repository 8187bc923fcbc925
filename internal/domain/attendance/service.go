package attendance

import (
	"context"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
)

// AttendanceService defines business logic for the time clock
type AttendanceService interface {
	// CheckIn opens today's record. A repeated check-in on an open day is
	// a benign no-op returning the existing record.
	CheckIn(ctx context.Context, actor user.Actor) (AttendanceResponse, error)

	// StartLunch stamps the lunch start on today's open record
	StartLunch(ctx context.Context, actor user.Actor) (AttendanceResponse, error)

	// EndLunch stamps the lunch end on today's open record
	EndLunch(ctx context.Context, actor user.Actor) (AttendanceResponse, error)

	// CheckOut closes today's record and derives working/total hours
	CheckOut(ctx context.Context, actor user.Actor) (AttendanceResponse, error)

	// GetMyAttendance retrieves records for the authenticated employee
	GetMyAttendance(ctx context.Context, actor user.Actor, filter MyAttendanceFilter) (ListAttendanceResponse, error)

	// GetMonthlySummary aggregates the actor's month
	GetMonthlySummary(ctx context.Context, actor user.Actor, year, month int) (MonthlySummaryResponse, error)

	// ListAttendance retrieves records with filters (admin)
	ListAttendance(ctx context.Context, actor user.Actor, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetAttendance retrieves a single record by ID
	GetAttendance(ctx context.Context, actor user.Actor, id string) (AttendanceResponse, error)

	// UpdateAttendance backfills or fixes a record; rejected when the record
	// is confirmed or its month has a pending approval request
	UpdateAttendance(ctx context.Context, actor user.Actor, req UpdateAttendanceRequest) (AttendanceResponse, error)

	// DeleteAttendance removes an unconfirmed record
	DeleteAttendance(ctx context.Context, actor user.Actor, id string) error
}
