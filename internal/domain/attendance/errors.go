package attendance

import "errors"

// Attendance domain errors
var (
	// Time clock errors
	ErrAlreadyCheckedOut    = errors.New("you have already checked out today")
	ErrNotCheckedIn         = errors.New("you have not checked in yet")
	ErrLunchAlreadyStarted  = errors.New("lunch break has already been started")
	ErrLunchNotStarted      = errors.New("lunch break has not been started")
	ErrLunchAlreadyEnded    = errors.New("lunch break has already been ended")
	ErrDuplicateDailyRecord = errors.New("an attendance record already exists for this day")

	// Lock errors
	ErrAttendanceConfirmed  = errors.New("attendance record is confirmed and locked against changes")
	ErrMonthPendingApproval = errors.New("a pending approval request covers this month")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrNotRecordOwner     = errors.New("not the owner of this attendance record")
)
